package utils

import (
	"fmt"

	"github.com/google/uuid"
)

func GenerateID() string {
	return uuid.NewString()
}

// CorrelationID builds a billing correlation id such as "upload_<uuid>".
func CorrelationID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
