package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingContent is returned when a multipart body has no usable file part.
	ErrMissingContent = errors.New("no file content found")
	// ErrEmptyQuery is returned when a search is submitted without a query.
	ErrEmptyQuery = errors.New("no query provided")
)

type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// CollaboratorError wraps a failure surfaced by the assistant, the billing
// ledger or the live-data store.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func NewCollaboratorError(collaborator, op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}
}

// IsCollaboratorFailure reports whether err came from an external collaborator.
func IsCollaboratorFailure(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Err.Error()
	}
	return err.Error()
}
