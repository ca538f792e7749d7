package analysis

import (
	"fmt"
	"strings"
)

type QueryType string

const (
	QueryInformational QueryType = "informational"
	QueryProcedural    QueryType = "procedural"
	QueryAnalytical    QueryType = "analytical"
	QueryComparative   QueryType = "comparative"
	QueryGeneral       QueryType = "general"
)

var queryTypes = []struct {
	kind  QueryType
	words []string
}{
	{QueryInformational, []string{"what", "define", "explain", "describe"}},
	{QueryProcedural, []string{"how", "tutorial", "guide", "steps"}},
	{QueryAnalytical, []string{"why", "reason", "because", "cause"}},
	{QueryComparative, []string{"compare", "difference", "vs", "versus"}},
}

// ClassifyQuery returns the first query type whose words occur in query.
func ClassifyQuery(query string) QueryType {
	lower := strings.ToLower(query)
	for _, qt := range queryTypes {
		if containsAny(lower, qt.words) {
			return qt.kind
		}
	}
	return QueryGeneral
}

// QueryInsight is the canned explanation shown when the assistant could
// not answer query.
func QueryInsight(query string) string {
	switch ClassifyQuery(query) {
	case QueryInformational:
		return "This appears to be a request for information about a specific topic. I can help provide definitions, explanations, and detailed information."
	case QueryProcedural:
		return "This looks like a request for step-by-step guidance or instructions. I can provide detailed procedures and methodologies."
	case QueryAnalytical:
		return "This seems to be asking for analysis or reasoning. I can help explain causes, effects, and underlying principles."
	case QueryComparative:
		return "This appears to be asking for a comparison. I can help analyze similarities, differences, and trade-offs."
	default:
		return fmt.Sprintf("I can provide relevant information and insights based on your query about '%s'.", query)
	}
}
