package analysis

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	InsightComprehensive = "This is a comprehensive document with substantial content that provides in-depth coverage of the topic."
	InsightConcise       = "This is a concise document that delivers key information efficiently."
	InsightStructured    = "Well-structured document with clear section breaks and organized information flow."
	InsightTechnical     = "Contains technical or methodological content that may require domain expertise to fully understand."
	InsightQuantitative  = "Rich in quantitative data and metrics, suitable for analytical review and data extraction."
	InsightReferences    = "Contains references or citations, indicating academic or research-oriented content."
	InsightActionable    = "Includes actionable recommendations or suggestions that can be implemented."
	InsightPDF           = "PDF format suggests this is a formal document, possibly for distribution or archival purposes."
	InsightDOCX          = "Word document format indicates this may be an editable working document or draft."

	InsightFallbackValue     = "Document contains valuable information suitable for knowledge extraction and analysis."
	InsightFallbackOrganized = "Content appears to be well-organized and suitable for further research or reference."
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?%?`)

var (
	technicalTerms  = []string{"algorithm", "method", "process", "system"}
	referenceTerms  = []string{"reference", "citation", "bibliography", "source"}
	actionableTerms = []string{"recommend", "suggest", "should", "action", "implement"}
)

// GenerateInsights applies each rule in order and returns the insights that
// fired. When none fire, two generic insights are returned.
func GenerateInsights(text, filename string) []string {
	var insights []string
	lower := strings.ToLower(text)

	switch n := utf8.RuneCountInString(text); {
	case n > 5000:
		insights = append(insights, InsightComprehensive)
	case n < 1000:
		insights = append(insights, InsightConcise)
	}

	if strings.Count(text, "\n\n") > 10 {
		insights = append(insights, InsightStructured)
	}
	if containsAny(lower, technicalTerms) {
		insights = append(insights, InsightTechnical)
	}
	if len(numberPattern.FindAllStringIndex(text, -1)) > 10 {
		insights = append(insights, InsightQuantitative)
	}
	if containsAny(lower, referenceTerms) {
		insights = append(insights, InsightReferences)
	}
	if containsAny(lower, actionableTerms) {
		insights = append(insights, InsightActionable)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		insights = append(insights, InsightPDF)
	case ".docx":
		insights = append(insights, InsightDOCX)
	}

	if len(insights) == 0 {
		insights = append(insights, InsightFallbackValue, InsightFallbackOrganized)
	}
	return insights
}
