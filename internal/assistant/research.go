package assistant

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

const (
	DefaultMaxResults = 5
	MaxFactLength     = 300
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "with": true,
	"what": true, "how": true, "why": true, "does": true, "this": true,
	"that": true, "about": true, "from": true, "into": true, "which": true,
}

type passage struct {
	doc      string
	text     string
	coverage float64
	hits     int
}

// ResearchQuery scores passages of every stored document against the query
// terms and reports the best matches. includeOnline is accepted for API
// compatibility; there is no online source to consult.
func (a *Assistant) ResearchQuery(ctx context.Context, query string, includeOnline bool, maxResults int) (*models.ResearchReport, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, utils.ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if includeOnline {
		a.logger.Debug("Online research requested but not available", "query", query)
	}

	docs, err := a.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	terms := queryTerms(query)
	var passages []passage
	for _, doc := range docs {
		chunks, err := a.splitter.SplitText(doc.ExtractedText)
		if err != nil {
			a.logger.Warn("Failed to split document, using full text", "id", doc.ID, "error", err)
			chunks = []string{doc.ExtractedText}
		}
		for _, chunk := range chunks {
			if p, ok := scorePassage(doc.Filename, chunk, terms); ok {
				passages = append(passages, p)
			}
		}
	}

	sort.SliceStable(passages, func(i, j int) bool {
		if passages[i].coverage != passages[j].coverage {
			return passages[i].coverage > passages[j].coverage
		}
		return passages[i].hits > passages[j].hits
	})
	if len(passages) > maxResults {
		passages = passages[:maxResults]
	}

	report := &models.ResearchReport{
		Query:        query,
		MainFindings: []models.Finding{},
	}

	sources := map[string]bool{}
	total := 0.0
	for _, p := range passages {
		report.MainFindings = append(report.MainFindings, models.Finding{
			FactText:        truncate(collapseSpace(p.text), MaxFactLength),
			ConfidenceLevel: confidenceLevel(p.coverage),
			Citations:       []string{p.doc},
		})
		sources[p.doc] = true
		total += p.coverage
	}
	report.TotalSources = len(sources)

	if len(passages) == 0 {
		report.ExecutiveSummary = fmt.Sprintf("No passages in the %d uploaded documents matched %q.", len(docs), query)
		return report, nil
	}

	report.ConfidenceScore = math.Round(total/float64(len(passages))*100) / 100
	report.ExecutiveSummary = fmt.Sprintf(
		"Found %d relevant passages across %d of %d documents for %q. The strongest match comes from %s.",
		len(passages), report.TotalSources, len(docs), query, passages[0].doc)

	if a.analyzer != nil {
		texts := make([]string, len(passages))
		for i, p := range passages {
			texts[i] = p.text
		}
		summary, err := a.analyzer.Summarize(ctx, query, texts)
		if err != nil {
			a.logger.Warn("LLM summary failed, using extractive summary", "error", err)
		} else {
			report.ExecutiveSummary = summary.ExecutiveSummary
			if summary.Confidence > 0 {
				report.ConfidenceScore = math.Round(summary.Confidence*100) / 100
			}
		}
	}

	a.logger.Info("Research query answered",
		"query", query,
		"findings", len(report.MainFindings),
		"sources", report.TotalSources)

	return report, nil
}

// queryTerms lowercases the query and drops short words and stop words.
// When nothing survives, every token is kept.
func queryTerms(query string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := map[string]bool{}
	var terms []string
	for _, tok := range tokens {
		if len([]rune(tok)) < 3 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	if len(terms) > 0 {
		return terms
	}

	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			terms = append(terms, tok)
		}
	}
	return terms
}

func scorePassage(doc, text string, terms []string) (passage, bool) {
	if len(terms) == 0 {
		return passage{}, false
	}

	lower := strings.ToLower(text)
	matched, hits := 0, 0
	for _, term := range terms {
		if n := strings.Count(lower, term); n > 0 {
			matched++
			hits += n
		}
	}
	if matched == 0 {
		return passage{}, false
	}

	return passage{
		doc:      doc,
		text:     text,
		coverage: float64(matched) / float64(len(terms)),
		hits:     hits,
	}, true
}

func confidenceLevel(coverage float64) string {
	switch {
	case coverage >= 0.75:
		return "high"
	case coverage >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
