package livedata

import (
	"context"
	"strings"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/analysis"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

const (
	MaxKeywordCandidates = 10
	MaxKeywordQueries    = 3
	MaxRelatedItems      = 5
	PerKeywordLimit      = 2
)

// Searcher is the keyword search the matcher fans out to.
type Searcher interface {
	SearchLiveData(ctx context.Context, keyword string, limit int) ([]models.LiveDataItem, error)
}

type Matcher struct {
	searcher Searcher
	logger   *utils.Logger
}

func NewMatcher(searcher Searcher, logger *utils.Logger) *Matcher {
	return &Matcher{searcher: searcher, logger: logger}
}

// Keywords returns the first MaxKeywordCandidates alphabetic tokens of
// sample longer than four characters, lowercased.
func Keywords(sample string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(sample)) {
		if !analysis.IsKeyword(w) {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == MaxKeywordCandidates {
			break
		}
	}
	return keywords
}

// Related searches live data for the leading keywords of sample and returns
// at most MaxRelatedItems items, unique by source id, in first-seen order.
// A failing keyword search is logged and skipped.
func (m *Matcher) Related(ctx context.Context, sample string) []models.LiveDataItem {
	if m == nil || m.searcher == nil {
		return nil
	}

	keywords := Keywords(sample)
	if len(keywords) > MaxKeywordQueries {
		keywords = keywords[:MaxKeywordQueries]
	}

	var all []models.LiveDataItem
	for _, kw := range keywords {
		items, err := m.searcher.SearchLiveData(ctx, kw, PerKeywordLimit)
		if err != nil {
			m.logger.Warn("Live data search failed", "keyword", kw, "error", err)
			continue
		}
		all = append(all, items...)
	}

	return Dedupe(all, MaxRelatedItems)
}

// Dedupe keeps the first item for each source id, stopping after limit
// unique items.
func Dedupe(items []models.LiveDataItem, limit int) []models.LiveDataItem {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	unique := make([]models.LiveDataItem, 0, min(len(items), limit))
	for _, item := range items {
		if len(unique) >= limit {
			break
		}
		if _, ok := seen[item.SourceID]; ok {
			continue
		}
		seen[item.SourceID] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
