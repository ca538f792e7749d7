package livedata

import (
	"context"
	"errors"
	"testing"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	results map[string][]models.LiveDataItem
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) SearchLiveData(_ context.Context, keyword string, limit int) ([]models.LiveDataItem, error) {
	f.calls = append(f.calls, keyword)
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	items := f.results[keyword]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func item(id string) models.LiveDataItem {
	return models.LiveDataItem{SourceID: id, Title: "title " + id}
}

func ids(items []models.LiveDataItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.SourceID
	}
	return out
}

func TestKeywords(t *testing.T) {
	got := Keywords("The Quick brown-fox JUMPED over 12345 lazy dogs, repeatedly and happily today")
	want := []string{"quick", "jumped", "repeatedly", "happily", "today"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}

	many := Keywords("alpha bravo charlie delta echoes foxtrot golfs hotel india julietta kilos limas")
	assert.Len(t, many, MaxKeywordCandidates)
	assert.Equal(t, "alpha", many[0])
}

func TestRelatedQueriesFirstThreeKeywords(t *testing.T) {
	searcher := &fakeSearcher{}
	m := NewMatcher(searcher, utils.Discard())

	m.Related(context.Background(), "alpha bravo charlie delta echoes")
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, searcher.calls)
}

func TestRelatedDeduplicates(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]models.LiveDataItem{
		"alpha":   {item("a"), item("b")},
		"bravo":   {item("b"), item("c")},
		"charlie": {item("a"), item("d")},
	}}
	m := NewMatcher(searcher, utils.Discard())

	got := m.Related(context.Background(), "alpha bravo charlie")
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
}

func TestRelatedCapsAtFive(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]models.LiveDataItem{
		"alpha":   {item("1"), item("2")},
		"bravo":   {item("3"), item("4")},
		"charlie": {item("5"), item("6")},
	}}
	m := NewMatcher(searcher, utils.Discard())

	got := m.Related(context.Background(), "alpha bravo charlie")
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(got))
}

func TestRelatedToleratesKeywordFailure(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]models.LiveDataItem{
			"charlie": {item("c")},
		},
		errs: map[string]error{
			"alpha": errors.New("store unavailable"),
			"bravo": errors.New("timeout"),
		},
	}
	m := NewMatcher(searcher, utils.Discard())

	got := m.Related(context.Background(), "alpha bravo charlie")
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].SourceID)
	assert.Len(t, searcher.calls, 3)
}

func TestRelatedWithoutKeywords(t *testing.T) {
	searcher := &fakeSearcher{}
	m := NewMatcher(searcher, utils.Discard())

	assert.Empty(t, m.Related(context.Background(), "a bb ccc 1234 5678"))
	assert.Empty(t, searcher.calls)

	var nilMatcher *Matcher
	assert.Empty(t, nilMatcher.Related(context.Background(), "alpha"))
}

func TestDedupe(t *testing.T) {
	items := []models.LiveDataItem{item("x"), item("y"), item("x"), item("z"), item("y")}
	assert.Equal(t, []string{"x", "y", "z"}, ids(Dedupe(items, 5)))
	assert.Equal(t, []string{"x", "y"}, ids(Dedupe(items, 2)))
	assert.Empty(t, Dedupe(nil, 5))
	assert.Empty(t, Dedupe(items, 0))
	assert.Empty(t, Dedupe(items, -1))
}
