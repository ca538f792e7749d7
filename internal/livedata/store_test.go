package livedata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/db"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/repository"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFeed struct {
	name  string
	items []models.LiveDataItem
	err   error
}

func (f staticFeed) Name() string { return f.name }

func (f staticFeed) Fetch(context.Context) ([]models.LiveDataItem, error) {
	return f.items, f.err
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, feeds ...Feed) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "live.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	s := NewStore(repository.NewLiveItemRepository(conn), feeds, utils.Discard())
	s.now = func() time.Time { return fixedNow }
	return s
}

func feedItems() []models.LiveDataItem {
	return []models.LiveDataItem{
		{
			SourceID:    "n1",
			Title:       "Machine learning in clinics",
			Context:     "Hospitals adopt machine learning triage.",
			Author:      "Desk",
			PublishedAt: fixedNow.Add(-2 * time.Hour).Format(time.RFC3339),
			SourceType:  "news",
			URL:         "https://example.com/n1",
		},
		{
			SourceID:    "b1",
			Title:       "Quarterly market notes",
			Context:     "Learning from the market, with a nod to machine automation.",
			Author:      "Blog",
			PublishedAt: fixedNow.Add(-48 * time.Hour).Format(time.RFC3339),
			SourceType:  "blog",
			URL:         "https://example.com/b1",
		},
		{
			SourceID:    "old",
			Title:       "Archive entry",
			Context:     "Nothing relevant.",
			PublishedAt: "not a timestamp",
			SourceType:  "news",
		},
	}
}

func TestStoreRefreshAndSearch(t *testing.T) {
	s := newTestStore(t, staticFeed{name: "static", items: feedItems()})
	ctx := context.Background()

	require.NoError(t, s.RefreshCycle(ctx))

	items, err := s.SearchLiveData(ctx, "machine", 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "n1", items[0].SourceID)
	assert.Equal(t, 0.85, items[0].RelevanceScore)
	assert.Equal(t, "b1", items[1].SourceID)
	assert.Equal(t, 0.55, items[1].RelevanceScore)

	items, err = s.SearchLiveData(ctx, "MACHINE", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].SourceID)

	items, err = s.SearchLiveData(ctx, "100%", 5)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.SearchLiveData(ctx, "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStoreUpsertKeepsSourceIDsUnique(t *testing.T) {
	first := feedItems()
	updated := feedItems()
	updated[0].Title = "Machine learning in clinics, updated"

	s := newTestStore(t, staticFeed{name: "a", items: first}, staticFeed{name: "b", items: updated})
	ctx := context.Background()
	require.NoError(t, s.RefreshCycle(ctx))

	stats, err := s.GetPathwayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSources)

	items, err := s.SearchLiveData(ctx, "updated", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].SourceID)
}

func TestStoreStats(t *testing.T) {
	s := newTestStore(t, staticFeed{name: "static", items: feedItems()})
	ctx := context.Background()

	stats, err := s.GetPathwayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSources)
	assert.Nil(t, stats.LastUpdate)
	assert.False(t, stats.IsRunning)

	require.NoError(t, s.RefreshCycle(ctx))

	stats, err = s.GetPathwayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSources)
	assert.Equal(t, 1, stats.RecentActivity.SourcesLast24h)
	require.NotNil(t, stats.LastUpdate)
	assert.Equal(t, fixedNow, *stats.LastUpdate)
}

func TestStoreRefreshFeedFailure(t *testing.T) {
	broken := staticFeed{name: "broken", err: errors.New("connection refused")}
	s := newTestStore(t, broken, staticFeed{name: "static", items: feedItems()})
	ctx := context.Background()

	err := s.RefreshCycle(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	stats, err := s.GetPathwayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSources)
}

func TestStoreRun(t *testing.T) {
	var fetches atomic.Int32
	feed := countingFeed{fetches: &fetches}
	s := newTestStore(t, feed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return fetches.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.running.Load())

	cancel()
	<-done
	assert.False(t, s.running.Load())
}

type countingFeed struct {
	fetches *atomic.Int32
}

func (f countingFeed) Name() string { return "counting" }

func (f countingFeed) Fetch(context.Context) ([]models.LiveDataItem, error) {
	n := f.fetches.Add(1)
	return []models.LiveDataItem{{SourceID: fmt.Sprintf("c%d", n), Title: "tick"}}, nil
}

func TestSampleFeed(t *testing.T) {
	feed := NewSampleFeed()
	feed.now = func() time.Time { return fixedNow }

	items, err := feed.Fetch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.NotEmpty(t, it.SourceID)
		assert.Equal(t, fixedNow.Format(time.RFC3339), it.PublishedAt)
	}
}

func TestFileFeedMissing(t *testing.T) {
	_, err := NewFileFeed(filepath.Join(t.TempDir(), "missing.yaml")).Fetch(context.Background())
	require.Error(t, err)
}

func TestHTTPFeed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"source_id":"h1","title":"Hello","published_at":"2026-10-17T10:00:00Z","source_type":"news","url":"https://example.com/h1"}]}`)
	}))
	defer srv.Close()

	items, err := NewHTTPFeed(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "h1", items[0].SourceID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFeedPermanentFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFeed(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
