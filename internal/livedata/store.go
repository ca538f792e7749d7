// Package livedata keeps a searchable store of timestamped items pulled
// from external feeds and correlates it with document text.
package livedata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/repository"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
)

// Candidate rows fetched per requested result before scoring.
const searchOverfetch = 5

type Store struct {
	repo   repository.LiveItemRepository
	feeds  []Feed
	logger *utils.Logger
	now    func() time.Time

	refreshMu  sync.Mutex
	mu         sync.RWMutex
	lastUpdate *time.Time
	running    atomic.Bool
}

func NewStore(repo repository.LiveItemRepository, feeds []Feed, logger *utils.Logger) *Store {
	return &Store{
		repo:   repo,
		feeds:  feeds,
		logger: logger,
		now:    time.Now,
	}
}

// SearchLiveData returns up to limit items mentioning keyword, best match
// first.
func (s *Store) SearchLiveData(ctx context.Context, keyword string, limit int) ([]models.LiveDataItem, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || limit <= 0 {
		return []models.LiveDataItem{}, nil
	}

	items, err := s.repo.Search(ctx, keyword, limit*searchOverfetch)
	if err != nil {
		return nil, fmt.Errorf("failed to search live data: %w", err)
	}

	for i := range items {
		items[i].RelevanceScore = relevance(items[i], keyword)
	}
	// Rows arrive newest first, so equal scores stay in recency order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func relevance(item models.LiveDataItem, keyword string) float64 {
	kw := strings.ToLower(keyword)
	hits := strings.Count(strings.ToLower(item.Title), kw)*2 +
		strings.Count(strings.ToLower(item.Context), kw) +
		strings.Count(strings.ToLower(item.Author), kw)
	score := math.Min(1, 0.4+0.15*float64(hits))
	return math.Round(score*100) / 100
}

func (s *Store) GetPathwayStats(ctx context.Context) (*models.PathwayStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count live data: %w", err)
	}
	recent, err := s.repo.CountPublishedSince(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent live data: %w", err)
	}

	s.mu.RLock()
	lastUpdate := s.lastUpdate
	s.mu.RUnlock()

	return &models.PathwayStats{
		TotalSources:   total,
		RecentActivity: models.RecentActivity{SourcesLast24h: recent},
		LastUpdate:     lastUpdate,
		IsRunning:      s.running.Load(),
	}, nil
}

// RefreshCycle pulls every feed once and upserts what it gets. Feeds fail
// independently; the joined error reports all of them.
func (s *Store) RefreshCycle(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var errs []error
	ingested := 0
	for _, feed := range s.feeds {
		items, err := feed.Fetch(ctx)
		if err != nil {
			s.logger.Error("Live data feed failed", "feed", feed.Name(), "error", err)
			errs = append(errs, err)
			continue
		}

		n, err := s.repo.Upsert(ctx, items, s.now())
		if err != nil {
			s.logger.Error("Failed to store live data", "feed", feed.Name(), "error", err)
			errs = append(errs, fmt.Errorf("store %s: %w", feed.Name(), err))
			continue
		}
		ingested += n
	}

	now := s.now().UTC()
	s.mu.Lock()
	s.lastUpdate = &now
	s.mu.Unlock()

	s.logger.Debug("Live data refresh complete", "feeds", len(s.feeds), "items", ingested)
	return errors.Join(errs...)
}

// Run refreshes immediately and then every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	s.running.Store(true)
	defer s.running.Store(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RefreshCycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Live data refresh incomplete", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
