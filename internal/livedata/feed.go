package livedata

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/cenkalti/backoff/v4"
	"gopkg.in/yaml.v3"
)

// Feed is a source of live-data items pulled on every refresh cycle.
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]models.LiveDataItem, error)
}

//go:embed sample_feed.yaml
var sampleFeed []byte

type feedDocument struct {
	Items []models.LiveDataItem `yaml:"items" json:"items"`
}

// FileFeed reads items from a YAML document. Items without a published_at
// are stamped with the fetch time.
type FileFeed struct {
	name string
	load func() ([]byte, error)
	now  func() time.Time
}

func NewFileFeed(path string) *FileFeed {
	return &FileFeed{
		name: path,
		load: func() ([]byte, error) { return os.ReadFile(path) },
		now:  time.Now,
	}
}

// NewSampleFeed serves the built-in demo items.
func NewSampleFeed() *FileFeed {
	return &FileFeed{
		name: "sample",
		load: func() ([]byte, error) { return sampleFeed, nil },
		now:  time.Now,
	}
}

func (f *FileFeed) Name() string { return f.name }

func (f *FileFeed) Fetch(ctx context.Context) ([]models.LiveDataItem, error) {
	data, err := f.load()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", f.name, err)
	}

	var doc feedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", f.name, err)
	}

	stamp := f.now().UTC().Format(time.RFC3339)
	for i := range doc.Items {
		if doc.Items[i].PublishedAt == "" {
			doc.Items[i].PublishedAt = stamp
		}
	}
	return doc.Items, nil
}

// HTTPFeed pulls a JSON document of the form {"items": [...]} and retries
// transient failures with exponential backoff.
type HTTPFeed struct {
	url        string
	client     *http.Client
	maxElapsed time.Duration
}

func NewHTTPFeed(url string) *HTTPFeed {
	return &HTTPFeed{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxElapsed: 20 * time.Second,
	}
}

func (f *HTTPFeed) Name() string { return f.url }

func (f *HTTPFeed) Fetch(ctx context.Context) ([]models.LiveDataItem, error) {
	var doc feedDocument

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("feed returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("feed returned status %d", resp.StatusCode))
		}

		if err := json.Unmarshal(body, &doc); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to unmarshal feed: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = f.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("feed %s: %w", f.url, err)
	}
	return doc.Items, nil
}
