package models

import "time"

type LiveDataItem struct {
	SourceID       string  `json:"source_id" yaml:"source_id" db:"source_id"`
	Title          string  `json:"title" yaml:"title" db:"title"`
	Context        string  `json:"context" yaml:"context" db:"context"`
	Author         string  `json:"author" yaml:"author" db:"author"`
	PublishedAt    string  `json:"published_at" yaml:"published_at" db:"published_at"`
	RelevanceScore float64 `json:"relevance_score" yaml:"-" db:"-"`
	SourceType     string  `json:"source_type" yaml:"source_type" db:"source_type"`
	URL            string  `json:"url" yaml:"url" db:"url"`
}

// PublishedTime parses PublishedAt as ISO-8601.
func (i LiveDataItem) PublishedTime() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, i.PublishedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type RecentActivity struct {
	SourcesLast24h int `json:"sources_last_24h"`
}

type PathwayStats struct {
	TotalSources   int            `json:"total_sources"`
	RecentActivity RecentActivity `json:"recent_activity"`
	LastUpdate     *time.Time     `json:"last_update"`
	IsRunning      bool           `json:"is_running"`
}
