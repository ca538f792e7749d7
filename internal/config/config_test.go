package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "demo_user", cfg.DemoUser)
	assert.Equal(t, 0.10, cfg.PricePerQuestion)
	assert.Equal(t, 0.25, cfg.PricePerReport)
	assert.Equal(t, 5.0, cfg.CreditTopUp)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Equal(t, 30*time.Second, cfg.LiveDataRefreshInterval)
	assert.False(t, cfg.S3Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PRICE_PER_REPORT", "0.5")
	t.Setenv("LIVE_DATA_FEED_URLS", "http://a/feed.json,http://b/feed.json")
	t.Setenv("LIVE_DATA_REFRESH_INTERVAL", "2m")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.5, cfg.PricePerReport)
	assert.Equal(t, []string{"http://a/feed.json", "http://b/feed.json"}, cfg.LiveDataFeedURLs)
	assert.Equal(t, 2*time.Minute, cfg.LiveDataRefreshInterval)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := Load([]string{"--port=7070"})
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	s3 := *cfg
	s3.S3Enabled = true
	s3.S3BucketName = ""
	assert.Error(t, s3.Validate())

	topUp := *cfg
	topUp.CreditTopUp = 0
	assert.Error(t, topUp.Validate())

	interval := *cfg
	interval.LiveDataRefreshInterval = 0
	assert.Error(t, interval.Validate())
}
