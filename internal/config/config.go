package config

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
)

type Config struct {
	Port        string `help:"Port to listen on." env:"PORT" default:"8000"`
	DatabaseURL string `help:"Path of the SQLite database file." env:"DATABASE_URL" default:"./web_data/smartdoc.db"`
	LogLevel    string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`

	// Uploads
	UploadDir     string `help:"Directory for temporary upload files. Empty uses the OS temp dir." env:"UPLOAD_DIR" default:""`
	MaxUploadSize int64  `help:"Maximum accepted request body for uploads, in bytes." env:"MAX_UPLOAD_SIZE" default:"10485760"`

	// Billing
	DemoUser         string  `help:"Account billed for web requests." env:"DEMO_USER" default:"demo_user"`
	InitialCredits   float64 `help:"Credits granted to a new account." env:"INITIAL_CREDITS" default:"10.0"`
	PricePerQuestion float64 `help:"Price of one search question." env:"PRICE_PER_QUESTION" default:"0.10"`
	PricePerReport   float64 `help:"Price of one document report." env:"PRICE_PER_REPORT" default:"0.25"`
	CreditTopUp      float64 `help:"Credits applied by /add-credits." env:"CREDIT_TOP_UP" default:"5.0"`

	// Live data
	LiveDataRefreshInterval time.Duration `help:"Interval between live-data refresh cycles." env:"LIVE_DATA_REFRESH_INTERVAL" default:"30s"`
	LiveDataFeedFile        string        `help:"YAML file of live-data items." env:"LIVE_DATA_FEED_FILE" default:""`
	LiveDataFeedURLs        []string      `help:"JSON live-data feed URLs." env:"LIVE_DATA_FEED_URLS" sep:","`

	// S3
	S3Enabled         bool   `help:"Archive uploaded originals to S3." env:"S3_ENABLED" default:"false"`
	S3Endpoint        string `help:"S3 endpoint." env:"S3_ENDPOINT" default:"localhost:9000"`
	S3AccessKeyID     string `help:"S3 access key." env:"S3_ACCESS_KEY_ID" default:"minioadmin"`
	S3SecretAccessKey string `help:"S3 secret key." env:"S3_SECRET_ACCESS_KEY" default:"minioadmin"`
	S3BucketName      string `help:"S3 bucket." env:"S3_BUCKET_NAME" default:"documents"`
	S3UseSSL          bool   `help:"Use TLS for S3." env:"S3_USE_SSL" default:"false"`

	// OpenRouter
	OpenRouterAPIKey string `help:"OpenRouter API key. Empty disables LLM summaries." env:"OPENROUTER_API_KEY" default:""`
	OpenRouterModel  string `help:"OpenRouter model." env:"OPENROUTER_MODEL" default:"openai/gpt-4o-mini"`
}

// Load parses args and the environment into a Config.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	parser, err := kong.New(cfg,
		kong.Name("smartdoc"),
		kong.Description("Smart Doc Analysis web interface."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build config parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.PricePerQuestion < 0 || c.PricePerReport < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	if c.CreditTopUp <= 0 {
		return fmt.Errorf("CREDIT_TOP_UP must be positive")
	}
	if c.LiveDataRefreshInterval <= 0 {
		return fmt.Errorf("LIVE_DATA_REFRESH_INTERVAL must be positive")
	}
	if c.S3Enabled && (c.S3Endpoint == "" || c.S3BucketName == "") {
		return fmt.Errorf("S3_ENDPOINT and S3_BUCKET_NAME are required when S3 is enabled")
	}
	return nil
}
