package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"roofmate-files"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Token required for reviewer-only feedback/correction transitions
	ReviewerToken string `envconfig:"REVIEWER_TOKEN"`

	// Retrieval defaults
	MatchCount      int `envconfig:"MATCH_COUNT" default:"6"`
	ContextMaxChars int `envconfig:"CONTEXT_MAX_CHARS" default:"6000"`

	// Per-candidate timeout for storage folder probing, in seconds
	ProbeTimeoutSeconds int `envconfig:"PROBE_TIMEOUT_SECONDS" default:"5"`

	// Storage key unioned into every folder-resolution result
	GlobalDocKey string `envconfig:"GLOBAL_DOC_KEY" default:"global/anchor-selection-guide.pdf"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ROOFMATE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasReviewer() bool {
	return c.ReviewerToken != ""
}
