package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"bookchat"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"bookchat"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Ingestion
	PDFDir             string `envconfig:"PDF_DIR" default:"books"`
	ChunkSize          int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap       int    `envconfig:"CHUNK_OVERLAP" default:"100"`
	IngestBatchSize    int    `envconfig:"INGEST_BATCH_SIZE" default:"10"`
	ExtractConcurrency int    `envconfig:"EXTRACT_CONCURRENCY" default:"4"`

	// Query path
	RetrieveTopK      int    `envconfig:"RETRIEVE_TOP_K" default:"4"`
	HistoryLimit      int    `envconfig:"HISTORY_LIMIT" default:"10"`
	GenerationTimeout int    `envconfig:"GENERATION_TIMEOUT_SECONDS" default:"60"`
	PromptPath        string `envconfig:"PROMPT_PATH"`
	OutOfContextReply string `envconfig:"OUT_OF_CONTEXT_REPLY" default:"I could not find an answer to that in the indexed documents."`

	// Server
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Admin seeding
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may already be set in the shell, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.IngestBatchSize <= 0 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be positive, got %d", c.IngestBatchSize)
	}
	if c.ExtractConcurrency <= 0 {
		return fmt.Errorf("EXTRACT_CONCURRENCY must be positive, got %d", c.ExtractConcurrency)
	}
	return nil
}
