package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Metadata store drivers.
const (
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the lexiscope configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Metadata   MetadataConfig   `yaml:"metadata"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Rate       RateConfig       `yaml:"rate"`
	Index      IndexConfig      `yaml:"index"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the Redis connection used by the corpus index,
// the embedding cache, usage counters and the redis metadata driver.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// MetadataConfig selects the metadata store.
type MetadataConfig struct {
	Driver       string `yaml:"driver"` // redis, sqlite, postgres (default: sqlite)
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider      string       `yaml:"provider"`
	APIKey        string       `yaml:"api_key"`
	BaseURL       string       `yaml:"base_url"`
	Model         string       `yaml:"model"`
	Dimensions    int          `yaml:"dimensions"`
	CacheTTLHours int          `yaml:"cache_ttl_hours"` // 0 disables the cache
	Budget        BudgetConfig `yaml:"budget"`
}

// CompletionConfig holds completion provider settings.
type CompletionConfig struct {
	Provider           string       `yaml:"provider"`
	APIKey             string       `yaml:"api_key"`
	BaseURL            string       `yaml:"base_url"`
	Model              string       `yaml:"model"`
	TimeoutSec         int          `yaml:"timeout_sec"`
	ExtractTemperature float32      `yaml:"extract_temperature"`
	ExtractMaxTokens   int          `yaml:"extract_max_tokens"`
	ChatTemperature    float32      `yaml:"chat_temperature"`
	Budget             BudgetConfig `yaml:"budget"`
}

// Timeout bounds a single completion call.
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RateConfig holds the completion rate window.
type RateConfig struct {
	Capacity  int `yaml:"capacity"`
	WindowSec int `yaml:"window_sec"`
	SpacingMS int `yaml:"spacing_ms"` // negative disables spacing
}

// Window is the trailing admission window.
func (c RateConfig) Window() time.Duration { return time.Duration(c.WindowSec) * time.Second }

// Spacing is the minimum gap between admissions.
func (c RateConfig) Spacing() time.Duration { return time.Duration(c.SpacingMS) * time.Millisecond }

// IndexConfig holds per-document and corpus index settings.
type IndexConfig struct {
	Dir                string `yaml:"dir"`
	ChatChunkSize      int    `yaml:"chat_chunk_size"`
	ChatChunkOverlap   int    `yaml:"chat_chunk_overlap"`
	CorpusChunkSize    int    `yaml:"corpus_chunk_size"`
	CorpusChunkOverlap int    `yaml:"corpus_chunk_overlap"`
	ChatTopN           int    `yaml:"chat_top_n"`
	CacheSize          int    `yaml:"cache_size"`
	BuildConcurrency   int    `yaml:"build_concurrency"`
	HNSWM              int    `yaml:"hnsw_m"`
	HNSWEFConstruct    int    `yaml:"hnsw_ef_construction"`
}

// CorpusConfig locates the judgment texts.
type CorpusConfig struct {
	TextDir string `yaml:"text_dir"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// Variables from a .env file in the working directory are visible to ${VAR}
// expansion but never override the process environment.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it and applies defaults.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Metadata.Driver == "" {
		c.Metadata.Driver = DriverSQLite
	}
	if c.Metadata.Driver == DriverSQLite && c.Metadata.DSN == "" {
		c.Metadata.DSN = "data/lexiscope.db"
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}

	if c.Completion.Provider == "" {
		c.Completion.Provider = "groq"
	}
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "llama-3.1-8b-instant"
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 30
	}
	if c.Completion.ExtractTemperature <= 0 {
		c.Completion.ExtractTemperature = 0.21
	}
	if c.Completion.ExtractMaxTokens <= 0 {
		c.Completion.ExtractMaxTokens = 600
	}
	if c.Completion.ChatTemperature <= 0 {
		c.Completion.ChatTemperature = 0.2
	}

	if c.Rate.Capacity <= 0 {
		c.Rate.Capacity = 25
	}
	if c.Rate.WindowSec <= 0 {
		c.Rate.WindowSec = 60
	}
	if c.Rate.SpacingMS == 0 {
		c.Rate.SpacingMS = 2000
	}

	if c.Index.Dir == "" {
		c.Index.Dir = "data/indexes"
	}
	if c.Index.ChatChunkSize <= 0 {
		c.Index.ChatChunkSize = 10000
	}
	if c.Index.ChatChunkOverlap <= 0 {
		c.Index.ChatChunkOverlap = 1000
	}
	if c.Index.CorpusChunkSize <= 0 {
		c.Index.CorpusChunkSize = 1000
	}
	if c.Index.CorpusChunkOverlap <= 0 {
		c.Index.CorpusChunkOverlap = 200
	}
	if c.Index.ChatTopN <= 0 {
		c.Index.ChatTopN = 1
	}
	if c.Index.CacheSize <= 0 {
		c.Index.CacheSize = 64
	}
	if c.Index.BuildConcurrency <= 0 {
		c.Index.BuildConcurrency = 4
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}

	if c.Corpus.TextDir == "" {
		c.Corpus.TextDir = "data/texts"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}

	switch c.Metadata.Driver {
	case DriverRedis:
	case DriverSQLite, DriverPostgres:
		if c.Metadata.DSN == "" {
			return fmt.Errorf("metadata.dsn is required for driver %q", c.Metadata.Driver)
		}
	default:
		return fmt.Errorf("metadata.driver must be %q, %q or %q, got %q",
			DriverRedis, DriverSQLite, DriverPostgres, c.Metadata.Driver)
	}

	if err := validateAction("embedding", c.Embedding.Budget.Action); err != nil {
		return err
	}
	if err := validateAction("completion", c.Completion.Budget.Action); err != nil {
		return err
	}

	if c.Index.ChatChunkOverlap >= c.Index.ChatChunkSize {
		return fmt.Errorf("index.chat_chunk_overlap must be smaller than index.chat_chunk_size")
	}
	if c.Index.CorpusChunkOverlap >= c.Index.CorpusChunkSize {
		return fmt.Errorf("index.corpus_chunk_overlap must be smaller than index.corpus_chunk_size")
	}
	return nil
}

func validateAction(section, action string) error {
	switch action {
	case "", "warn", "reject":
		return nil
	default:
		return fmt.Errorf("%s.budget.action must be \"warn\" or \"reject\", got %q", section, action)
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
