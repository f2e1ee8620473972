package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Completion.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `completion.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Budget.Action = action
			cfg.Completion.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MetadataDriver(t *testing.T) {
	tests := []struct {
		name    string
		meta    MetadataConfig
		wantErr bool
	}{
		{"redis", MetadataConfig{Driver: DriverRedis}, false},
		{"sqlite", MetadataConfig{Driver: DriverSQLite, DSN: "x.db"}, false},
		{"postgres", MetadataConfig{Driver: DriverPostgres, DSN: "postgres://localhost/lexiscope"}, false},
		{"postgres without dsn", MetadataConfig{Driver: DriverPostgres}, true},
		{"unknown", MetadataConfig{Driver: "mysql", DSN: "x"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Metadata = tc.meta
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_ChunkOverlap(t *testing.T) {
	cfg := validConfig()
	cfg.Index.CorpusChunkOverlap = cfg.Index.CorpusChunkSize

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Metadata.Driver != DriverSQLite || cfg.Metadata.DSN == "" {
		t.Errorf("expected sqlite driver with a dsn, got %+v", cfg.Metadata)
	}
	if cfg.Completion.Timeout().Seconds() != 30 {
		t.Errorf("expected completion timeout 30s, got %v", cfg.Completion.Timeout())
	}
	if cfg.Completion.ExtractTemperature != 0.21 || cfg.Completion.ExtractMaxTokens != 600 {
		t.Errorf("unexpected extraction params %v/%d", cfg.Completion.ExtractTemperature, cfg.Completion.ExtractMaxTokens)
	}
	if cfg.Completion.ChatTemperature != 0.2 {
		t.Errorf("expected chat temperature 0.2, got %v", cfg.Completion.ChatTemperature)
	}
	if cfg.Rate.Capacity != 25 || cfg.Rate.Window().Seconds() != 60 || cfg.Rate.Spacing().Seconds() != 2 {
		t.Errorf("unexpected rate defaults %+v", cfg.Rate)
	}
	if cfg.Index.ChatChunkSize != 10000 || cfg.Index.ChatChunkOverlap != 1000 {
		t.Errorf("unexpected chat chunking %d/%d", cfg.Index.ChatChunkSize, cfg.Index.ChatChunkOverlap)
	}
	if cfg.Index.CorpusChunkSize != 1000 || cfg.Index.CorpusChunkOverlap != 200 {
		t.Errorf("unexpected corpus chunking %d/%d", cfg.Index.CorpusChunkSize, cfg.Index.CorpusChunkOverlap)
	}
	if cfg.Index.ChatTopN != 1 {
		t.Errorf("expected ChatTopN=1, got %d", cfg.Index.ChatTopN)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Metadata: MetadataConfig{Driver: DriverRedis},
		Rate:     RateConfig{Capacity: 5, WindowSec: 10, SpacingMS: -1},
		Index:    IndexConfig{HNSWM: 16, Dir: "/var/lib/idx"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Metadata.DSN != "" {
		t.Errorf("redis driver must not get a sqlite dsn, got %q", cfg.Metadata.DSN)
	}
	if cfg.Rate.Capacity != 5 || cfg.Rate.Spacing() >= 0 {
		t.Errorf("rate overridden: %+v", cfg.Rate)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.Dir != "/var/lib/idx" {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("LEXISCOPE_TEST_KEY", "gsk_secret")
	yml := `
http:
  port: ${LEXISCOPE_TEST_PORT:-9090}
database:
  addrs: ["localhost:6379"]
completion:
  api_key: ${LEXISCOPE_TEST_KEY}
`
	cfg, err := Parse([]byte(yml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want default 9090", cfg.HTTP.Port)
	}
	if cfg.Completion.APIKey != "gsk_secret" {
		t.Errorf("api key = %q", cfg.Completion.APIKey)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	_, err := Parse([]byte("http:\n  port: 8080\n"))
	if err == nil || !strings.Contains(err.Error(), "database.addrs") {
		t.Errorf("expected validation error, got %v", err)
	}
}
