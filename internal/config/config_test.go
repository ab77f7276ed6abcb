package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/garden/internal/domain/search/relevance"
)

func validConfig() Config {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Addrs: []string{"localhost:6379"}},
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
	for _, action := range []string{"warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Completion.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_WriteTimeoutCoversBothProviders(t *testing.T) {
	tests := []struct {
		name              string
		write, completion int
		wantErr           bool
	}{
		{"defaults", 45, 15, false},
		{"completion raised past half", 45, 30, true},
		{"exactly twice", 60, 30, true},
		{"write raised with completion", 61, 30, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.HTTP.WriteTimeoutSec = tc.write
			cfg.Completion.TimeoutSec = tc.completion

			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "write_timeout_sec") {
				t.Errorf("unexpected error message: %v", err)
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

func TestValidate_Storage(t *testing.T) {
	tests := []struct {
		name    string
		storage StorageConfig
		wantErr bool
	}{
		{"valkey with addrs", StorageConfig{Driver: DriverValkey, Addrs: []string{"localhost:6379"}}, false},
		{"redis without addrs", StorageConfig{Driver: DriverRedis}, true},
		{"postgres with dsn", StorageConfig{Driver: DriverPostgres, DSN: "postgres://localhost/garden"}, false},
		{"postgres without dsn", StorageConfig{Driver: DriverPostgres}, true},
		{"sqlite with dsn", StorageConfig{Driver: DriverSQLite, DSN: "garden.db"}, false},
		{"unknown driver", StorageConfig{Driver: "mongo", DSN: "x"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage = tc.storage

			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_CompletionModels(t *testing.T) {
	cfg := validConfig()
	cfg.Completion.Primary = PrimaryConfig{APIKey: "sk-test"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for primary key without model")
	}

	cfg = validConfig()
	cfg.Completion.Fallback = FallbackConfig{BaseURL: "http://localhost:11434/v1"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for fallback url without model")
	}
}

func TestValidate_SearchBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultLimit = 51
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for default_limit above 50")
	}

	cfg = validConfig()
	cfg.Search.FallbackThreshold = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for threshold of 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 45 {
		t.Errorf("expected WriteTimeoutSec=45, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Storage.Driver != DriverValkey {
		t.Errorf("expected Driver=valkey, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Storage.ReadinessTimeout)
	}
	if cfg.Completion.TimeoutSec != 15 {
		t.Errorf("expected TimeoutSec=15, got %d", cfg.Completion.TimeoutSec)
	}
	if cfg.Completion.Budget.Action != "warn" {
		t.Errorf("expected Action=warn, got %q", cfg.Completion.Budget.Action)
	}
	if cfg.Search.MaxContextItems != 30 || cfg.Search.MaxCharsPerItem != 800 {
		t.Errorf("unexpected window defaults: %d items, %d chars", cfg.Search.MaxContextItems, cfg.Search.MaxCharsPerItem)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("expected DefaultLimit=10, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.FallbackThreshold != 0.1 {
		t.Errorf("expected FallbackThreshold=0.1, got %v", cfg.Search.FallbackThreshold)
	}
	if cfg.Search.Weights != relevance.DefaultWeights() {
		t.Errorf("expected default weights, got %+v", cfg.Search.Weights)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage: StorageConfig{Driver: DriverSQLite, ReadinessTimeout: 15},
		Search: SearchConfig{
			DefaultLimit: 20,
			Weights:      relevance.Weights{TitlePhrase: 1, BodyPhrase: 0.5, TitleWord: 0.3, BodyWord: 0.2, MinWordLength: 4},
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("expected Driver=sqlite, got %q", cfg.Storage.Driver)
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("expected DefaultLimit=20, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.Weights.MinWordLength != 4 {
		t.Errorf("expected custom weights kept, got %+v", cfg.Search.Weights)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("GARDEN_TEST_PORT", "9090")
	t.Setenv("GARDEN_TEST_KEY", "sk-live")

	data := []byte(`
http:
  port: ${GARDEN_TEST_PORT}
storage:
  driver: redis
  addrs: ["${GARDEN_TEST_REDIS:-localhost:6379}"]
completion:
  primary:
    api_key: ${GARDEN_TEST_KEY}
    model: gpt-4o-mini
search:
  weights:
    title_phrase: 0.9
    body_phrase: 0.4
    title_word: 0.2
    body_word: 0.1
    min_word_length: 3
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Storage.Addrs) != 1 || cfg.Storage.Addrs[0] != "localhost:6379" {
		t.Errorf("expected default addr, got %v", cfg.Storage.Addrs)
	}
	if cfg.Completion.Primary.APIKey != "sk-live" {
		t.Errorf("expected api key from env, got %q", cfg.Completion.Primary.APIKey)
	}
	if cfg.Search.Weights.TitlePhrase != 0.9 {
		t.Errorf("expected title_phrase 0.9, got %v", cfg.Search.Weights.TitlePhrase)
	}
	if !cfg.Storage.IsKeyValue() {
		t.Error("expected redis to be a key-value driver")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := "http:\n  port: 8080\nstorage:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "garden.db") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.IsKeyValue() {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected port from config/local.yaml")
	}
}
