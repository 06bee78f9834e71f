package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_InvalidFilterCombinator(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Retrieval: RetrievalConfig{FilterCombinator: "xor"},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid filter combinator")
	}

	expected := `retrieval.filter_combinator must be "and" or "or", got "xor"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidFilterCombinators(t *testing.T) {
	for _, comb := range []string{"and", "or"} {
		t.Run("combinator="+comb, func(t *testing.T) {
			cfg := Config{
				HTTP: HTTPConfig{Port: 8080},
				Database: DatabaseConfig{
					Addrs: []string{"localhost:6379"},
				},
				Retrieval: RetrievalConfig{FilterCombinator: comb},
			}
			cfg.ApplyDefaults()

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for combinator %q: %v", comb, err)
			}
		})
	}
}

func TestValidate_ThresholdAboveOne(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Retrieval: RetrievalConfig{StrictThreshold: 1.5},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for strict threshold above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Retrieval.SimilarityFloor != 0.5 {
		t.Errorf("expected SimilarityFloor=0.5, got %g", cfg.Retrieval.SimilarityFloor)
	}
	if cfg.Retrieval.StrictThreshold != 0.75 {
		t.Errorf("expected StrictThreshold=0.75, got %g", cfg.Retrieval.StrictThreshold)
	}
	if cfg.Retrieval.CandidateCap != 50 {
		t.Errorf("expected CandidateCap=50, got %d", cfg.Retrieval.CandidateCap)
	}
	if cfg.Retrieval.ResultLimit != 10 {
		t.Errorf("expected ResultLimit=10, got %d", cfg.Retrieval.ResultLimit)
	}
	if cfg.Retrieval.FilterCombinator != "and" {
		t.Errorf("expected FilterCombinator='and', got %q", cfg.Retrieval.FilterCombinator)
	}
	if cfg.Storage.KeyPrefix != "catalogqa:" {
		t.Errorf("expected KeyPrefix='catalogqa:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{ReadinessTimeout: 15},
		Retrieval: RetrievalConfig{SimilarityFloor: 0.3, StrictThreshold: 0.9, CandidateCap: 20, ResultLimit: 5, FilterCombinator: "or"},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Retrieval.SimilarityFloor != 0.3 {
		t.Errorf("expected SimilarityFloor=0.3, got %g", cfg.Retrieval.SimilarityFloor)
	}
	if cfg.Retrieval.FilterCombinator != "or" {
		t.Errorf("expected FilterCombinator='or', got %q", cfg.Retrieval.FilterCombinator)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CATALOGQA_TEST_KEY", "secret")

	in := []byte("api_key: ${CATALOGQA_TEST_KEY}\nbase_url: ${CATALOGQA_TEST_URL:-https://api.example.com/v1}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nbase_url: https://api.example.com/v1\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}
