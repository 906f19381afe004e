package config

import (
	"os"
	"path/filepath"
	"testing"

	"hotel-capacity/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Calculator.StoreyHeightM != 3.5 {
		t.Errorf("storey height = %v, want 3.5", cfg.Calculator.StoreyHeightM)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("session backend = %q, want memory", cfg.Session.Backend)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotelcap.json")
	body := `{"calculator":{"storey_height_m":4},"dataset":{"path":"sites.geojson","name_field":"NAME"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Calculator.StoreyHeightM != 4 {
		t.Errorf("storey height = %v, want 4", cfg.Calculator.StoreyHeightM)
	}
	if cfg.Dataset.NameField != "NAME" {
		t.Errorf("name field = %q, want NAME", cfg.Dataset.NameField)
	}
	// untouched keys keep their defaults
	if cfg.Dataset.AreaField != "site_area" {
		t.Errorf("area field = %q, want site_area", cfg.Dataset.AreaField)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOTELCAP_SESSION_BACKEND", "redis")
	t.Setenv("HOTELCAP_SESSION_REDIS_ADDR", "cache:6379")
	t.Setenv("HOTELCAP_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Backend != "redis" || cfg.Session.RedisAddr != "cache:6379" {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero storey height", `{"calculator":{"storey_height_m":0}}`},
		{"unknown session backend", `{"session":{"backend":"etcd"}}`},
		{"malformed json", `{"calculator":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}
