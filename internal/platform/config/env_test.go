package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port    int    `env:"OPOSICIONES_TEST_PORT" envDefault:"123"`
	BaseURL string `env:"OPOSICIONES_TEST_BASE_URL" envDefault:"/"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.BaseURL != "/" {
		t.Fatalf("expected default base url /, got %q", cfg.BaseURL)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("OPOSICIONES_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvMapIgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("OPOSICIONES_TEST_BASE_URL", "/process/")
	var cfg envTestConfig

	if err := ParseEnvMap(&cfg, map[string]string{"OPOSICIONES_TEST_BASE_URL": "/map/"}); err != nil {
		t.Fatalf("parse env map: %v", err)
	}
	if cfg.BaseURL != "/map/" {
		t.Fatalf("base url = %q, want %q", cfg.BaseURL, "/map/")
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want default 123", cfg.Port)
	}
}

func TestParseEnvMapNilUsesDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnvMap(&cfg, nil); err != nil {
		t.Fatalf("parse env map: %v", err)
	}
	if cfg.BaseURL != "/" {
		t.Fatalf("base url = %q, want /", cfg.BaseURL)
	}
}
