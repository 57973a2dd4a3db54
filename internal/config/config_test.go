package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != (Server{}).WithDefaults() {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Listen != DefaultListen || cfg.FetchTimeout != 15*time.Second || cfg.LogLevel != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_YAMLAndINIAgree(t *testing.T) {
	yml := writeFile(t, "server.yaml", `
listen: "0.0.0.0:8080"
fetch_timeout: 5s
convert_timeout: 30s
max_body_bytes: 1024
log_level: debug
`)
	iniPath := writeFile(t, "server.ini", `
listen = 0.0.0.0:8080
fetch_timeout = 5s
convert_timeout = 30s
max_body_bytes = 1024
log_level = debug
`)

	a, err := Load(yml)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	b, err := Load(iniPath)
	if err != nil {
		t.Fatalf("ini: %v", err)
	}
	if a != b {
		t.Fatalf("yaml=%+v\nini=%+v", a, b)
	}
	if a.Listen != "0.0.0.0:8080" || a.FetchTimeout != 5*time.Second || a.ConvertTimeout != 30*time.Second ||
		a.MaxBodyBytes != 1024 || a.LogLevel != "debug" {
		t.Fatalf("unexpected values: %+v", a)
	}
	if a.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unset field should get default, got %v", a.ShutdownTimeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []string{
		filepath.Join(t.TempDir(), "missing.yaml"),
		writeFile(t, "bad.yaml", "listen: [oops"),
		writeFile(t, "server.toml", "listen = 1"),
	}
	for _, p := range tests {
		if _, err := Load(p); err == nil {
			t.Fatalf("Load(%q) expected error", p)
		}
	}
}
