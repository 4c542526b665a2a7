package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.FAQ.Threshold != 0.1 {
		t.Errorf("FAQ.Threshold = %v, want 0.1", cfg.FAQ.Threshold)
	}
	if cfg.Client.BaseURL != "http://127.0.0.1:8000/api" {
		t.Errorf("Client.BaseURL = %q, want default", cfg.Client.BaseURL)
	}
	if !cfg.Store.Enabled {
		t.Error("Store.Enabled should default to true")
	}
	if cfg.FAQ.ReloadInterval != "30s" {
		t.Errorf("FAQ.ReloadInterval = %q, want 30s", cfg.FAQ.ReloadInterval)
	}
	if d, _ := cfg.Store.RetentionPeriod(); d != 0 {
		t.Errorf("RetentionPeriod = %v, want 0", d)
	}
}

func TestLoadNonExistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
}

func TestLoadValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqbot.toml")

	content := `
[server]
port = 9999
bind = "lan"

[faq]
path = "/srv/faqs.json"
threshold = 0.25
greeting = "Howdy!"

[client]
base_url = "http://example.test/api"
timeout = "30s"

[store]
enabled = false
retention = "168h"

[tracing]
enabled = true
sample_ratio = 0.25
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.Bind != "lan" {
		t.Errorf("Bind = %q, want %q", cfg.Server.Bind, "lan")
	}
	if cfg.FAQ.Path != "/srv/faqs.json" {
		t.Errorf("FAQ.Path = %q, want %q", cfg.FAQ.Path, "/srv/faqs.json")
	}
	if cfg.FAQ.Threshold != 0.25 {
		t.Errorf("FAQ.Threshold = %v, want 0.25", cfg.FAQ.Threshold)
	}
	if cfg.FAQ.Greeting != "Howdy!" {
		t.Errorf("FAQ.Greeting = %q, want %q", cfg.FAQ.Greeting, "Howdy!")
	}
	if cfg.Client.BaseURL != "http://example.test/api" {
		t.Errorf("Client.BaseURL = %q", cfg.Client.BaseURL)
	}
	if cfg.Store.Enabled {
		t.Error("Store.Enabled = true, want false")
	}
	if cfg.Store.DSN == "" {
		t.Error("Store.DSN should fall back to the data dir default")
	}

	d, err := cfg.Client.RequestTimeout()
	if err != nil {
		t.Fatalf("RequestTimeout: %v", err)
	}
	if d != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", d)
	}
	if d, _ := cfg.Store.RetentionPeriod(); d != 168*time.Hour {
		t.Errorf("RetentionPeriod = %v, want 168h", d)
	}
	if cfg.Tracing.SampleRatio != 0.25 {
		t.Errorf("Tracing.SampleRatio = %v, want 0.25", cfg.Tracing.SampleRatio)
	}
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero threshold", "[faq]\nthreshold = 0.0\n"},
		{"negative threshold", "[faq]\nthreshold = -0.5\n"},
		{"threshold above one", "[faq]\nthreshold = 1.5\n"},
		{"negative sample ratio", "[tracing]\nsample_ratio = -0.1\n"},
		{"sample ratio above one", "[tracing]\nsample_ratio = 2.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "faqbot.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("not [valid toml"), 0644)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqbot.toml")
	os.WriteFile(path, []byte("[client]\ntimeout = \"soon\"\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid client.timeout")
	}
}

func TestLoadInvalidRetention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqbot.toml")
	os.WriteFile(path, []byte("[store]\nretention = \"-1h\"\n"), 0644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative store.retention")
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1500ms", 1500 * time.Millisecond, false},
		{"-1s", 0, true},
		{"later", 0, true},
	}

	for _, tt := range tests {
		got, err := ClientConfig{Timeout: tt.in}.RequestTimeout()
		if (err != nil) != tt.wantErr {
			t.Errorf("RequestTimeout(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("RequestTimeout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	cfg := Current()
	if cfg == nil {
		t.Fatal("Current returned nil")
	}
}

func TestDataDirEnv(t *testing.T) {
	t.Setenv("FAQBOT_DATA_DIR", "/tmp/custom-faqbot")
	if dir := DataDir(); dir != "/tmp/custom-faqbot" {
		t.Errorf("DataDir = %q, want /tmp/custom-faqbot", dir)
	}
	if p := DefaultConfigPath(); p != "/tmp/custom-faqbot/faqbot.toml" {
		t.Errorf("DefaultConfigPath = %q", p)
	}
}
