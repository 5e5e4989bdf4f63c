package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.News.MaxResults != 5 {
		t.Errorf("News.MaxResults = %d, want 5", cfg.News.MaxResults)
	}
	if cfg.Completion.APIVersion != "2024-08-01-preview" {
		t.Errorf("Completion.APIVersion = %q", cfg.Completion.APIVersion)
	}
	if cfg.Storage.Container != "docs" {
		t.Errorf("Storage.Container = %q, want docs", cfg.Storage.Container)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Server.CORS.Enabled {
		t.Error("CORS should default to enabled")
	}
	if cfg.Cache.TTL.News != "1h" {
		t.Errorf("Cache.TTL.News = %q, want 1h", cfg.Cache.TTL.News)
	}
}

func TestLoadCaches(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := Load("")
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if first != second {
		t.Error("Load() should return the cached config")
	}
}

func TestEnvironmentVariableBinding(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("NAVER_CLIENT_ID", "id-123")
	t.Setenv("AZURE_SEARCH_ENDPOINT", "https://search.example.net")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.News.NaverClientID != "id-123" {
		t.Errorf("NaverClientID = %q", cfg.News.NaverClientID)
	}
	if cfg.SearchIndex.Endpoint != "https://search.example.net" {
		t.Errorf("SearchIndex.Endpoint = %q", cfg.SearchIndex.Endpoint)
	}
}

func TestTimeoutOrDefault(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"Valid duration", "45s", 45 * time.Second},
		{"Empty falls back", "", 20 * time.Second},
		{"Garbage falls back", "soon", 20 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeoutOrDefault(tc.value, 20*time.Second); got != tc.expected {
				t.Errorf("TimeoutOrDefault(%q) = %v, want %v", tc.value, got, tc.expected)
			}
		})
	}
}
