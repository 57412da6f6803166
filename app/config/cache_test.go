package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunLoadsSources(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "shopreviews.yml", "subreddit: InstagramShopReviews\nsettings:\n  enabled: true\n  page_limit: 50\n")
	writeSourceFile(t, dir, "scams.yaml", "settings:\n  enabled: false\n")

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if count := cache.GetSourceCount(); count != 2 {
		t.Errorf("Expected 2 sources, got %d", count)
	}

	src, err := cache.GetSource("shopreviews")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if src.Subreddit != "InstagramShopReviews" {
		t.Errorf("Expected subreddit 'InstagramShopReviews', got '%s'", src.Subreddit)
	}
	if src.Settings.PageLimit != 50 {
		t.Errorf("Expected page limit 50, got %d", src.Settings.PageLimit)
	}
}

func TestSubredditDefaultsToName(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "plainsub.yml", "settings:\n  enabled: true\n")

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	src, err := cache.GetSource("plainsub")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if src.Subreddit != "plainsub" {
		t.Errorf("Expected subreddit to default to file name, got '%s'", src.Subreddit)
	}
}

func TestSettingsDefaultsAndCap(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "defaults.yml", "settings:\n  enabled: true\n")
	writeSourceFile(t, dir, "greedy.yml", "settings:\n  enabled: true\n  page_limit: 500\n")

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	defaults, _ := cache.GetSource("defaults")
	if defaults.Settings.PageLimit != 100 {
		t.Errorf("Expected default page limit 100, got %d", defaults.Settings.PageLimit)
	}
	if defaults.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", defaults.Settings.Timeout)
	}

	greedy, _ := cache.GetSource("greedy")
	if greedy.Settings.PageLimit != 100 {
		t.Errorf("Expected page limit capped at 100, got %d", greedy.Settings.PageLimit)
	}
}

func TestGetEnabledSourcesSorted(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "zeta.yml", "settings:\n  enabled: true\n")
	writeSourceFile(t, dir, "alpha.yml", "settings:\n  enabled: true\n")
	writeSourceFile(t, dir, "off.yml", "settings:\n  enabled: false\n")

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	enabled := cache.GetEnabledSources()
	if len(enabled) != 2 {
		t.Fatalf("Expected 2 enabled sources, got %d", len(enabled))
	}
	if enabled[0].Name != "alpha" || enabled[1].Name != "zeta" {
		t.Errorf("Expected sources sorted by name, got %s, %s", enabled[0].Name, enabled[1].Name)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := cache.Run(); err != nil {
		t.Errorf("Expected missing directory to be tolerated, got %v", err)
	}
	if count := cache.GetSourceCount(); count != 0 {
		t.Errorf("Expected 0 sources, got %d", count)
	}
}

func TestGetSourceUnknown(t *testing.T) {
	cache := NewCache(t.TempDir())
	if _, err := cache.GetSource("missing"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

func TestRunInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "broken.yml", "settings: [not: valid\n")

	cache := NewCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
