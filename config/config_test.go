package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meenmo/bondrv/config"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if cfg.ReferenceCountry != "Germany" {
		t.Fatalf("reference country = %q, want Germany", cfg.ReferenceCountry)
	}
	if cfg.RefreshInterval != 90*time.Second {
		t.Fatalf("refresh interval = %v, want 90s", cfg.RefreshInterval)
	}
	if len(cfg.TenorPairs) == 0 || len(cfg.FlyTriples) != 2 {
		t.Fatalf("shape config incomplete: pairs=%d flies=%d", len(cfg.TenorPairs), len(cfg.FlyTriples))
	}
	if got, ok := cfg.Currency("France"); !ok || got != "EUR" {
		t.Fatalf("Currency(France) = %q, %v, want EUR, true", got, ok)
	}
	if got, ok := cfg.Currency("Atlantis"); ok || got != "" {
		t.Fatalf("Currency(Atlantis) = %q, %v, want unmapped", got, ok)
	}
	if got := cfg.SwapFrequency("eur"); got != 1 {
		t.Fatalf("SwapFrequency(eur) = %d, want 1", got)
	}
	if got := cfg.SwapFrequency("KRW"); got != 2 {
		t.Fatalf("SwapFrequency fallback = %d, want 2", got)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
reference_country: "United States"
countries: ["United States", "Canada"]
refresh_interval: 30s
server:
  addr: ":9090"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReferenceCountry != "United States" {
		t.Fatalf("reference country = %q, want United States", cfg.ReferenceCountry)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Fatalf("refresh interval = %v, want 30s", cfg.RefreshInterval)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("server addr = %q, want :9090", cfg.Server.Addr)
	}
	// Untouched keys keep defaults.
	if cfg.Logging.Level != "info" {
		t.Fatalf("logging level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
reference_country: "Germany"
countries: ["France"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("Load accepted a reference country outside the configured set")
	}

	if _, err := config.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("Load accepted a missing config file")
	}
}

func TestValidateRejectsBadEnums(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Alignment = "fuzzy"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted unknown alignment")
	}

	cfg = config.Default()
	cfg.Compounding = "quarterly"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted unknown compounding")
	}

	cfg = config.Default()
	cfg.RefreshInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted zero refresh interval")
	}

	cfg = config.Default()
	cfg.FlyTriples = []config.FlyTriple{{Short: 10, Mid: 5, Long: 2}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted unordered fly legs")
	}

	cfg = config.Default()
	cfg.Countries = append(cfg.Countries, "Atlantis")
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted a country with no currency mapping")
	}
}
