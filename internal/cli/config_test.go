package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	setConfigDefaults()
	viper.SetEnvPrefix("RIGHTSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Concurrency.Workers != 4 {
		t.Errorf("expected default 4 workers, got %d", cfg.Concurrency.Workers)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Cache.MemoryTTL != 30*time.Minute {
		t.Errorf("expected default memory TTL 30m, got %v", cfg.Cache.MemoryTTL)
	}
}

func TestLoadConfig_OverridesReachTheConfig(t *testing.T) {
	resetViper(t)

	// Simulates values from a config file
	viper.Set("llm.provider", "anthropic")
	viper.Set("cache.memory_ttl", "45m")
	viper.Set("concurrency.workers", 8)
	viper.Set("output.include_footer", false)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %q", cfg.LLM.Provider)
	}
	if cfg.Cache.MemoryTTL != 45*time.Minute {
		t.Errorf("expected memory TTL 45m, got %v", cfg.Cache.MemoryTTL)
	}
	if cfg.Concurrency.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Concurrency.Workers)
	}
	if cfg.Output.IncludeFooter {
		t.Error("expected footer disabled")
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("RIGHTSCAN_LLM_MODEL", "claude-3-haiku")
	t.Setenv("RIGHTSCAN_RATE_LIMIT_BURST_SIZE", "9")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.LLM.Model != "claude-3-haiku" {
		t.Errorf("expected model from environment, got %q", cfg.LLM.Model)
	}
	if cfg.RateLimit.BurstSize != 9 {
		t.Errorf("expected burst size from environment, got %d", cfg.RateLimit.BurstSize)
	}
}
