package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VIBE_MODE", "")
	t.Setenv("VIBE_PORT", "")
	t.Setenv("VIBE_CLASSIFIER", "")

	cfg := Load()

	if cfg.Mode != ModeLocal {
		t.Fatalf("expected local mode, got %q", cfg.Mode)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Classifier != "rules" {
		t.Fatalf("expected rules classifier by default, got %q", cfg.Classifier)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VIBE_PORT", "9090")
	t.Setenv("VIBE_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("VIBE_SESSION_TTL", "15m")
	t.Setenv("VIBE_TURN_WORKERS", "not-a-number")
	t.Setenv("VIBE_CLASSIFIER", "gemini")
	t.Setenv("VIBE_USE_RULES_ONLY", "1")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %q", cfg.Port)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if cfg.TurnWorkers != 8 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.TurnWorkers)
	}
	if cfg.Classifier != "rules" {
		t.Fatalf("rules-only flag should win, got %q", cfg.Classifier)
	}
}
