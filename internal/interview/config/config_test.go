package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "42")
	t.Setenv("X_INT_BAD", "forty-two")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_MS", "1500")

	if got := envInt("X_INT", 7); got != 42 {
		t.Fatalf("envInt = %d", got)
	}
	if got := envInt("X_INT_BAD", 7); got != 7 {
		t.Fatalf("bad int should fall back, got %d", got)
	}
	if got := envInt("X_INT_MISSING", 7); got != 7 {
		t.Fatalf("missing int should fall back, got %d", got)
	}
	if !envBool("X_BOOL", false) {
		t.Fatalf("envBool should read true")
	}
	if got := envDurationMs("X_MS", time.Minute); got != 1500*time.Millisecond {
		t.Fatalf("envDurationMs = %v", got)
	}
	if got := envDurationMs("X_MS_MISSING", time.Minute); got != time.Minute {
		t.Fatalf("missing duration should fall back, got %v", got)
	}
	if got := firstNonEmpty("", "  ", "third"); got != "third" {
		t.Fatalf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("all-blank firstNonEmpty = %q", got)
	}
}

func TestLoadStageThresholds(t *testing.T) {
	t.Setenv("STAGE_AUTO_ADVANCE", "false")
	t.Setenv("STAGE_FORCE_MINIMAL", "6")

	th := loadStageThresholds()
	if th.AutoAdvance {
		t.Fatalf("auto advance should be off")
	}
	if th.ForceMinimal != 6 {
		t.Fatalf("ForceMinimal = %d, want 6", th.ForceMinimal)
	}
	// Unset keys keep the defaults.
	if th.ForceExhaustion != 3 {
		t.Fatalf("ForceExhaustion = %d, want default 3", th.ForceExhaustion)
	}
}

func TestLoadLLMConfig(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_MODEL", "gemini-2.0-flash")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("LLM_MAX_TOKENS", "256")

	llm := loadLLMConfig()
	if llm.Provider != "gemini" {
		t.Fatalf("provider %q, want lowercased gemini", llm.Provider)
	}
	if llm.Model != "gemini-2.0-flash" || llm.APIKey != "k" || llm.MaxTokens != 256 {
		t.Fatalf("got %+v", llm)
	}
	if llm.CallTimeout != 30*time.Second {
		t.Fatalf("CallTimeout = %v, want default 30s", llm.CallTimeout)
	}
}

func TestLoadRedirectsOverride(t *testing.T) {
	t.Setenv("REDIRECT_POLITICAL", "custom political redirect")
	r := loadRedirects()
	if r.Political != "custom political redirect" {
		t.Fatalf("got %q", r.Political)
	}
	if r.OffTopic == "" {
		t.Fatalf("unset redirect lost its default")
	}
}

func TestResolveArchiveEndpoint(t *testing.T) {
	t.Setenv("ARCHIVE_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("ARCHIVE_S3_ENDPOINT", "s3.example.com")

	if got := resolveArchiveEndpoint("local"); got != "localhost:9000" {
		t.Fatalf("local endpoint = %q", got)
	}
	if got := resolveArchiveEndpoint("prod"); got != "s3.example.com" {
		t.Fatalf("prod endpoint = %q", got)
	}
	if resolveArchiveUseSSL("local") {
		t.Fatalf("local archive must not use SSL")
	}
}
