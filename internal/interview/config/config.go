package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"beliefshift/internal/interview/drift"
	"beliefshift/internal/interview/prompt"
	"beliefshift/internal/interview/stage"
)

type Config struct {
	Port string
	Env  string

	ChatDuration      time.Duration
	MaxSummaryBullets int

	StageThresholds stage.Thresholds

	StateCacheSize int
	StateCacheTTL  time.Duration

	LLM     LLMConfig
	Archive ArchiveConfig

	Redirects        drift.Redirects
	OpeningTemplates prompt.OpeningTemplates

	ProfileStoreDSN string
	ConvStoreDSN    string
}

type LLMConfig struct {
	Provider    string // openai | gemini | stub
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float32
	MaxTokens   int
	CallTimeout time.Duration
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:              *port,
		Env:               env,
		ChatDuration:      envDurationMs("CHAT_DURATION_MS", 10*time.Minute),
		MaxSummaryBullets: envInt("MAX_SUMMARY_BULLETS", 5),
		StageThresholds:   loadStageThresholds(),
		StateCacheSize:    envInt("STATE_CACHE_SIZE", 1000),
		StateCacheTTL:     envDurationMs("STATE_CACHE_TTL_MS", 5*time.Minute),
		LLM:               loadLLMConfig(),
		Archive:           loadArchiveConfig(env),
		Redirects:         loadRedirects(),
		OpeningTemplates:  loadOpeningTemplates(),
		ProfileStoreDSN:   strings.TrimSpace(os.Getenv("PROFILE_STORE_PG_DSN")),
		ConvStoreDSN:      strings.TrimSpace(os.Getenv("CONV_STORE_PG_DSN")),
	}, nil
}

func loadStageThresholds() stage.Thresholds {
	th := stage.DefaultThresholds()
	th.AutoAdvance = envBool("STAGE_AUTO_ADVANCE", true)
	th.ExploreSubstantive = envInt("STAGE_EXPLORE_SUBSTANTIVE", th.ExploreSubstantive)
	th.ExploreTurns = envInt("STAGE_EXPLORE_TURNS", th.ExploreTurns)
	th.ExploreMinimal = envInt("STAGE_EXPLORE_MINIMAL", th.ExploreMinimal)
	th.ExploreMinTurns = envInt("STAGE_EXPLORE_MIN_TURNS", th.ExploreMinTurns)
	th.ElaborateExhaustion = envInt("STAGE_ELABORATE_EXHAUSTION", th.ElaborateExhaustion)
	th.ElaborateMinimal = envInt("STAGE_ELABORATE_MINIMAL", th.ElaborateMinimal)
	th.ElaborateTurns = envInt("STAGE_ELABORATE_TURNS", th.ElaborateTurns)
	th.ElaborateSubstantive = envInt("STAGE_ELABORATE_SUBSTANTIVE", th.ElaborateSubstantive)
	th.ForceExhaustion = envInt("STAGE_FORCE_EXHAUSTION", th.ForceExhaustion)
	th.ForceMinimal = envInt("STAGE_FORCE_MINIMAL", th.ForceMinimal)
	th.ForceTopicTurns = envInt("STAGE_FORCE_TOPIC_TURNS", th.ForceTopicTurns)
	return th
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "openai"))
	return LLMConfig{
		Provider:    provider,
		Model:       firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_MODEL")), "gpt-4o-mini"),
		BaseURL:     strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		APIKey:      firstNonEmpty(strings.TrimSpace(os.Getenv("OPENAI_API_KEY")), strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))),
		Temperature: envFloat32("LLM_TEMPERATURE", 0.7),
		MaxTokens:   envInt("LLM_MAX_TOKENS", 400),
		CallTimeout: envDurationMs("LLM_CALL_TIMEOUT_MS", 30000*time.Millisecond),
	}
}

func loadArchiveConfig(env string) ArchiveConfig {
	endpoint := resolveArchiveEndpoint(env)
	return ArchiveConfig{
		Enabled:   endpoint != "" && envBool("ARCHIVE_ENABLED", false),
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "beliefshift-transcripts"),
		UseSSL:    resolveArchiveUseSSL(env),
	}
}

func resolveArchiveEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARCHIVE_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
}

func resolveArchiveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return envBool("ARCHIVE_S3_USE_SSL", true)
}

func loadRedirects() drift.Redirects {
	r := drift.DefaultRedirects()
	if v := strings.TrimSpace(os.Getenv("REDIRECT_OFF_TOPIC")); v != "" {
		r.OffTopic = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIRECT_POLITICAL")); v != "" {
		r.Political = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIRECT_ACTION_ROLE")); v != "" {
		r.ActionRole = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIRECT_BELIEF_DRIFT")); v != "" {
		r.BeliefDrift = v
	}
	return r
}

func loadOpeningTemplates() prompt.OpeningTemplates {
	t := prompt.DefaultOpeningTemplates()
	if v := strings.TrimSpace(os.Getenv("OPENING_CHANGED_WITH_DESCRIPTION")); v != "" {
		t.ChangedWithDescription = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENING_CHANGED_NO_DESCRIPTION")); v != "" {
		t.ChangedNoDescription = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENING_UNCHANGED")); v != "" {
		t.Unchanged = v
	}
	return t
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat32(key string, fallback float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return fallback
	}
	return float32(v)
}

func envDurationMs(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
