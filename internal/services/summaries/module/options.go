package module

import (
	"time"

	"hansard/internal/platform/config"
)

// Options holds configuration options for the summaries service
type Options struct {
	Enabled   bool
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	MaxChars  int
	DryRun    bool
	Retries   int
	RetryBase time.Duration
	Timeout   time.Duration
	RPS       float64
}

// FromConfig reads the summary options from config with CORE_AI_ prefix. OPENAI_API_KEY
// and OPENAI_MODEL are honoured when the prefixed keys are unset
func FromConfig(cfg config.Conf) Options {
	ai := cfg.Prefix("CORE_AI_")
	oa := cfg.Prefix("OPENAI_")
	return Options{
		Enabled:   ai.MayBool("ENABLED", false),
		Provider:  ai.MayEnum("PROVIDER", "openai", "openai"),
		APIKey:    ai.MayString("API_KEY", oa.MayString("API_KEY", "")),
		BaseURL:   ai.MayString("BASE_URL", ""),
		Model:     ai.MayString("MODEL", oa.MayString("MODEL", "gpt-4o-mini")),
		MaxChars:  ai.MayInt("MAX_CHARS", 12000),
		DryRun:    ai.MayBool("DRY_RUN", false),
		Retries:   ai.MayInt("RETRIES", 3),
		RetryBase: ai.MayDuration("RETRY_BASE", 500*time.Millisecond),
		Timeout:   ai.MayDuration("TIMEOUT", 60*time.Second),
		RPS:       ai.MayFloat64("RPS", 0),
	}
}
