package module

import (
	"time"

	"hansard/internal/platform/config"
)

// run window dates accept ISO and the report site's day-first form
var dateLayouts = []string{time.DateOnly, "2-1-2006"}

// Options holds configuration options for the ingest service
type Options struct {
	// Fetch & cache
	CacheDir      string
	BaseURL       string
	HTTPTimeout   time.Duration
	RefreshRecent time.Duration
	CacheMaxAge   time.Duration
	CacheMaxBytes int64

	// Pool & retry
	Workers    int
	MaxRetries int
	RetryBase  time.Duration
	Delay      time.Duration

	// Timeouts
	DayTimeout   time.Duration
	FetchTimeout time.Duration
	DBTimeout    time.Duration
	AITimeout    time.Duration

	MaxDaysPerRun int
	EnableLeases  bool
	LeaseTTL      time.Duration

	// Debug output
	DumpDir  string
	SaveJSON bool

	SkipDB     bool
	ResumeFrom bool

	// Window, unprefixed: RUN_DATE, START_DATE, END_DATE
	RunDate   time.Time
	StartDate time.Time
	EndDate   time.Time
}

// FromConfig reads the ingest options from config with CORE_INGEST_ prefix
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_INGEST_")
	return Options{
		CacheDir:      in.MayString("CACHE_DIR", ".cache/sprs"),
		BaseURL:       in.MayString("BASE_URL", ""),
		HTTPTimeout:   in.MayDuration("HTTP_TIMEOUT", 30*time.Second),
		RefreshRecent: in.MayDuration("REFRESH_RECENT", 72*time.Hour),
		CacheMaxAge:   in.MayDuration("CACHE_MAX_AGE", 0),
		CacheMaxBytes: int64(in.MayInt("CACHE_MAX_MB", 0)) << 20,

		Workers:    in.MayInt("WORKERS", 4),
		MaxRetries: in.MayInt("RETRIES", 3),
		RetryBase:  in.MayDuration("RETRY_BASE", 500*time.Millisecond),
		Delay:      in.MayDuration("DELAY", 0),

		DayTimeout:   in.MayDuration("DAY_TIMEOUT", 0),
		FetchTimeout: in.MayDuration("FETCH_TIMEOUT", 2*time.Minute),
		DBTimeout:    in.MayDuration("DB_TIMEOUT", 2*time.Minute),
		AITimeout:    in.MayDuration("AI_TIMEOUT", 15*time.Minute),

		MaxDaysPerRun: in.MayInt("MAX_DAYS_PER_RUN", 0),
		EnableLeases:  in.MayBool("LEASES", true),
		LeaseTTL:      in.MayDuration("LEASE_TTL", 30*time.Minute),

		DumpDir:  in.MayString("DUMP_DIR", ""),
		SaveJSON: in.MayBool("SAVE_JSON", false),

		SkipDB:     in.MayBool("SKIP_DB", false),
		ResumeFrom: in.MayBool("RESUME_FROM", true),

		RunDate:   cfg.MayDate("RUN_DATE", dateLayouts...),
		StartDate: cfg.MayDate("START_DATE", dateLayouts...),
		EndDate:   cfg.MayDate("END_DATE", dateLayouts...),
	}
}
