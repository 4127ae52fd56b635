// Package config reads settings from the environment through prefixed views such as
// New().Prefix("INGEST_"). Optional settings fall back to a default and log bad values;
// the few required ones panic at startup
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"hansard/internal/platform/logger"
)

// Conf is a prefixed view over environment variables
type Conf struct{ prefix string }

// New returns the unprefixed view
func New() Conf { return Conf{} }

// Prefix returns a child view, so New().Prefix("PG_").Prefix("POOL_") reads PG_POOL_*
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// may parses key with parse, logging and falling back to def when the value is bad
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).
			Msg("config: unparseable value, using default")
		return def
	}
	return v
}

// MustString returns key or panics when it is unset
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("config: missing required value")
	}
	return v
}

// MayString returns key or def
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayCSV splits a comma separated list, dropping blanks. An all blank list is def
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns key (or def) when it case-insensitively matches one of allowed, lowered.
// Anything else panics: a typo in a provider name should stop the process, not pick a default
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	if v == "" {
		return ""
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("config: value not allowed")
	return ""
}

// MayDate parses key with the first layout that fits (time.DateOnly when none given).
// Unset is the zero time. A set but unparseable date panics, since silently dropping a
// range bound would widen an ingest run
func (c Conf) MayDate(key string, layouts ...string) time.Time {
	s := c.lookup(key)
	if s == "" {
		return time.Time{}
	}
	if len(layouts) == 0 {
		layouts = []string{time.DateOnly}
	}
	for _, l := range layouts {
		if d, err := time.Parse(l, s); err == nil {
			return d
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Strs("layouts", layouts).Msg("config: invalid date")
	return time.Time{}
}
