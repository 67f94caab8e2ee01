// Package config reads settings from environment variables through prefixed views.
// Malformed optional values log a warning and fall back to their default
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gscchat/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Conf is a namespaced view over the environment, e.g. New().Prefix("GSC_")
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix returns a child view; prefixes concatenate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

func (c Conf) invalid(k, v, kind string) *zerolog.Event {
	return logger.Get().Warn().Str("key", c.key(k)).Str("value", v).Str("want", kind)
}

// MayString returns the trimmed value or def
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the parsed int or def
func (c Conf) MayInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		c.invalid(key, s, "int").Int("default", def).Msg("invalid config value; using default")
		return def
	}
	return v
}

// MayBool returns the parsed bool or def
func (c Conf) MayBool(key string, def bool) bool {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		c.invalid(key, s, "bool").Bool("default", def).Msg("invalid config value; using default")
		return def
	}
	return v
}

// MayDuration returns the parsed duration (250ms, 2s, 1h) or def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		c.invalid(key, s, "duration").Dur("default", def).Msg("invalid config value; using default")
		return def
	}
	return d
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value (or def) when it is one of allowed, case-insensitively.
// Anything else panics since a wrong enum usually means a misconfigured deploy
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
