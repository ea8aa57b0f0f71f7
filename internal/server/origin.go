package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// originChecker validates the Origin header of WebSocket upgrades.
type originChecker struct {
	allowAll bool
	allowed  map[string]struct{}
	logger   zerolog.Logger
}

func newOriginChecker(origins []string, logger zerolog.Logger) *originChecker {
	c := &originChecker{allowed: make(map[string]struct{}), logger: logger}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			c.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			logger.Warn().Str("origin", origin).Msg("Ignoring invalid origin in configuration")
			continue
		}
		c.allowed[normalized] = struct{}{}
	}
	return c
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

func (c *originChecker) check(r *http.Request) bool {
	if c.allowAll {
		return true
	}
	header := r.Header.Get("Origin")
	if normalized, ok := normalizeOrigin(header); ok {
		if _, exists := c.allowed[normalized]; exists {
			return true
		}
	}
	c.logger.Warn().Str("origin", header).Msg("Blocked WebSocket connection from disallowed origin")
	return false
}
