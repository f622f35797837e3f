package engine

import "strings"

// DefaultRateLimitMarkers are the recognised signatures of upstream
// throttling or blocking. Classification is a case-insensitive substring
// match against the error message; anything that matches none of these is
// treated as non-retryable.
var DefaultRateLimitMarkers = []string{
	"429",
	"too many requests",
	"blocked",
	"could not retrieve",
	"ip has been banned",
}

// IsRateLimited reports whether err looks like upstream throttling,
// judged solely by its message against the configured marker set.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	markers := Cfg.RateLimitMarkers
	if len(markers) == 0 {
		markers = DefaultRateLimitMarkers
	}
	return matchesRateLimit(err.Error(), markers)
}

func matchesRateLimit(msg string, markers []string) bool {
	msg = strings.ToLower(msg)
	for _, m := range markers {
		if strings.Contains(msg, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
