package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	FetchErrors        atomic.Int64
	RateLimitHits      atomic.Int64
	IdentityRotations  atomic.Int64
	PlayerRequests     atomic.Int64
	WatchPageRequests  atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"rate_limit_hits":     metrics.RateLimitHits.Load(),
		"identity_rotations":  metrics.IdentityRotations.Load(),
		"player_requests":     metrics.PlayerRequests.Load(),
		"watch_page_requests": metrics.WatchPageRequests.Load(),
	}
}

// FormatMetrics returns counters as a simple text format for debug logging.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"transcript_requests", "fetch_errors",
		"rate_limit_hits", "identity_rotations",
		"player_requests", "watch_page_requests",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrFetchErrors()        { metrics.FetchErrors.Add(1) }
func IncrRateLimitHits()      { metrics.RateLimitHits.Add(1) }
func IncrIdentityRotations()  { metrics.IdentityRotations.Add(1) }

// Incrementors for the sources sub-package.
func IncrPlayerRequests()    { metrics.PlayerRequests.Add(1) }
func IncrWatchPageRequests() { metrics.WatchPageRequests.Add(1) }
