package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube timed caption fetching.
// Primary:  ANDROID Innertube /player → captionTracks → timedtext XML
// Fallback: watch page scrape → ytInitialPlayerResponse → captionTracks

// YouTube implements engine.TranscriptProvider.
type YouTube struct{}

// NewYouTube returns the YouTube caption provider.
func NewYouTube() *YouTube { return &YouTube{} }

// Fetch retrieves the timed caption segments for a video. The player
// endpoint goes first; when it cannot produce a usable track the watch
// page scrape gets a turn. Both failing returns the joined errors so the
// retry loop can still recognise a rate-limit signature in either.
func (y *YouTube) Fetch(ctx context.Context, videoID string) (*engine.Transcript, error) {
	langs := engine.Cfg.Languages

	tr, playerErr := fetchViaPlayer(ctx, videoID, langs)
	if playerErr == nil {
		return tr, nil
	}
	slog.Warn("youtube: player failed, trying watch page",
		slog.String("id", videoID), slog.Any("err", playerErr))

	tr, scrapeErr := fetchViaWatchPage(ctx, videoID, langs)
	if scrapeErr == nil {
		return tr, nil
	}
	return nil, errors.Join(playerErr, scrapeErr)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Skips tracks that require PoToken — those only work in a browser.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText fetches a timedtext caption URL and parses it into timed
// segments. Uses exponential backoff for transient faults; a 429 is
// permanent here so the identity-rotation loop sees it without delay.
func fetchTimedText(ctx context.Context, baseURL string) ([]engine.Segment, error) {
	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		applyCookies(req)

		resp, err := engine.Cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			statusErr := fmt.Errorf("timedtext HTTP %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || !engine.IsRetryableStatus(resp.StatusCode) {
				return nil, backoff.Permanent(statusErr)
			}
			return nil, statusErr
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	resp, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3))
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

// parseTimedText converts timedtext XML into cleaned, timed segments.
// Lines that are pure markup or whitespace are dropped.
func parseTimedText(body []byte) ([]engine.Segment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]engine.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		segments = append(segments, engine.Segment{
			Text:     text,
			Start:    line.Start,
			Duration: line.Dur,
		})
	}
	if len(segments) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return segments, nil
}

// trackToTranscript resolves a caption track into the final transcript.
func trackToTranscript(ctx context.Context, track captionTrack) (*engine.Transcript, error) {
	segments, err := fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	return &engine.Transcript{Segments: segments, Language: track.LanguageCode}, nil
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func fetchViaPlayer(ctx context.Context, videoID string, langs []string) (*engine.Transcript, error) {
	engine.IncrPlayerRequests()

	data, err := postPlayer(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(data, &playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	track, err := selectTrack(playerResp, langs)
	if err != nil {
		return nil, err
	}
	return trackToTranscript(ctx, track)
}

// selectTrack pulls a usable caption track out of a player response.
func selectTrack(playerResp innertubePlayerResp, langs []string) (captionTrack, error) {
	if playerResp.Captions == nil {
		reason := ""
		if playerResp.PlayabilityStatus != nil {
			reason = playerResp.PlayabilityStatus.Reason
		}
		if reason != "" {
			return captionTrack{}, fmt.Errorf("captions unavailable: %s", reason)
		}
		return captionTrack{}, errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, errors.New("no caption tracks")
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}
	return track, nil
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// fetchViaWatchPage scrapes the YouTube watch page HTML and extracts the
// caption track URL from ytInitialPlayerResponse. Works from any IP, and
// goes through the Chrome-fingerprint client when one is configured.
func fetchViaWatchPage(ctx context.Context, videoID string, langs []string) (*engine.Transcript, error) {
	engine.IncrWatchPageRequests()

	body, err := fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	track, err := selectTrack(playerResp, langs)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return trackToTranscript(ctx, track)
}

// fetchWatchPage downloads the watch page HTML, preferring the
// Chrome-fingerprint BrowserClient over the plain HTTP client.
func fetchWatchPage(ctx context.Context, videoID string) ([]byte, error) {
	watchURL := ytWatchURL + videoID

	if bc := engine.Cfg.BrowserClient; bc != nil {
		headers := engine.ChromeHeaders()
		if engine.Cfg.Cookies != nil {
			headers["cookie"] = engine.Cfg.Cookies.CookieHeader()
		}
		body, status, err := bc.Do(http.MethodGet, watchURL, headers, nil)
		if err != nil {
			return nil, fmt.Errorf("watch page: %w", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("watch page HTTP %d", status)
		}
		return body, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		applyCookies(req)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
