// go_transcript — YouTube transcript retrieval CLI.
//
// Fetches the time-coded captions for one video and prints a single JSON
// document to stdout. Optionally groups caption lines by natural pauses,
// and can route through a local Tor daemon, rotating its exit identity
// when the upstream starts rate limiting.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/tor"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type options struct {
	grouped        bool
	verbose        bool
	maxAttempts    int
	pauseThreshold float64
	proxyURL       string
	controlAddr    string
	cookieFile     string
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "go_transcript <video-id-or-url>",
		Short:         "Fetch a YouTube video transcript as JSON",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := initEngine(opts); err != nil {
				return err
			}
			result := retrieve(ctx, args[0], opts.grouped)
			return emit(result)
		},
	}

	cmd.Flags().BoolVar(&opts.grouped, "grouped", false, "Include pause-grouped segments in the output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging on stderr")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", env.Int("MAX_ATTEMPTS", 3), "Upstream retry budget")
	cmd.Flags().Float64Var(&opts.pauseThreshold, "pause-threshold", env.Float("PAUSE_THRESHOLD", engine.DefaultPauseThreshold), "Silence gap in seconds that starts a new group")
	cmd.Flags().StringVar(&opts.proxyURL, "proxy", env.Str("TOR_PROXY", ""), "SOCKS5 proxy URL for upstream calls (e.g. socks5://127.0.0.1:9050); empty = direct")
	cmd.Flags().StringVar(&opts.controlAddr, "control-addr", env.Str("TOR_CONTROL_ADDR", tor.DefaultControlAddr), "Tor control-port address for identity rotation")
	cmd.Flags().StringVar(&opts.cookieFile, "cookies", env.Str("YOUTUBE_COOKIES", defaultCookiePath()), "Netscape-format cookie file")

	return cmd
}

// retrieve resolves the reference and runs the retrieval. Resolver
// failures become a top-level error document, bypassing retrieval.
func retrieve(ctx context.Context, ref string, grouped bool) engine.Result {
	videoID, err := engine.ExtractVideoID(ref)
	if err != nil {
		return engine.Result{Error: err.Error()}
	}

	result := engine.FetchTranscript(ctx, videoID, grouped)
	slog.Debug("retrieval finished", slog.String("metrics", engine.FormatMetrics()))
	return result
}

// emit writes the result document to stdout. Error payloads are a normal
// outcome: the exit code stays zero.
func emit(result engine.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func initEngine(opts options) error {
	c := engine.Config{
		Languages:        env.List("CAPTION_LANGUAGES", "en"),
		DefaultLanguage:  "en",
		MaxAttempts:      opts.maxAttempts,
		RotationCooldown: env.Duration("ROTATION_COOLDOWN", 2*time.Second),
		PauseThreshold:   opts.pauseThreshold,
		FetchTimeout:     env.Duration("FETCH_TIMEOUT", 15*time.Second),
		Provider:         sources.NewYouTube(),
		Limiter:          rate.NewLimiter(rate.Every(time.Second), 1),
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
	if opts.proxyURL != "" {
		dialer, err := tor.SOCKSDialer(opts.proxyURL)
		if err != nil {
			return fmt.Errorf("proxy setup: %w", err)
		}
		transport.DialContext = dialer.DialContext
		c.Rotator = tor.NewController(opts.controlAddr, env.Str("TOR_CONTROL_PASSWORD", ""))
		slog.Info("routing through proxy", slog.String("proxy", opts.proxyURL))
	}
	c.HTTPClient = &http.Client{Timeout: c.FetchTimeout, Transport: transport}

	bc, err := engine.NewBrowserClient(opts.proxyURL)
	if err != nil {
		slog.Warn("browser client init failed, watch-page fallback disabled", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	if opts.cookieFile != "" {
		cookies, err := engine.LoadCookieFile(opts.cookieFile)
		if err != nil {
			slog.Warn("cookie file unreadable, continuing without cookies", slog.Any("error", err))
		} else if cookies != nil {
			c.Cookies = cookies
			slog.Info("using cookies", slog.String("file", opts.cookieFile))
		}
	}

	engine.Init(c)
	return nil
}

func defaultCookiePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".youtube_cookies.txt")
}
