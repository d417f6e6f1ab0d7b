package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	xposts "github.com/RavensCloud/xposts-gofun"
)

func main() {
	// .env is a convenience for local runs; flags always win.
	_ = godotenv.Load()

	def := xposts.DefaultConfig()

	search := flag.String("search", envOr("XPOSTS_SEARCH", ""), "Comma-separated search keywords")
	limit := flag.Int("limit", envIntOr("XPOSTS_LIMIT", def.TargetCount), "Top-N posts to keep per keyword")
	cookies := flag.String("cookies", envOr("XPOSTS_COOKIES", def.CookiesPath), "Path to cookie export JSON")
	saveCookies := flag.String("save-cookies", envOr("XPOSTS_SAVE_COOKIES", ""), "Re-export session cookies to this path after login")
	headless := flag.Bool("headless", envBoolOr("XPOSTS_HEADLESS", def.Headless), "Run the browser headless (disable for interactive login)")
	proxyURL := flag.String("proxy", envOr("XPOSTS_PROXY", ""), "Proxy URL for the browser")
	creds := flag.String("creds", envOr("GOOGLE_CREDENTIALS_PATH", ""), "Google service-account key file (enables the Sheets destination)")
	spreadsheetID := flag.String("spreadsheet-id", envOr("SPREADSHEET_ID", ""), "Existing spreadsheet ID (created when empty)")
	spreadsheetName := flag.String("spreadsheet-name", envOr("SPREADSHEET_NAME", def.SpreadsheetName), "Title for a newly created spreadsheet")
	sheet := flag.String("sheet", envOr("SHEET_NAME", def.SheetName), "Worksheet name inside the spreadsheet")
	out := flag.String("out", envOr("XPOSTS_OUT", def.OutputPath), "Local output file (.json or .csv), used as fallback when Sheets is configured")
	debug := flag.Bool("debug", envBoolOr("XPOSTS_DEBUG", false), "Enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	if *search == "" {
		fmt.Fprintln(os.Stderr, "usage: xposts -search <keyword>[,<keyword>...] [-limit N] [-cookies file] [-creds key.json]")
		os.Exit(1)
	}

	cfg := def
	cfg.Keywords = splitKeywords(*search)
	cfg.TargetCount = *limit
	cfg.Headless = *headless
	cfg.Proxy = *proxyURL
	cfg.CookiesPath = *cookies
	cfg.SaveCookiesPath = *saveCookies
	cfg.CredentialsPath = *creds
	cfg.SpreadsheetID = *spreadsheetID
	cfg.SpreadsheetName = *spreadsheetName
	cfg.SheetName = *sheet
	cfg.OutputPath = *out

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func run(ctx context.Context, cfg xposts.Config, log zerolog.Logger) error {
	browser := xposts.NewBrowser(cfg)
	if err := browser.Launch(); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	if err := authenticate(browser, cfg, log); err != nil {
		return err
	}

	crawler := xposts.NewCrawler(browser, cfg).WithLogger(log)

	// Keywords run strictly sequentially on the one authenticated session.
	// A failing keyword never discards what earlier keywords collected.
	var all []xposts.Post
	for _, kw := range cfg.Keywords {
		posts, err := crawler.Crawl(ctx, kw)
		ranked := xposts.Rank(posts, cfg.TargetCount)
		all = append(all, ranked...)

		if err != nil {
			log.Error().Err(err).Str("keyword", kw).Int("partial", len(ranked)).Msg("crawl ended early")
			if errors.Is(err, xposts.ErrLoginRequired) || ctx.Err() != nil {
				break
			}
			continue
		}
		log.Info().Str("keyword", kw).Int("posts", len(ranked)).Msg("keyword done")
	}

	// Export on a fresh context so partial results still flush after an
	// operator abort.
	exportCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return export(exportCtx, cfg, log, all)
}

// authenticate injects exported session cookies, or pauses for an
// interactive login when none are available.
func authenticate(browser *xposts.Browser, cfg xposts.Config, log zerolog.Logger) error {
	set, err := xposts.LoadCookies(cfg.CookiesPath)
	switch {
	case err == nil:
		if err := browser.InjectCookies(set); err != nil {
			return fmt.Errorf("inject cookies: %w", err)
		}
		log.Info().Int("cookies", len(set)).Str("path", cfg.CookiesPath).Msg("session cookies loaded")
		return nil

	case errors.Is(err, xposts.ErrLoginRequired):
		if cfg.Headless {
			return fmt.Errorf("%w: no cookie file at %s; rerun with -headless=false to log in interactively",
				xposts.ErrLoginRequired, cfg.CookiesPath)
		}
		return interactiveLogin(browser, cfg, log)

	default:
		// Malformed cookie files are surfaced to the operator, never
		// silently discarded.
		return err
	}
}

func interactiveLogin(browser *xposts.Browser, cfg xposts.Config, log zerolog.Logger) error {
	if err := browser.Open(cfg.BaseURL + "/login"); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	log.Info().Msg("no session cookies: log in in the browser window, then press Enter")
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		return fmt.Errorf("wait for operator: %w", err)
	}
	if err := browser.WaitForLogin(time.Minute); err != nil {
		return err
	}
	log.Info().Msg("login confirmed")

	if cfg.SaveCookiesPath != "" {
		set, err := browser.Cookies()
		if err != nil {
			return fmt.Errorf("read session cookies: %w", err)
		}
		if err := xposts.SaveCookies(cfg.SaveCookiesPath, set); err != nil {
			return fmt.Errorf("save cookies: %w", err)
		}
		log.Info().Str("path", cfg.SaveCookiesPath).Msg("session cookies exported")
	}
	return nil
}

func export(ctx context.Context, cfg xposts.Config, log zerolog.Logger, posts []xposts.Post) error {
	fileSink := xposts.NewFileSink(cfg.OutputPath)
	if cfg.CredentialsPath == "" {
		return xposts.WriteWithFallback(ctx, fileSink, nil, log, posts)
	}
	sheetsSink := xposts.NewSheetsSink(cfg).WithLogger(log)
	return xposts.WriteWithFallback(ctx, sheetsSink, fileSink, log, posts)
}

func splitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
