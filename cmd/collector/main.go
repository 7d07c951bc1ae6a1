package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/backend"
	"go-jobposting-collector/internal/browser"
	"go-jobposting-collector/internal/config"
	"go-jobposting-collector/internal/dom"
	"go-jobposting-collector/internal/logging"
	"go-jobposting-collector/internal/pageagent"
	"go-jobposting-collector/internal/prefs"
	"go-jobposting-collector/internal/review"
	"go-jobposting-collector/internal/scraper"
	"go-jobposting-collector/internal/scraper/linkedin"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "Configuration file path")
		htmlPath   = flag.String("html", "", "Review a saved job page instead of opening a browser")
		pageURL    = flag.String("url", "", "Address the saved page was loaded from (with -html)")
		autoSave   = flag.String("auto-save", "", "Store the save-to-LinkedIn preference: on or off")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("❌ Invalid configuration: %v", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		stdlog.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	table := scraper.DefaultSelectors().WithOverrides(cfg.Selectors)
	extractor := scraper.NewExtractor(table, log)
	bridge := scraper.NewBridge(table, log)
	client := newBackendClient(cfg, log)
	store := prefs.NewFileStore(cfg.PrefsPath, log)

	if err := client.Health(ctx); err != nil {
		log.WithError(err).Warn("⚠️ Backend not reachable, existence checks will treat postings as new")
	}

	app := &collector{
		prompt: newPrompter(os.Stdin, os.Stdout),
		out:    os.Stdout,
		log:    log,
	}

	if *htmlPath != "" {
		err = app.runSnapshot(ctx, cfg, *htmlPath, *pageURL, extractor, bridge, client, store, *autoSave)
	} else {
		err = app.runLive(ctx, cfg, extractor, bridge, client, store, *autoSave, flag.Args())
	}
	app.waitForSaves()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("❌ Collector stopped")
		os.Exit(1)
	}
	log.Info("🏁 Execution finished.")
}

func newBackendClient(cfg *config.Config, log logrus.FieldLogger) *backend.Client {
	return backend.NewClient(cfg.BackendURL, cfg.RequestTimeout, log)
}

func (c *collector) runSnapshot(ctx context.Context, cfg *config.Config, path, address string,
	extractor *scraper.Extractor, bridge *scraper.Bridge, client *backend.Client, store prefs.Store, autoSave string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	page := pageagent.StaticPage{Document: doc, Address: address}

	agent := pageagent.NewAgent(page, extractor, bridge, c.log)
	c.session = review.NewSession(pageagent.NewLocal(agent), client, store, printOpener{out: c.out}, c.log)
	c.session.SetSaveTimeout(cfg.SaveTimeout)
	if err := c.applyAutoSave(autoSave); err != nil {
		return err
	}
	c.nav = staticNavigator{address: address}

	return c.review(ctx, address)
}

func (c *collector) runLive(ctx context.Context, cfg *config.Config,
	extractor *scraper.Extractor, bridge *scraper.Bridge, client *backend.Client, store prefs.Store, autoSave string, urls []string) error {
	pwManager, err := browser.NewPlaywright(browser.Options{Headless: cfg.Headless}, c.log)
	if err != nil {
		return err
	}
	defer pwManager.Close()

	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		c.log.WithError(err).Warn("⚠️ Could not load LinkedIn cookies. Continuing logged out.")
	} else {
		c.log.WithField("count", len(cookies)).Info("🍪 Loaded LinkedIn cookies")
	}

	browserCtx, err := pwManager.NewContext(cookies)
	if err != nil {
		return err
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %w", err)
	}
	c.log.Info("✅ Browser initialized successfully!")

	pageDoc := browser.NewPageDocument(page, c.log)
	agent := pageagent.NewAgent(pageDoc, extractor, bridge, c.log)
	c.session = review.NewSession(pageagent.NewLocal(agent), client, store, browser.NewTabOpener(browserCtx), c.log)
	c.session.SetSaveTimeout(cfg.SaveTimeout)
	if err := c.applyAutoSave(autoSave); err != nil {
		return err
	}
	defer c.waitForSaves()
	c.nav = &liveNavigator{
		page:   page,
		doc:    pageDoc,
		loader: linkedin.NewLoader(c.log, true),
		shots:  browser.NewScreenshotDebugger(cfg.ScreenshotDir, c.log),
		log:    c.log,
	}

	for i := 0; ; i++ {
		var target string
		if i < len(urls) {
			target = urls[i]
		} else if len(urls) > 0 {
			return nil
		} else {
			target, err = c.prompt.line("\nJob URL (empty to quit): ")
			if err != nil || target == "" {
				return nil
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.review(ctx, target); err != nil {
			c.log.WithError(err).Error("❌ Review failed")
		}
	}
}

func (c *collector) applyAutoSave(value string) error {
	switch value {
	case "":
		return nil
	case "on":
		return c.session.SetAutoSave(true)
	case "off":
		return c.session.SetAutoSave(false)
	default:
		return fmt.Errorf("-auto-save must be on or off, got %q", value)
	}
}

type printOpener struct {
	out io.Writer
}

func (o printOpener) Open(ctx context.Context, url string) error {
	_, err := fmt.Fprintf(o.out, "🔗 %s\n", url)
	return err
}
