package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"

	"go-jobposting-collector/internal/browser"
	"go-jobposting-collector/internal/config"
	"go-jobposting-collector/internal/logging"
	"go-jobposting-collector/internal/scraper"
)

const feedURL = "https://www.linkedin.com/feed/"

func main() {
	configPath := flag.String("config", config.DefaultPath, "Configuration file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	fmt.Println("🍪 Testing cookie loading...")
	cookies, err := browser.LoadCookies(cfg.CookiesPath)
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}
	fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

	pm, err := browser.NewPlaywright(browser.Options{Headless: cfg.Headless}, logger)
	if err != nil {
		log.Fatalf("Failed to create Playwright: %v", err)
	}
	defer pm.Close()

	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		log.Fatalf("Failed to create page: %v", err)
	}

	fmt.Println("🔍 Navigating to LinkedIn...")
	if _, err := page.Goto(feedURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}
	browser.RandomDelay(1500, 2500)

	bridge := scraper.NewBridge(scraper.DefaultSelectors(), logger)
	state := bridge.DetectLoginState(browser.NewPageDocument(page, logger))
	if state.LoggedIn {
		fmt.Printf("✅ Logged in (indicators: %v)\n", state.Indicators)
	} else {
		fmt.Println("⚠️ Not logged in. Export fresh LinkedIn cookies.")
	}

	shots := browser.NewScreenshotDebugger(cfg.ScreenshotDir, logger)
	if _, err := shots.CaptureAndLog(page, "session_check", "LinkedIn session check"); err != nil {
		log.Printf("Failed to take screenshot: %v", err)
	}
	fmt.Println("✨ Check complete!")
}
