package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// TabOpener opens URLs in new tabs of a browser context.
type TabOpener struct {
	browserCtx playwright.BrowserContext
}

func NewTabOpener(browserCtx playwright.BrowserContext) *TabOpener {
	return &TabOpener{browserCtx: browserCtx}
}

func (o *TabOpener) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := o.browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}
