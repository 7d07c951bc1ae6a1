package browser

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper start a headless browser, skipping when none is installed
func setupPage(t *testing.T) playwright.Page {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright driver not available: %v", err)
	}
	t.Cleanup(func() { _ = pw.Stop() })

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Skipf("chromium not available: %v", err)
	}
	t.Cleanup(func() { _ = browser.Close() })

	page, err := browser.NewPage()
	require.NoError(t, err)
	return page
}

func TestPageDocument_Lookups(t *testing.T) {
	page := setupPage(t)
	require.NoError(t, page.SetContent(`<html><body>
		<h1 class="t-24">Platform Engineer</h1>
		<span class="bullet">Berlin, Germany</span><span class="bullet">Remote</span>
		<div class="card"><span class="tvm__text">Austin, TX</span></div>
		<button class="jobs-save-button" onclick="this.innerText='Saved'">Save</button>
	</body></html>`))

	logger, _ := test.NewNullLogger()
	doc := NewPageDocument(page, logger)

	title, ok := doc.First("h1.t-24")
	require.True(t, ok)
	assert.Equal(t, "Platform Engineer", title.Text())

	_, ok = doc.First(".missing")
	assert.False(t, ok)

	bullets := doc.All(".bullet")
	require.Len(t, bullets, 2)
	assert.Equal(t, "Remote", bullets[1].Text())

	card, ok := doc.First(".card")
	require.True(t, ok)
	inner, ok := card.First(".tvm__text")
	require.True(t, ok)
	assert.Equal(t, "Austin, TX", inner.Text())

	btn, ok := doc.First("button.jobs-save-button")
	require.True(t, ok)
	require.NoError(t, btn.Click())
	assert.Equal(t, "Saved", btn.Text())
}
