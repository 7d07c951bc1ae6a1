package linkedin

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/browser"
)

// ErrJobDetailsNotFound means the top card never rendered. Extraction can
// still run; it will simply find less.
var ErrJobDetailsNotFound = errors.New("job details not found")

const topCardSelector = ".job-details-jobs-unified-top-card__primary-description-container, .job-details-jobs-unified-top-card__job-title, h1.top-card-layout__title"

// Loader navigates a page to a job posting and waits until the parts the
// extractor reads have rendered.
type Loader struct {
	log   logrus.FieldLogger
	human bool
}

func NewLoader(log logrus.FieldLogger, human bool) *Loader {
	return &Loader{log: log, human: human}
}

func (l *Loader) Open(page playwright.Page, url string) error {
	l.log.WithField("url", url).Info("🌐 Visiting job posting")
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return fmt.Errorf("failed to load job posting: %w", err)
	}
	return l.Settle(page)
}

// Settle waits for the top card and expands the collapsed description.
func (l *Loader) Settle(page playwright.Page) error {
	//wait for content and fail fast
	if _, err := page.WaitForSelector(topCardSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		l.log.WithError(err).Warn("⚠️ Top card did not render")
		return ErrJobDetailsNotFound
	}

	if l.human {
		browser.RandomDelay(800, 1600)
		if err := browser.MouseJiggle(page); err != nil {
			l.log.WithError(err).Debug("mouse jiggle failed")
		}
		if err := browser.HumanScroll(page); err != nil {
			l.log.WithError(err).Debug("scroll failed")
		}
	}

	//expand description
	showMoreBtn := page.Locator(`button[data-testid="expandable-text-button"], button.jobs-description__footer-button`).First()
	if visible, _ := showMoreBtn.IsVisible(); visible {
		if err := showMoreBtn.Click(playwright.LocatorClickOptions{Force: playwright.Bool(true)}); err != nil {
			l.log.WithError(err).Debug("could not expand description")
		} else {
			time.Sleep(500 * time.Millisecond)
		}
	}
	return nil
}
