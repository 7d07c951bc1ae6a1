package browser

import (
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"go-jobposting-collector/internal/dom"
)

const lookupTimeoutMs = 2000

// PageDocument exposes a live playwright page as a dom.Document. Lookup
// failures are logged and read as "not found".
type PageDocument struct {
	page playwright.Page
	log  logrus.FieldLogger
}

func NewPageDocument(page playwright.Page, log logrus.FieldLogger) *PageDocument {
	return &PageDocument{page: page, log: log}
}

// URL is the address currently loaded in the page.
func (d *PageDocument) URL() string {
	return d.page.URL()
}

func (d *PageDocument) First(selector string) (dom.Element, bool) {
	return d.first(d.page.Locator(selector), selector)
}

func (d *PageDocument) All(selector string) []dom.Element {
	locators, err := d.page.Locator(selector).All()
	if err != nil {
		d.log.WithError(err).WithField("selector", selector).Debug("⚠️ Lookup failed")
		return nil
	}
	elements := make([]dom.Element, 0, len(locators))
	for _, loc := range locators {
		elements = append(elements, &pageElement{doc: d, loc: loc})
	}
	return elements
}

func (d *PageDocument) first(loc playwright.Locator, selector string) (dom.Element, bool) {
	loc = loc.First()
	count, err := loc.Count()
	if err != nil {
		d.log.WithError(err).WithField("selector", selector).Debug("⚠️ Lookup failed")
		return nil, false
	}
	if count == 0 {
		return nil, false
	}
	return &pageElement{doc: d, loc: loc}, true
}

type pageElement struct {
	doc *PageDocument
	loc playwright.Locator
}

func (e *pageElement) Text() string {
	text, err := e.loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(lookupTimeoutMs),
	})
	if err != nil {
		e.doc.log.WithError(err).Debug("⚠️ Could not read element text")
		return ""
	}
	return text
}

func (e *pageElement) First(selector string) (dom.Element, bool) {
	return e.doc.first(e.loc.Locator(selector), selector)
}

func (e *pageElement) Click() error {
	return e.loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(lookupTimeoutMs),
	})
}
