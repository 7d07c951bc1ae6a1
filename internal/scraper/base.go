// Selector tables for the LinkedIn job page.
// Markup on the source site changes often: keep lookups here as data and
// leave the extraction control flow alone.

package scraper

import (
	"strings"

	"go-jobposting-collector/internal/dom"
)

// Probe is one lookup strategy in a fallback list.
type Probe struct {
	// Name identifies the probe in the extraction trace.
	Name   string
	Lookup func(doc dom.Document) (dom.Element, bool)
}

// CSS builds a probe returning the first element matching selector.
func CSS(selector string) Probe {
	return Probe{
		Name: selector,
		Lookup: func(doc dom.Document) (dom.Element, bool) {
			return doc.First(selector)
		},
	}
}

// CSSList builds one probe per selector, keeping their order.
func CSSList(selectors ...string) []Probe {
	probes := make([]Probe, 0, len(selectors))
	for _, s := range selectors {
		if s = strings.TrimSpace(s); s != "" {
			probes = append(probes, CSS(s))
		}
	}
	return probes
}

// SelectorTable holds every lookup the extractor and the page bridge use.
type SelectorTable struct {
	Title       []Probe
	Company     []Probe
	Description []Probe

	// Single containers, no fallback list.
	WorkPreferences string
	ApplicantCount  string

	PrimaryDescription string
	PrimaryLocation    string
	LocationBullets    []string

	SaveControl     []Probe
	LoginIndicators []Probe
}

// DefaultSelectors returns the table for the current LinkedIn markup, most
// specific selectors first.
func DefaultSelectors() SelectorTable {
	return SelectorTable{
		Title: CSSList(
			"h1.top-card-layout__title",
			"[data-job-title]",
			"h1.jobs-unified-top-card__job-title",
			"h1.t-24",
			".job-details-jobs-unified-top-card__job-title",
		),
		Company: CSSList(
			".job-details-jobs-unified-top-card__company-name a",
			"a.job-details-jobs-unified-top-card__company-name",
			"a.topcard__org-name-link",
			".topcard__flavor--black-link",
			"a.jobs-unified-top-card__company-name",
			".jobs-unified-top-card__subtitle-primary-grouping a",
		),
		Description: CSSList(
			".jobs-description__content",
			".jobs-box__html-content",
			`[class*="description"]`,
			".jobs-description",
		),

		WorkPreferences: ".job-details-fit-level-preferences",
		ApplicantCount:  ".jobs-premium-applicant-insights__list-num",

		PrimaryDescription: ".job-details-jobs-unified-top-card__primary-description-container",
		PrimaryLocation:    ".tvm__text",
		LocationBullets: []string{
			".jobs-unified-top-card__bullet",
			".topcard__flavor--bullet",
			".jobs-unified-top-card__workplace-type",
		},

		SaveControl: CSSList(
			`button[aria-label*="Save"]`,
			"button.jobs-save-button",
			`button[data-control-name*="save"]`,
		),
		LoginIndicators: CSSList(
			".global-nav__me",
			".global-nav__me-photo",
			`[data-control-name="identity_profile_photo"]`,
		),
	}
}

// SelectorOverrides replaces fallback lists from configuration. Empty lists
// keep the defaults.
type SelectorOverrides struct {
	Title       []string `yaml:"title"`
	Company     []string `yaml:"company"`
	Description []string `yaml:"description"`
	SaveControl []string `yaml:"save_control"`
}

// WithOverrides returns a copy of t with the non-empty override lists applied.
func (t SelectorTable) WithOverrides(o SelectorOverrides) SelectorTable {
	if probes := CSSList(o.Title...); len(probes) > 0 {
		t.Title = probes
	}
	if probes := CSSList(o.Company...); len(probes) > 0 {
		t.Company = probes
	}
	if probes := CSSList(o.Description...); len(probes) > 0 {
		t.Description = probes
	}
	if probes := CSSList(o.SaveControl...); len(probes) > 0 {
		t.SaveControl = probes
	}
	return t
}

// firstText runs probes in order and commits the first element whose text is
// non-empty after trimming. A whitespace-only match moves on to the next probe.
func firstText(doc dom.Document, probes []Probe) (text string, probe string, ok bool) {
	for _, p := range probes {
		el, found := p.Lookup(doc)
		if !found {
			continue
		}
		raw := el.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		return raw, p.Name, true
	}
	return "", "", false
}

// firstElement runs probes in order and returns the first match.
func firstElement(doc dom.Document, probes []Probe) (dom.Element, string, bool) {
	for _, p := range probes {
		if el, found := p.Lookup(doc); found {
			return el, p.Name, true
		}
	}
	return nil, "", false
}
