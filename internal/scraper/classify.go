package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-jobposting-collector/internal/dom"
	"go-jobposting-collector/internal/models"
)

// normalizeText strips diacritics and lower-cases for keyword scans.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}

// Checked in this order; the first arrangement with any keyword present wins
// regardless of where the keyword sits in the text.
var workArrangementKeywords = []struct {
	arrangement models.WorkArrangement
	keywords    []string
}{
	{models.WorkRemote, []string{"remote"}},
	{models.WorkHybrid, []string{"hybrid"}},
	{models.WorkOnSite, []string{"on-site", "onsite", "on site"}},
}

// ClassifyWorkArrangement maps a work-preference text to an arrangement.
func ClassifyWorkArrangement(text string) (models.WorkArrangement, bool) {
	normalized := normalizeText(text)
	for _, candidate := range workArrangementKeywords {
		for _, kw := range candidate.keywords {
			if strings.Contains(normalized, kw) {
				return candidate.arrangement, true
			}
		}
	}
	return "", false
}

var applicantCountRegex = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)

// ClassifyDemand buckets the first integer found in an applicant-count text.
func ClassifyDemand(text string) (models.Demand, bool) {
	match := applicantCountRegex.FindString(text)
	if match == "" {
		return "", false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return "", false
	}

	switch {
	case n <= 50:
		return models.Demand0To50, true
	case n <= 200:
		return models.Demand51To200, true
	case n <= 500:
		return models.Demand201To500, true
	default:
		return models.DemandOver500, true
	}
}

// ResolveLocation reads city and country from two page regions. The primary
// description container only ever yields a city. The location bullets are
// scanned while country is unknown; they fill city only when it is still
// empty and always set country from the last comma segment.
func ResolveLocation(doc dom.Document, table SelectorTable) (city, country string) {
	if container, ok := doc.First(table.PrimaryDescription); ok {
		city = primaryCity(container, table.PrimaryLocation)
	}

	for _, selector := range table.LocationBullets {
		for _, el := range doc.All(selector) {
			bulletCity, bulletCountry, ok := splitLocation(el.Text())
			if !ok {
				continue
			}
			if city == "" {
				city = bulletCity
			}
			country = bulletCountry
			return city, country
		}
	}
	return city, country
}

func primaryCity(container dom.Element, locationSelector string) string {
	var text string
	if el, ok := container.First(locationSelector); ok {
		text = el.Text()
	} else {
		// "Austin, TX · 2 weeks ago · 80 applicants"
		text = strings.Split(container.Text(), "·")[0]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(text, ",")[0])
}

// splitLocation accepts "City, Region, Country" style text. The country is
// the last segment and must be non-empty.
func splitLocation(text string) (city, country string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, ",") {
		return "", "", false
	}
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	country = parts[len(parts)-1]
	if country == "" {
		return "", "", false
	}
	return parts[0], country, true
}
