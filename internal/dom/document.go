// Package dom is the read-only view of a rendered page that the scraper works
// against. A Document can be a live browser page or a parsed HTML snapshot.
package dom

// Document answers CSS selector lookups against a page.
type Document interface {
	// First returns the first element matching selector.
	First(selector string) (Element, bool)
	// All returns every element matching selector, in document order.
	All(selector string) []Element
}

// Element is a single matched node.
type Element interface {
	// Text returns the rendered text of the element with line breaks kept.
	Text() string
	// First looks up selector inside the element.
	First(selector string) (Element, bool)
	// Click activates the element. It is the only write a Document allows.
	Click() error
}
