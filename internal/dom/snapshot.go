package dom

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Snapshot is a Document parsed from static HTML. Clicks are recorded
// instead of dispatched.
type Snapshot struct {
	doc *goquery.Document

	mu      sync.Mutex
	clicked []string
}

// Parse reads an HTML page into a Snapshot.
func Parse(r io.Reader) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Snapshot{doc: doc}, nil
}

// ParseString is Parse for an in-memory page.
func ParseString(page string) (*Snapshot, error) {
	return Parse(strings.NewReader(page))
}

func (s *Snapshot) First(selector string) (Element, bool) {
	return first(s, s.doc.Selection, selector)
}

func (s *Snapshot) All(selector string) []Element {
	found := s.doc.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &snapshotElement{owner: s, sel: sel})
	})
	return elements
}

// Clicked returns the text of every element clicked so far.
func (s *Snapshot) Clicked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicked...)
}

func (s *Snapshot) recordClick(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicked = append(s.clicked, label)
}

type snapshotElement struct {
	owner *Snapshot
	sel   *goquery.Selection
}

func first(owner *Snapshot, scope *goquery.Selection, selector string) (Element, bool) {
	found := scope.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &snapshotElement{owner: owner, sel: found}, true
}

func (e *snapshotElement) Text() string {
	var b strings.Builder
	for _, n := range e.sel.Nodes {
		renderText(&b, n)
	}
	return joinLines(b.String())
}

func (e *snapshotElement) First(selector string) (Element, bool) {
	return first(e.owner, e.sel, selector)
}

func (e *snapshotElement) Click() error {
	e.owner.recordClick(strings.TrimSpace(e.sel.Text()))
	return nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true,
}

// renderText approximates innerText: block elements and <br> end a line,
// script and style content is dropped.
func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(whitespaceRun.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return
		case atom.Br:
			b.WriteString("\n")
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}

func joinLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
