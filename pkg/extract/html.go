package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"webharvest/pkg/utils"
)

// Fixed diagnostic strings recorded in place of text when extraction comes up
// empty. They are part of the output contract; tests depend on them verbatim.
const (
	DiagnosticNoVisibleText = "Warning: no visible text extracted from this page."
	DiagnosticPDFNoText     = "Warning: PDF may be image-based or contains no extractable text."
)

// ParseMarkup parses rendered page markup into a document usable by both the
// text reducer and the link harvester.
func ParseMarkup(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML markup: %w", utils.ErrParsing, err)
	}
	return doc, nil
}

// VisibleText strips script and style content from the document and reduces
// the remainder to the whitespace-normalized concatenation of its non-empty
// text nodes. Removal mutates the document; harvest links from the same
// document after, not before, relying on anchors living outside script tags.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if fields := strings.Fields(n.Data); len(fields) > 0 {
				parts = append(parts, strings.Join(fields, " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}
