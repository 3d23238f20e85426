package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// HarvestLinks enumerates anchor elements carrying an href and resolves each
// against the base URL the markup was fetched from. Returns absolute URLs in
// document order with exact-string duplicates collapsed. No scope filtering or
// canonical dedup happens here; admission is the frontier scheduler's job.
func HarvestLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, element *goquery.Selection) {
		href, exists := element.Attr("href")
		if !exists || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return // Unparseable hrefs are silently skipped
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return // mailto:, tel:, javascript: and friends
		}
		abs := resolved.String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})

	return links
}
