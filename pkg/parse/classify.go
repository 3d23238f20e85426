package parse

import (
	"net/url"
	"strings"
)

// Kind is the inferred content kind of a discovered resource.
type Kind string

const (
	KindHTML     Kind = "html"
	KindPDF      Kind = "pdf"
	KindMarkdown Kind = "md"
	KindText     Kind = "txt"
	KindCSV      Kind = "csv"
	KindXLS      Kind = "xls"
	KindXLSX     Kind = "xlsx"
	KindDoc      Kind = "doc"
	KindDocx     Kind = "docx"
)

// allowedKinds is the fixed allow-list of recognized trailing-path extensions.
var allowedKinds = map[Kind]bool{
	KindHTML:     true,
	KindPDF:      true,
	KindMarkdown: true,
	KindText:     true,
	KindCSV:      true,
	KindXLS:      true,
	KindXLSX:     true,
	KindDoc:      true,
	KindDocx:     true,
}

// ClassifyURL infers a content kind from the final path segment of a URL.
// If the segment carries a dot, the substring after the last dot is lowercased
// and accepted only when it is on the allow-list. ok is false when no
// recognized extension is present; callers treat that as hypertext.
// Pure string inspection, no network access.
func ClassifyURL(rawURL string) (kind Kind, ok bool) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	segment := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		segment = path[idx+1:]
	}
	dot := strings.LastIndex(segment, ".")
	if dot < 0 {
		return "", false
	}

	ext := Kind(strings.ToLower(segment[dot+1:]))
	if !allowedKinds[ext] {
		return "", false
	}
	return ext, true
}

// IsLeafKind reports whether resources of this kind are crawl leaves: binary
// document formats never contribute links to the frontier.
func IsLeafKind(kind Kind) bool {
	return kind == KindPDF
}
