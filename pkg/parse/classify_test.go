package parse

import "testing"

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Kind
		ok       bool
	}{
		{"PDF", "https://a.com/docs/report.pdf", KindPDF, true},
		{"UppercaseExtension", "https://a.com/docs/REPORT.PDF", KindPDF, true},
		{"HTML", "https://a.com/index.html", KindHTML, true},
		{"Markdown", "https://a.com/readme.md", KindMarkdown, true},
		{"Spreadsheet", "https://a.com/data.xlsx", KindXLSX, true},
		{"WordDoc", "https://a.com/old.doc", KindDoc, true},
		{"NoExtension", "https://a.com/about", "", false},
		{"RootPath", "https://a.com/", "", false},
		{"UnknownExtension", "https://a.com/archive.zip", "", false},
		{"DotInDirectoryOnly", "https://a.com/v1.2/about", "", false},
		{"ExtensionNotInQuery", "https://a.com/view?file=x.pdf", "", false},
		{"TrailingDot", "https://a.com/file.", "", false},
		{"MultipleDots", "https://a.com/archive.tar.csv", KindCSV, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ClassifyURL(tt.input)
			if kind != tt.expected || ok != tt.ok {
				t.Errorf("ClassifyURL(%q) = (%q, %v), want (%q, %v)", tt.input, kind, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestIsLeafKind(t *testing.T) {
	if !IsLeafKind(KindPDF) {
		t.Error("PDF resources must be crawl leaves")
	}
	if IsLeafKind(KindHTML) {
		t.Error("HTML resources must not be leaves")
	}
	if IsLeafKind(KindMarkdown) {
		t.Error("markdown pages are rendered, not leaves")
	}
}
