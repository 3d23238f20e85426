package extract

import (
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webharvest/pkg/parse"
)

func TestVisibleText(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected string
	}{
		{
			name:     "PlainParagraphs",
			markup:   `<html><body><h1>Title</h1><p>Hello world.</p></body></html>`,
			expected: "Title Hello world.",
		},
		{
			name:     "ScriptAndStyleStripped",
			markup:   `<html><head><style>body{color:red}</style></head><body><script>var x=1;</script><p>Visible</p></body></html>`,
			expected: "Visible",
		},
		{
			name:     "NoscriptStripped",
			markup:   `<html><body><noscript>enable js</noscript><p>Shown</p></body></html>`,
			expected: "Shown",
		},
		{
			name:     "WhitespaceCollapsed",
			markup:   "<html><body><p>  spaced\n\n\tout  </p><p>second</p></body></html>",
			expected: "spaced out second",
		},
		{
			name:     "EmptyBody",
			markup:   `<html><body><script>only()</script></body></html>`,
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseMarkup(tt.markup)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, VisibleText(doc))
		})
	}
}

func TestHarvestLinks(t *testing.T) {
	base, _ := url.Parse("https://a.com/docs/index.html")
	markup := `<html><body>
		<a href="/about">About</a>
		<a href="page2.html">Relative</a>
		<a href="https://b.com/x">External</a>
		<a href="#section">Fragment</a>
		<a href="mailto:team@a.com">Mail</a>
		<a href="javascript:void(0)">JS</a>
		<a href="/about">Duplicate</a>
		<a>NoHref</a>
	</body></html>`

	doc, err := ParseMarkup(markup)
	require.NoError(t, err)

	links := HarvestLinks(doc, base)
	assert.Equal(t, []string{
		"https://a.com/about",
		"https://a.com/docs/page2.html",
		"https://b.com/x",
		"https://a.com/docs/index.html#section",
	}, links)
}

func TestHarvestLinks_AfterVisibleText(t *testing.T) {
	// VisibleText removes script/style but must leave anchors intact.
	base, _ := url.Parse("https://a.com/")
	doc, err := ParseMarkup(`<html><body><script>x()</script><a href="/next">n</a></body></html>`)
	require.NoError(t, err)

	_ = VisibleText(doc)
	links := HarvestLinks(doc, base)
	assert.Equal(t, []string{"https://a.com/next"}, links)
}

func TestPDFExtractor_GarbageInput(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	e := NewPDFExtractor(log)

	text, recoverable := e.ExtractText([]byte("this is not a pdf"), parse.KindPDF)
	assert.False(t, recoverable)
	assert.Empty(t, text)
}

func TestPDFExtractor_EmptyInput(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	e := NewPDFExtractor(log)

	text, recoverable := e.ExtractText(nil, parse.KindPDF)
	assert.False(t, recoverable)
	assert.Empty(t, text)
}

func TestPDFExtractor_UnsupportedKind(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	e := NewPDFExtractor(log)

	_, recoverable := e.ExtractText([]byte("plain text"), parse.KindText)
	assert.False(t, recoverable)
}
