package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"webharvest/pkg/parse"
)

// DocumentExtractor turns the raw bytes of a binary document into text.
// recoverable is false when the document holds no machine-readable text
// (e.g. a scanned, image-only PDF); the caller substitutes a diagnostic
// rather than failing the resource.
type DocumentExtractor interface {
	ExtractText(data []byte, kind parse.Kind) (text string, recoverable bool)
}

// PDFExtractor extracts plain text from PDF documents page by page.
type PDFExtractor struct {
	log *logrus.Logger
}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor(log *logrus.Logger) *PDFExtractor {
	return &PDFExtractor{log: log}
}

// ExtractText implements DocumentExtractor for the pdf kind. Other kinds are
// rendered as pages upstream and never reach the extractor.
func (e *PDFExtractor) ExtractText(data []byte, kind parse.Kind) (text string, recoverable bool) {
	if kind != parse.KindPDF {
		e.log.Warnf("Document extractor received unsupported kind '%s'", kind)
		return "", false
	}
	return e.extractPDF(data)
}

func (e *PDFExtractor) extractPDF(data []byte) (text string, recoverable bool) {
	// The pdf package panics on some malformed inputs; a corrupt document is a
	// per-resource failure, not a crawl failure.
	defer func() {
		if r := recover(); r != nil {
			e.log.Warnf("PDF parsing panicked: %v", r)
			text, recoverable = "", false
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.log.Warnf("PDF open failed: %v", err)
		return "", false
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Debugf("PDF page %d text extraction failed: %v", pageNum, err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", false
	}
	return sb.String(), true
}
