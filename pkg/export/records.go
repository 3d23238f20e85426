package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"webharvest/pkg/models"
)

// Aggregator collects (URL -> extracted text) results across one or more
// independent seed crawls into the final exportable record set. The union is
// right-biased: on key collision a later crawl's text wins, while the key
// keeps its first-seen position so exports stay deterministically ordered.
type Aggregator struct {
	order []string
	texts map[string]string
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{texts: make(map[string]string)}
}

// Merge folds one crawl's results in. order lists the crawl's raw URLs in
// processing order; texts maps each of them to its extracted text.
func (a *Aggregator) Merge(order []string, texts map[string]string) {
	for _, url := range order {
		text, ok := texts[url]
		if !ok {
			continue
		}
		if _, exists := a.texts[url]; !exists {
			a.order = append(a.order, url)
		}
		a.texts[url] = text
	}
}

// Len returns the number of distinct URLs collected so far.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Records projects every entry into the export shape, in collection order.
func (a *Aggregator) Records() []models.OutputRecord {
	records := make([]models.OutputRecord, 0, len(a.order))
	for _, url := range a.order {
		records = append(records, models.NewOutputRecord(url, a.texts[url]))
	}
	return records
}

// WriteJSON serializes the full record collection as one indented JSON array.
// This file is the only artifact downstream consumers may depend on.
func (a *Aggregator) WriteJSON(path string) error {
	data, err := json.MarshalIndent(a.Records(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %d output records: %w", a.Len(), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory for '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export file '%s': %w", path, err)
	}
	return nil
}
