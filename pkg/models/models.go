package models

import "time"

// WorkItem is one frontier entry: a URL awaiting processing and the hop
// distance at which it was discovered. Owned by the scheduler's queue;
// created on enqueue, consumed on dequeue, never mutated.
type WorkItem struct {
	URL   string
	Depth int
}

// SourceKindWebPage is the fixed source tag stamped on every exported record.
// The title/videoId placeholders exist for schema compatibility with a sibling
// video-transcript ingestion pipeline and are always empty for crawled pages.
const SourceKindWebPage = "WebPage"

// OutputRecord is the only shape downstream consumers may depend on.
type OutputRecord struct {
	SourceKind string `json:"sourceKind"`
	Title      string `json:"title"`
	VideoID    string `json:"videoId"`
	URL        string `json:"url"`
	Transcript string `json:"transcript"`
}

// NewOutputRecord projects one crawl result entry into the export shape.
func NewOutputRecord(url, text string) OutputRecord {
	return OutputRecord{
		SourceKind: SourceKindWebPage,
		Title:      "",
		VideoID:    "",
		URL:        url,
		Transcript: text,
	}
}

// CrawlMetadata holds run-level metadata for a single seed-site crawl,
// written as YAML next to the per-resource files.
type CrawlMetadata struct {
	RunID          string             `yaml:"run_id"`
	SiteKey        string             `yaml:"site_key"`
	ScopeHost      string             `yaml:"scope_host"`
	SeedURL        string             `yaml:"seed_url"`
	MaxDepth       int                `yaml:"max_depth"`
	MaxPages       int                `yaml:"max_pages"`
	CrawlStartTime time.Time          `yaml:"crawl_start_time"`
	CrawlEndTime   time.Time          `yaml:"crawl_end_time"`
	TotalResources int                `yaml:"total_resources"`
	Resources      []ResourceMetadata `yaml:"resources"`
}

// ResourceMetadata holds metadata for a single processed resource.
type ResourceMetadata struct {
	URL           string    `yaml:"url"`
	CanonicalURL  string    `yaml:"canonical_url"`
	LocalFilePath string    `yaml:"local_file_path"` // Relative to the site output dir
	Kind          string    `yaml:"kind"`
	Depth         int       `yaml:"depth"`
	ProcessedAt   time.Time `yaml:"processed_at"`
	Failed        bool      `yaml:"failed,omitempty"`
}
