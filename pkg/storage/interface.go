package storage

// VisitedStore records the canonical URL keys already admitted to a crawl's
// frontier. Implementations must make MarkVisited an atomic check-and-insert:
// when two workers discover the same link concurrently, exactly one call
// returns added=true.
type VisitedStore interface {
	// MarkVisited records the canonical key, returning true if it was newly
	// added and false if it was already present.
	MarkVisited(canonicalKey string) (added bool, err error)

	// VisitedCount returns the number of recorded keys.
	VisitedCount() (int, error)

	// Close releases any resources held by the store.
	Close() error
}
