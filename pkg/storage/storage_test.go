package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webharvest/pkg/config"
)

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func TestMemoryStore_MarkVisited(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	added, err := store.MarkVisited("https://a.com/x")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.MarkVisited("https://a.com/x")
	require.NoError(t, err)
	assert.False(t, added, "second mark of same key must not report added")

	count, err := store.VisitedCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_ConcurrentAdmission(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	const goroutines = 32
	var wg sync.WaitGroup
	addedCount := make(chan bool, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := store.MarkVisited("https://a.com/contested")
			require.NoError(t, err)
			if added {
				addedCount <- true
			}
		}()
	}
	wg.Wait()
	close(addedCount)

	assert.Len(t, addedCount, 1, "exactly one concurrent MarkVisited must win")
}

func TestBadgerStore_MarkVisited(t *testing.T) {
	stateDir := t.TempDir()
	store, err := NewBadgerStore(stateDir, "example.com", testEntry())
	require.NoError(t, err)
	defer store.Close()

	added, err := store.MarkVisited("https://example.com/")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.MarkVisited("https://example.com/")
	require.NoError(t, err)
	assert.False(t, added)

	count, err := store.VisitedCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBadgerStore_FreshPerRun(t *testing.T) {
	stateDir := t.TempDir()

	store, err := NewBadgerStore(stateDir, "example.com", testEntry())
	require.NoError(t, err)
	_, err = store.MarkVisited("https://example.com/old")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// A second run over the same state dir starts with an empty visited set.
	store, err = NewBadgerStore(stateDir, "example.com", testEntry())
	require.NoError(t, err)
	defer store.Close()

	added, err := store.MarkVisited("https://example.com/old")
	require.NoError(t, err)
	assert.True(t, added, "visited set must be scoped to one run")
}

func TestFileStore_WriteCreatesDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out", "nested")
	fs := NewFileStore(root, config.CollisionOverwrite, testEntry())

	path, err := fs.Write("https-a!com---x.html", "hello")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFileStore_OverwritePolicy(t *testing.T) {
	fs := NewFileStore(t.TempDir(), config.CollisionOverwrite, testEntry())

	first, err := fs.Write("page.html", "old")
	require.NoError(t, err)
	second, err := fs.Write("page.html", "new")
	require.NoError(t, err)

	assert.Equal(t, first, second, "overwrite policy must reuse the same path")
	data, _ := os.ReadFile(second)
	assert.Equal(t, "new", string(data), "re-crawl must replace stale content")
}

func TestFileStore_SuffixPolicy(t *testing.T) {
	fs := NewFileStore(t.TempDir(), config.CollisionSuffix, testEntry())

	first, err := fs.Write("page.html", "one")
	require.NoError(t, err)
	second, err := fs.Write("page.html", "two")
	require.NoError(t, err)
	third, err := fs.Write("page.html", "three")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Contains(t, second, "page_1.html")
	assert.Contains(t, third, "page_2.html")

	data, _ := os.ReadFile(first)
	assert.Equal(t, "one", string(data), "suffix policy must not clobber prior output")
}
