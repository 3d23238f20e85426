package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webharvest/pkg/models"
)

func TestAggregator_MergeRightBiased(t *testing.T) {
	agg := NewAggregator()

	agg.Merge(
		[]string{"https://a.com/", "https://a.com/about"},
		map[string]string{
			"https://a.com/":      "home v1",
			"https://a.com/about": "about",
		},
	)
	agg.Merge(
		[]string{"https://a.com/", "https://b.com/"},
		map[string]string{
			"https://a.com/": "home v2",
			"https://b.com/": "other",
		},
	)

	assert.Equal(t, 3, agg.Len())
	records := agg.Records()
	require.Len(t, records, 3)

	// First-seen order preserved; later seed's value wins on collision.
	assert.Equal(t, "https://a.com/", records[0].URL)
	assert.Equal(t, "home v2", records[0].Transcript)
	assert.Equal(t, "https://a.com/about", records[1].URL)
	assert.Equal(t, "https://b.com/", records[2].URL)
}

func TestAggregator_RecordShape(t *testing.T) {
	agg := NewAggregator()
	agg.Merge([]string{"https://a.com/x"}, map[string]string{"https://a.com/x": "text"})

	records := agg.Records()
	require.Len(t, records, 1)
	assert.Equal(t, models.SourceKindWebPage, records[0].SourceKind)
	assert.Empty(t, records[0].Title)
	assert.Empty(t, records[0].VideoID)
}

func TestAggregator_WriteJSON(t *testing.T) {
	agg := NewAggregator()
	agg.Merge(
		[]string{"https://a.com/", "https://a.com/about"},
		map[string]string{
			"https://a.com/":      "home",
			"https://a.com/about": "about",
		},
	)

	path := filepath.Join(t.TempDir(), "export", "crawl_results.json")
	require.NoError(t, agg.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Downstream contract: an array of objects with exactly these keys.
	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	for _, obj := range raw {
		assert.Len(t, obj, 5)
		assert.Equal(t, "WebPage", obj["sourceKind"])
		assert.Contains(t, obj, "title")
		assert.Contains(t, obj, "videoId")
		assert.Contains(t, obj, "url")
		assert.Contains(t, obj, "transcript")
	}
}

func TestAggregator_Empty(t *testing.T) {
	agg := NewAggregator()
	assert.Equal(t, 0, agg.Len())
	assert.Empty(t, agg.Records())
}
