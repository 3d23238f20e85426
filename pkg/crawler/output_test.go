package crawler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"webharvest/pkg/config"
	"webharvest/pkg/models"
	"webharvest/pkg/parse"
)

func TestOutputManagerPersistAndClose(t *testing.T) {
	appCfg := &config.AppConfig{
		OutputBaseDir:      t.TempDir(),
		EnableOutputMap:    true,
		EnableMetadataYAML: true,
	}
	siteCfg := &config.SiteConfig{SeedURLs: []string{"http://a.com/"}, MaxDepth: 2, MaxPages: 10}

	om, err := NewOutputManager(appCfg, siteCfg, "testsite", "http://a.com/", discardLogger())
	require.NoError(t, err)

	taskLog := discardLogger().WithField("test", true)
	rel, err := om.PersistResource("http://a.com/docs/guide.html", parse.KindHTML, "guide text", taskLog)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(om.OutputDir(), rel))
	require.NoError(t, err)
	assert.Equal(t, "guide text", string(content))

	om.RecordResource(models.ResourceMetadata{
		URL:           "http://a.com/docs/guide.html",
		CanonicalURL:  "http://a.com/docs/guide.html",
		LocalFilePath: rel,
		Kind:          string(parse.KindHTML),
		Depth:         1,
		ProcessedAt:   time.Now().UTC(),
	})
	require.NoError(t, om.Close())

	mapData, err := os.ReadFile(filepath.Join(om.OutputDir(), "url_to_file_map.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(mapData), "http://a.com/docs/guide.html\t"+rel+"\n")

	metaData, err := os.ReadFile(filepath.Join(om.OutputDir(), "metadata.yaml"))
	require.NoError(t, err)
	var meta models.CrawlMetadata
	require.NoError(t, yaml.Unmarshal(metaData, &meta))
	assert.NotEmpty(t, meta.RunID)
	assert.Equal(t, "a.com", meta.ScopeHost)
	assert.Equal(t, 1, meta.TotalResources)
	require.Len(t, meta.Resources, 1)
	assert.Equal(t, rel, meta.Resources[0].LocalFilePath)
}

func TestOutputManagerMarkdownSidecar(t *testing.T) {
	appCfg := &config.AppConfig{
		OutputBaseDir: t.TempDir(),
		SaveMarkdown:  true,
	}
	siteCfg := &config.SiteConfig{SeedURLs: []string{"http://a.com/"}}

	om, err := NewOutputManager(appCfg, siteCfg, "testsite", "http://a.com/", discardLogger())
	require.NoError(t, err)

	taskLog := discardLogger().WithField("test", true)
	om.WriteMarkdownSidecar("http://a.com/page", parse.KindHTML,
		"<html><body><h1>Heading</h1></body></html>", taskLog)

	name := parse.EncodeFilename("http://a.com/page", parse.KindHTML) + ".md"
	data, err := os.ReadFile(filepath.Join(om.OutputDir(), name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Heading")
}

func TestOutputManagerMapDisabled(t *testing.T) {
	appCfg := &config.AppConfig{OutputBaseDir: t.TempDir()}
	siteCfg := &config.SiteConfig{SeedURLs: []string{"http://a.com/"}}

	om, err := NewOutputManager(appCfg, siteCfg, "testsite", "http://a.com/", discardLogger())
	require.NoError(t, err)

	taskLog := discardLogger().WithField("test", true)
	_, err = om.PersistResource("http://a.com/x", parse.KindHTML, "x", taskLog)
	require.NoError(t, err)
	require.NoError(t, om.Close())

	_, err = os.Stat(filepath.Join(om.OutputDir(), "url_to_file_map.tsv"))
	assert.True(t, os.IsNotExist(err))
}
