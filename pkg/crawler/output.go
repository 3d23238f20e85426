package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"webharvest/pkg/config"
	"webharvest/pkg/models"
	"webharvest/pkg/parse"
	"webharvest/pkg/storage"
	"webharvest/pkg/utils"
)

// OutputManager owns everything a crawl writes to disk for one seed: the
// per-resource text files, the optional URL-to-file TSV map, the optional
// markdown sidecars, and the run metadata YAML written at Close.
type OutputManager struct {
	log       *logrus.Entry
	appCfg    *config.AppConfig
	siteCfg   *config.SiteConfig
	siteKey   string
	seedURL   string
	scopeHost string

	files       *storage.FileStore
	mdConverter *md.Converter

	mapMu   sync.Mutex
	mapFile *os.File

	metaMu    sync.Mutex
	runID     string
	startTime time.Time
	resources []models.ResourceMetadata
}

// NewOutputManager creates the site output directory and opens the mapping
// file when enabled. Call Close to flush the metadata YAML.
func NewOutputManager(appCfg *config.AppConfig, siteCfg *config.SiteConfig, siteKey, seedURL string, baseLog *logrus.Logger) (*OutputManager, error) {
	log := baseLog.WithField("site_key", siteKey)
	siteDir := filepath.Join(appCfg.OutputBaseDir, utils.SanitizeFilename(siteKey))
	if err := os.MkdirAll(siteDir, 0755); err != nil {
		return nil, fmt.Errorf("creating site output directory '%s': %w", siteDir, err)
	}

	om := &OutputManager{
		log:       log,
		appCfg:    appCfg,
		siteCfg:   siteCfg,
		siteKey:   siteKey,
		seedURL:   seedURL,
		scopeHost: parse.HostOf(seedURL),
		files:     storage.NewFileStore(siteDir, config.GetEffectiveCollisionPolicy(*siteCfg, *appCfg), log),
		runID:     uuid.NewString(),
		startTime: time.Now().UTC(),
	}

	if config.GetEffectiveSaveMarkdown(*siteCfg, *appCfg) {
		om.mdConverter = md.NewConverter("", true, nil)
	}

	if appCfg.EnableOutputMap {
		mapPath := filepath.Join(siteDir, config.GetEffectiveOutputMapFilename(*appCfg))
		f, err := os.OpenFile(mapPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening output map '%s': %w", mapPath, err)
		}
		if _, err := f.WriteString("url\tfile\n"); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing output map header: %w", err)
		}
		om.mapFile = f
	}

	return om, nil
}

// OutputDir returns the directory this manager writes into.
func (om *OutputManager) OutputDir() string {
	return om.files.Root()
}

// PersistResource writes the extracted text under the encoded filename and
// appends the URL-to-file mapping line. Returns the path relative to the site
// output directory.
func (om *OutputManager) PersistResource(rawURL string, kind parse.Kind, text string, taskLog *logrus.Entry) (string, error) {
	name := parse.EncodeFilename(rawURL, kind)
	path, err := om.files.Write(name, text)
	if err != nil {
		return "", err
	}

	rel, relErr := filepath.Rel(om.files.Root(), path)
	if relErr != nil {
		rel = path
	}

	if om.mapFile != nil {
		om.mapMu.Lock()
		_, werr := fmt.Fprintf(om.mapFile, "%s\t%s\n", rawURL, rel)
		om.mapMu.Unlock()
		if werr != nil {
			taskLog.WithError(werr).Warn("Failed to append output map entry")
		}
	}
	return rel, nil
}

// WriteMarkdownSidecar converts the rendered markup to markdown and stores it
// next to the text file. A no-op unless markdown saving is enabled. Sidecar
// failures are logged and ignored; the text corpus is the primary artifact.
func (om *OutputManager) WriteMarkdownSidecar(rawURL string, kind parse.Kind, markup string, taskLog *logrus.Entry) {
	if om.mdConverter == nil {
		return
	}

	markdown, err := om.mdConverter.ConvertString(markup)
	if err != nil {
		taskLog.WithError(err).Warn("Markdown conversion failed")
		return
	}

	name := parse.EncodeFilename(rawURL, kind) + ".md"
	if _, err := om.files.Write(name, markdown); err != nil {
		taskLog.WithError(err).Warn("Failed to persist markdown sidecar")
	}
}

// RecordResource collects per-resource metadata for the run YAML.
func (om *OutputManager) RecordResource(meta models.ResourceMetadata) {
	om.metaMu.Lock()
	om.resources = append(om.resources, meta)
	om.metaMu.Unlock()
}

// ResourcesRecorded returns the number of resources collected so far.
func (om *OutputManager) ResourcesRecorded() int {
	om.metaMu.Lock()
	defer om.metaMu.Unlock()
	return len(om.resources)
}

// Close flushes the mapping file and, when enabled, writes the run metadata
// YAML. Safe to call exactly once after the crawl finishes.
func (om *OutputManager) Close() error {
	var firstErr error

	if om.mapFile != nil {
		if err := om.mapFile.Close(); err != nil {
			firstErr = fmt.Errorf("closing output map: %w", err)
		}
		om.mapFile = nil
	}

	if om.appCfg.EnableMetadataYAML {
		if err := om.writeMetadataYAML(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (om *OutputManager) writeMetadataYAML() error {
	om.metaMu.Lock()
	meta := models.CrawlMetadata{
		RunID:          om.runID,
		SiteKey:        om.siteKey,
		ScopeHost:      om.scopeHost,
		SeedURL:        om.seedURL,
		MaxDepth:       om.siteCfg.MaxDepth,
		MaxPages:       om.siteCfg.MaxPages,
		CrawlStartTime: om.startTime,
		CrawlEndTime:   time.Now().UTC(),
		TotalResources: len(om.resources),
		Resources:      append([]models.ResourceMetadata(nil), om.resources...),
	}
	om.metaMu.Unlock()

	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshalling crawl metadata: %w", err)
	}

	path := filepath.Join(om.files.Root(), config.GetEffectiveMetadataFilename(*om.appCfg))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing crawl metadata '%s': %w", path, err)
	}

	om.log.WithField("path", path).Info("Crawl metadata written")
	return nil
}
