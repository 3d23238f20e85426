package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"webharvest/pkg/config"
	"webharvest/pkg/crawler"
	"webharvest/pkg/export"
	"webharvest/pkg/extract"
	"webharvest/pkg/fetch"
	"webharvest/pkg/metrics"
	"webharvest/pkg/parse"
	"webharvest/pkg/render"
	"webharvest/pkg/storage"
)

const version = "0.4.1"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "crawl":
		runCrawl(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list-sites":
		runListSites(os.Args[2:])
	case "version":
		fmt.Printf("webharvest %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`webharvest - Site-to-text-corpus crawler

Usage:
  webharvest <command> [options]

Commands:
  crawl       Crawl configured sites and export their text corpus
  validate    Validate configuration file
  list-sites  List available site keys
  version     Show version info

Run 'webharvest <command> -h' for command-specific help.`)
}

// loadConfig loads and parses the config file
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// runCrawl handles the crawl subcommand
func runCrawl(args []string) {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key from config (single site)")
	sites := fs.String("sites", "", "Comma-separated site keys")
	allSites := fs.Bool("all-sites", false, "Crawl all configured sites")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	metricsAddr := fs.String("metrics", "", "Prometheus metrics address, e.g. localhost:9090 (disabled by default)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: webharvest crawl [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  webharvest crawl -site course_catalog\n")
		fmt.Fprintf(os.Stderr, "  webharvest crawl -sites course_catalog,research_wiki\n")
		fmt.Fprintf(os.Stderr, "  webharvest crawl --all-sites\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	var siteKeys []string
	if *allSites {
		siteKeys = nil // resolved after loading config
	} else if *sites != "" {
		for _, s := range strings.Split(*sites, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				siteKeys = append(siteKeys, s)
			}
		}
	} else if *siteKey != "" {
		siteKeys = []string{*siteKey}
	} else {
		fmt.Fprintln(os.Stderr, "Error: one of -site, -sites, or --all-sites is required")
		fs.Usage()
		os.Exit(1)
	}

	executeCrawl(*configFile, siteKeys, *allSites, *logLevel, *metricsAddr)
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}

	return log
}

// startMetrics registers the collectors and serves the Prometheus endpoint
// when addr is non-empty.
func startMetrics(addr string, log *logrus.Logger) {
	if addr == "" {
		return
	}
	metrics.Init()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Infof("Serving metrics at http://%s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("Metrics server error: %v", err)
		}
	}()
}

// validateSites checks that every requested site key exists and its config is
// valid, logging warnings. Validate applies defaults to its receiver, so the
// validated copy is written back into appCfg for the crawl to read.
func validateSites(appCfg *config.AppConfig, siteKeys []string, log *logrus.Logger) error {
	for _, key := range siteKeys {
		siteCfg, ok := appCfg.Sites[key]
		if !ok {
			return fmt.Errorf("site key '%s' not found in config", key)
		}
		siteWarnings, err := siteCfg.Validate()
		if err != nil {
			return fmt.Errorf("site '%s' configuration error: %w", key, err)
		}
		for _, w := range siteWarnings {
			log.Warnf("[%s] %s", key, w)
		}
		appCfg.Sites[key] = siteCfg
	}
	return nil
}

func executeCrawl(configFile string, siteKeys []string, allSites bool, logLevelStr, metricsAddr string) {
	log := setupLogger(logLevelStr)

	log.Infof("Loading configuration from %s", configFile)
	appCfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	appWarnings, appErr := appCfg.Validate()
	for _, w := range appWarnings {
		log.Warn(w)
	}
	if appErr != nil {
		log.Fatalf("Config error: %v", appErr)
	}

	if allSites {
		for k := range appCfg.Sites {
			siteKeys = append(siteKeys, k)
		}
		sort.Strings(siteKeys)
		log.Infof("All sites mode: found %d sites", len(siteKeys))
	}

	if err := validateSites(appCfg, siteKeys, log); err != nil {
		log.Fatalf("%v", err)
	}

	startMetrics(metricsAddr, log)

	// Global context with signal handling for graceful shutdown. A second
	// signal forces exit.
	crawlCtx, cancelCrawl := context.WithCancel(context.Background())
	defer cancelCrawl()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		cancelCrawl()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	httpClient := fetch.NewClient(appCfg.HTTPClientSettings, log)
	extractor := extract.NewPDFExtractor(log)

	hasFailure := false
	for _, key := range siteKeys {
		siteCfg := appCfg.Sites[key]
		if err := crawlSite(crawlCtx, appCfg, &siteCfg, key, log, httpClient, extractor); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warnf("[%s] Crawl cancelled", key)
				break
			}
			log.Errorf("[%s] Crawl failed: %v", key, err)
			hasFailure = true
		}
		if crawlCtx.Err() != nil {
			break
		}
	}

	if hasFailure {
		os.Exit(1)
	}
	log.Info("All crawls completed.")
}

// crawlSite crawls every seed of one configured site sequentially, merging
// the per-seed results and writing the site's export JSON, mapping file and
// metadata.
func crawlSite(ctx context.Context, appCfg *config.AppConfig, siteCfg *config.SiteConfig, siteKey string, log *logrus.Logger, httpClient *http.Client, extractor extract.DocumentExtractor) error {
	siteLog := log.WithField("site_key", siteKey)
	primarySeed := siteCfg.SeedURLs[0]

	output, err := crawler.NewOutputManager(appCfg, siteCfg, siteKey, primarySeed, log)
	if err != nil {
		return fmt.Errorf("initializing output: %w", err)
	}
	defer func() {
		if cerr := output.Close(); cerr != nil {
			siteLog.WithError(cerr).Error("Failed to finalize output files")
		}
	}()

	// The visited store is shared across the site's seeds so overlapping
	// seeds on the same host do not reprocess pages. Canonical keys carry
	// the full host, so seeds on different hosts cannot collide.
	var store storage.VisitedStore
	if appCfg.StateDir != "" {
		store, err = storage.NewBadgerStore(appCfg.StateDir, parse.HostOf(primarySeed), siteLog)
		if err != nil {
			return fmt.Errorf("initializing visited store: %w", err)
		}
	} else {
		store = storage.NewMemoryStore()
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			siteLog.WithError(cerr).Error("Failed to close visited store")
		}
	}()

	userAgent := config.GetEffectiveUserAgent(*siteCfg, *appCfg)
	settleDelay := config.GetEffectiveSettleDelay(*siteCfg, *appCfg)

	browser := render.NewBrowser(userAgent, log)
	defer browser.Close()

	fetcher := fetch.NewFetcher(httpClient, userAgent, appCfg.HTTPClientSettings.MaxBodyBytes, log)
	agg := export.NewAggregator()

	for _, seedURL := range siteCfg.SeedURLs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c, err := crawler.NewCrawler(
			appCfg, siteCfg, siteKey, seedURL,
			log, store, fetcher, extractor,
			func() (render.Renderer, error) {
				return browser.NewSession(settleDelay, appCfg.RenderTimeout), nil
			},
			output,
		)
		if err != nil {
			return fmt.Errorf("initializing crawler for seed '%s': %w", seedURL, err)
		}

		res, runErr := c.Run(ctx)
		if res != nil {
			agg.Merge(res.Order, res.Texts)
		}
		if runErr != nil {
			return runErr
		}
	}

	exportPath := filepath.Join(output.OutputDir(), config.GetEffectiveExportFilename(*appCfg))
	if err := agg.WriteJSON(exportPath); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	siteLog.WithFields(logrus.Fields{
		"records":     agg.Len(),
		"export_path": exportPath,
	}).Info("Site export written")
	return nil
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key to validate (optional, validates all if empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: webharvest validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, *siteKey, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath, siteKey string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, appErr := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if appErr != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", appErr)
		return 1
	}

	if siteKey != "" {
		siteCfg, ok := appCfg.Sites[siteKey]
		if !ok {
			fmt.Fprintf(stderr, "Error: site '%s' not found in config\n", siteKey)
			return 1
		}
		siteWarnings, err := siteCfg.Validate()
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", siteKey, err)
			return 1
		}
		for _, w := range siteWarnings {
			fmt.Fprintf(stdout, "WARN: [%s] %s\n", siteKey, w)
		}
		fmt.Fprintf(stdout, "OK: Site '%s' configuration is valid\n", siteKey)
	} else {
		hasError := false
		keys := make([]string, 0, len(appCfg.Sites))
		for k := range appCfg.Sites {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			siteCfg := appCfg.Sites[key]
			siteWarnings, err := siteCfg.Validate()
			if err != nil {
				fmt.Fprintf(stderr, "ERROR: [%s] %v\n", key, err)
				hasError = true
				continue
			}
			for _, w := range siteWarnings {
				fmt.Fprintf(stdout, "WARN: [%s] %s\n", key, w)
			}
			fmt.Fprintf(stdout, "OK: [%s]\n", key)
		}
		if hasError {
			return 1
		}
	}

	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}

// runListSites handles the list-sites subcommand
func runListSites(args []string) {
	fs := flag.NewFlagSet("list-sites", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: webharvest list-sites [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doListSites(*configFile, os.Stdout, os.Stderr))
}

// doListSites lists sites and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doListSites(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	keys := make([]string, 0, len(appCfg.Sites))
	for k := range appCfg.Sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(stdout, "Sites in %s:\n\n", configPath)
	for _, key := range keys {
		site := appCfg.Sites[key]
		fmt.Fprintf(stdout, "  %s\n", key)
		fmt.Fprintf(stdout, "    Seed URLs: %d\n", len(site.SeedURLs))
		for _, seed := range site.SeedURLs {
			fmt.Fprintf(stdout, "      %s (scope: %s)\n", seed, parse.HostOf(seed))
		}
		if site.MaxDepth > 0 {
			fmt.Fprintf(stdout, "    Max Depth: %d\n", site.MaxDepth)
		}
		if site.MaxPages > 0 {
			fmt.Fprintf(stdout, "    Max Pages: %d\n", site.MaxPages)
		}
		fmt.Fprintln(stdout)
	}
	return 0
}
