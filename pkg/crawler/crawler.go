// Package crawler implements the frontier scheduler: a bounded breadth-first
// traversal of a single site that dispatches each resource to the renderer or
// the PDF extractor, harvests in-scope links, and accumulates the per-URL text
// corpus in discovery order.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"webharvest/pkg/config"
	"webharvest/pkg/extract"
	"webharvest/pkg/fetch"
	"webharvest/pkg/metrics"
	"webharvest/pkg/models"
	"webharvest/pkg/parse"
	"webharvest/pkg/render"
	"webharvest/pkg/storage"
	"webharvest/pkg/utils"
)

// SessionFactory opens a fresh render session for a worker. Each worker owns
// exactly one session for the lifetime of the crawl because sessions are not
// safe for concurrent use.
type SessionFactory func() (render.Renderer, error)

// Result is the in-memory outcome of one seed crawl: the processed URLs in
// the order they were dequeued, and the extracted (or diagnostic) text keyed
// by those same raw URLs.
type Result struct {
	SeedURL string
	Order   []string
	Texts   map[string]string
}

// Crawler drives the breadth-first traversal for a single seed URL. Scope is
// the seed's exact host: subdomains and other hosts are never enqueued.
type Crawler struct {
	log       *logrus.Entry
	appCfg    *config.AppConfig
	siteCfg   *config.SiteConfig
	siteKey   string
	seedURL   string
	scopeHost string

	store      storage.VisitedStore
	queue      *FrontierQueue
	fetcher    fetch.DocumentFetcher
	extractor  extract.DocumentExtractor
	newSession SessionFactory
	output     *OutputManager

	// netSem bounds concurrent network operations (renders and fetches)
	// across all workers of this crawl.
	netSem *semaphore.Weighted

	mu      sync.Mutex
	order   []string
	results map[string]string

	wg             sync.WaitGroup
	processedCount atomic.Int64
	failedCount    atomic.Int64
}

// NewCrawler assembles a crawler for one seed of one configured site. The
// visited store, fetcher, extractor and output manager are injected so tests
// can substitute fakes; scope is derived from the seed's host.
func NewCrawler(
	appCfg *config.AppConfig,
	siteCfg *config.SiteConfig,
	siteKey, seedURL string,
	baseLog *logrus.Logger,
	store storage.VisitedStore,
	fetcher fetch.DocumentFetcher,
	extractor extract.DocumentExtractor,
	newSession SessionFactory,
	output *OutputManager,
) (*Crawler, error) {
	scopeHost := parse.HostOf(seedURL)
	if scopeHost == "" {
		return nil, fmt.Errorf("seed URL %q has no usable host", seedURL)
	}

	log := baseLog.WithFields(logrus.Fields{
		"site_key": siteKey,
		"seed_url": seedURL,
	})

	return &Crawler{
		log:        log,
		appCfg:     appCfg,
		siteCfg:    siteCfg,
		siteKey:    siteKey,
		seedURL:    seedURL,
		scopeHost:  scopeHost,
		store:      store,
		queue:      NewFrontierQueue(log),
		fetcher:    fetcher,
		extractor:  extractor,
		newSession: newSession,
		output:     output,
		netSem:     semaphore.NewWeighted(int64(appCfg.MaxRequests)),
		results:    make(map[string]string),
	}, nil
}

// Run executes the crawl until the frontier drains, a page budget is hit, or
// the context is cancelled. It always returns whatever results were collected
// so far; the error reports setup failures only.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	c.log.Info("Starting crawl")

	// The seed is admitted unconditionally: it is marked visited before the
	// loop so a self-link can never re-enqueue it.
	if _, err := c.store.MarkVisited(parse.Canonicalize(c.seedURL)); err != nil {
		return nil, fmt.Errorf("seeding visited store: %w", err)
	}

	c.wg.Add(1)
	if !c.queue.Add(&models.WorkItem{URL: c.seedURL, Depth: 0}) {
		c.wg.Done()
	}

	numWorkers := c.appCfg.NumWorkers
	var workerWG sync.WaitGroup
	for i := range numWorkers {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			c.worker(ctx, workerID)
		}(i)
	}

	// Waiter: when every enqueued item has been accounted for, close the
	// queue so blocked workers exit their Pop loops.
	go func() {
		c.wg.Wait()
		c.queue.Close()
	}()

	// On cancellation the queue is closed early; workers drain what they
	// already popped and stop.
	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.queue.Close()
		case <-stopWatch:
		}
	}()

	workerWG.Wait()
	close(stopWatch)

	c.mu.Lock()
	res := &Result{
		SeedURL: c.seedURL,
		Order:   append([]string(nil), c.order...),
		Texts:   make(map[string]string, len(c.results)),
	}
	for u, t := range c.results {
		res.Texts[u] = t
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"pages_processed": c.processedCount.Load(),
		"pages_failed":    c.failedCount.Load(),
		"duration":        time.Since(startTime).Round(time.Millisecond),
	}).Info("Crawl finished")

	return res, ctx.Err()
}

func (c *Crawler) worker(ctx context.Context, workerID int) {
	workerLog := c.log.WithField("worker_id", workerID)

	var session render.Renderer
	if c.newSession != nil {
		var err error
		session, err = c.newSession()
		if err != nil {
			workerLog.WithError(err).Error("Failed to open render session, worker exiting")
			// Items this worker would have handled are picked up by peers;
			// with a single worker the drain loop below keeps wg balanced.
			for {
				if _, ok := c.queue.Pop(); !ok {
					return
				}
				c.wg.Done()
			}
		}
		defer session.Close()
	}

	for {
		item, ok := c.queue.Pop()
		if !ok {
			workerLog.Debug("Queue closed, worker exiting")
			return
		}
		if m := metrics.FrontierLength; m != nil {
			m.WithLabelValues(c.siteKey).Set(float64(c.queue.Len()))
		}

		c.processItem(ctx, item, session, workerLog)
		c.wg.Done()
	}
}

// processItem handles one dequeued resource end to end: bound checks,
// extraction dispatch, result recording, persistence, and link admission.
func (c *Crawler) processItem(ctx context.Context, item *models.WorkItem, session render.Renderer, workerLog *logrus.Entry) {
	taskLog := workerLog.WithFields(logrus.Fields{
		"url":   item.URL,
		"depth": item.Depth,
	})

	if ctx.Err() != nil {
		taskLog.Debug("Context cancelled, dropping item")
		return
	}
	if c.depthExceeded(item.Depth) {
		taskLog.Debug("Depth bound exceeded, dropping item")
		return
	}
	if c.resultsFull() {
		taskLog.Debug("Page budget reached, dropping item")
		return
	}

	kind, known := parse.ClassifyURL(item.URL)
	if !known {
		kind = parse.KindHTML
	}
	leaf := known && parse.IsLeafKind(kind)

	var (
		text    string
		links   []string
		procErr error
	)
	if kind == parse.KindPDF {
		text, procErr = c.processPDF(ctx, item.URL, taskLog)
	} else {
		text, links, procErr = c.processPage(ctx, item.URL, kind, session, taskLog)
	}
	failed := procErr != nil

	recorded := c.recordResult(item.URL, text)
	if !recorded {
		taskLog.Debug("Page budget filled while in flight, result discarded")
		return
	}

	c.processedCount.Add(1)
	if failed {
		c.failedCount.Add(1)
	}
	if m := metrics.ResourcesProcessed; m != nil {
		outcome := "text"
		switch {
		case failed:
			outcome = "error"
		case text == extract.DiagnosticNoVisibleText || text == extract.DiagnosticPDFNoText:
			outcome = "diagnostic"
		}
		m.WithLabelValues(c.siteKey, outcome).Inc()
	}
	if failed {
		if m := metrics.ResourcesFailed; m != nil {
			m.WithLabelValues(c.siteKey, utils.CategorizeError(procErr)).Inc()
		}
	}

	localPath := ""
	if c.output != nil {
		path, err := c.output.PersistResource(item.URL, kind, text, taskLog)
		if err != nil {
			// Persistence failures degrade the on-disk corpus but never the
			// in-memory result, so the crawl continues.
			taskLog.WithError(err).Warn("Failed to persist resource")
		} else {
			localPath = path
		}
		c.output.RecordResource(models.ResourceMetadata{
			URL:           item.URL,
			CanonicalURL:  parse.Canonicalize(item.URL),
			LocalFilePath: localPath,
			Kind:          string(kind),
			Depth:         item.Depth,
			ProcessedAt:   time.Now().UTC(),
			Failed:        failed,
		})
	}

	if leaf || failed {
		return
	}
	c.admitLinks(item.Depth, links, taskLog)
}

// processPDF fetches the document bytes and runs text extraction. A fetch
// error yields the standard load-failure text; an unrecoverable extraction
// yields the image-based-PDF diagnostic. PDFs are leaves either way.
func (c *Crawler) processPDF(ctx context.Context, rawURL string, taskLog *logrus.Entry) (string, error) {
	if err := c.netSem.Acquire(ctx, 1); err != nil {
		return loadFailureText(rawURL, err), err
	}
	data, err := c.fetcher.FetchBytes(ctx, rawURL)
	c.netSem.Release(1)
	if err != nil {
		taskLog.WithError(err).WithField("category", utils.CategorizeError(err)).Warn("PDF fetch failed")
		return loadFailureText(rawURL, err), err
	}

	text, recovered := c.extractor.ExtractText(data, parse.KindPDF)
	if !recovered {
		taskLog.Warn("No extractable text in PDF")
		return extract.DiagnosticPDFNoText, nil
	}
	return text, nil
}

// processPage renders the resource in a browser session, extracts its visible
// text and harvests candidate links. Render or parse failures produce the
// load-failure text and no links.
func (c *Crawler) processPage(ctx context.Context, rawURL string, kind parse.Kind, session render.Renderer, taskLog *logrus.Entry) (string, []string, error) {
	if session == nil {
		err := fmt.Errorf("no render session available")
		return loadFailureText(rawURL, err), nil, err
	}

	if err := c.netSem.Acquire(ctx, 1); err != nil {
		return loadFailureText(rawURL, err), nil, err
	}
	renderStart := time.Now()
	markup, err := session.Render(ctx, rawURL)
	c.netSem.Release(1)
	if m := metrics.RenderDuration; m != nil {
		m.WithLabelValues(c.siteKey).Observe(time.Since(renderStart).Seconds())
	}
	if err != nil {
		taskLog.WithError(err).WithField("category", utils.CategorizeError(err)).Warn("Page render failed")
		return loadFailureText(rawURL, err), nil, err
	}

	doc, err := extract.ParseMarkup(markup)
	if err != nil {
		taskLog.WithError(err).Warn("Markup parse failed")
		return loadFailureText(rawURL, err), nil, err
	}

	if c.output != nil {
		c.output.WriteMarkdownSidecar(rawURL, kind, markup, taskLog)
	}

	text := extract.VisibleText(doc)
	if text == "" {
		text = extract.DiagnosticNoVisibleText
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		// Classifier and renderer both accepted the URL, so this is rare;
		// the page text still counts, only expansion is lost.
		taskLog.WithError(err).Warn("Cannot resolve links against unparseable base URL")
		return text, nil, nil
	}
	return text, extract.HarvestLinks(doc, base), nil
}

// admitLinks runs the admission pipeline over harvested links in document
// order: scope check against the exact seed host, atomic visited check, and
// page-budget check. Admitted links join the frontier at depth+1.
func (c *Crawler) admitLinks(depth int, links []string, taskLog *logrus.Entry) {
	nextDepth := depth + 1
	if c.depthExceeded(nextDepth) {
		taskLog.Debug("Children would exceed depth bound, skipping expansion")
		return
	}

	admitted := 0
	for _, link := range links {
		host := parse.HostOf(link)
		if host != c.scopeHost {
			continue
		}
		if c.resultsFull() {
			break
		}

		added, err := c.store.MarkVisited(parse.Canonicalize(link))
		if err != nil {
			taskLog.WithError(err).WithField("link", link).Error("Visited store failure, link skipped")
			continue
		}
		if !added {
			continue
		}

		c.wg.Add(1)
		if !c.queue.Add(&models.WorkItem{URL: link, Depth: nextDepth}) {
			c.wg.Done()
			break
		}
		admitted++
	}
	if admitted > 0 {
		taskLog.WithField("admitted", admitted).Debug("Links admitted to frontier")
	}
}

// recordResult stores the text under the raw dequeued URL, preserving dequeue
// order. It refuses once the page budget is full so late in-flight items
// cannot overshoot maxPages.
func (c *Crawler) recordResult(rawURL, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.siteCfg.MaxPages > 0 && len(c.order) >= c.siteCfg.MaxPages {
		return false
	}
	if _, exists := c.results[rawURL]; !exists {
		c.order = append(c.order, rawURL)
	}
	c.results[rawURL] = text
	return true
}

func (c *Crawler) resultsFull() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.siteCfg.MaxPages > 0 && len(c.order) >= c.siteCfg.MaxPages
}

// depthExceeded reports whether depth lies beyond the configured bound.
// MaxDepth 0 means unbounded.
func (c *Crawler) depthExceeded(depth int) bool {
	return c.siteCfg.MaxDepth > 0 && depth > c.siteCfg.MaxDepth
}

func loadFailureText(rawURL string, err error) string {
	return fmt.Sprintf("Error loading %s: %v", rawURL, err)
}
