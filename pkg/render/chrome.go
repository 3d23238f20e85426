package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"webharvest/pkg/utils"
)

// Browser owns one headless Chrome process shared by all sessions of a crawl.
// Process startup is expensive, so the browser lives for the whole run and
// sessions (tabs) are handed out per worker.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	log      *logrus.Logger
}

// NewBrowser configures the headless Chrome allocator. Chrome itself starts
// lazily on the first session.
func NewBrowser(userAgent string, log *logrus.Logger) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	log.Info("Headless browser allocator initialized.")
	return &Browser{allocCtx: allocCtx, cancel: cancel, log: log}
}

// Close tears down the browser process and all sessions derived from it.
func (b *Browser) Close() {
	b.cancel()
}

// NewSession opens one browser tab reused across many Render calls.
// Sessions are single-caller; a worker pool needs one session per worker.
func (b *Browser) NewSession(settleDelay, timeout time.Duration) *Session {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	return &Session{
		tabCtx:      tabCtx,
		cancel:      cancel,
		settleDelay: settleDelay,
		timeout:     timeout,
		log:         b.log,
	}
}

// Session is a long-lived browser tab implementing Renderer.
type Session struct {
	tabCtx      context.Context
	cancel      context.CancelFunc
	settleDelay time.Duration
	timeout     time.Duration
	log         *logrus.Logger
}

// Render navigates the tab to the URL, waits the settle delay so client-side
// content can populate the DOM, and returns the serialized document markup.
func (s *Session) Render(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrRenderFailed, err)
	}

	runCtx := s.tabCtx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(s.tabCtx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var markup string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.Sleep(s.settleDelay),
		chromedp.OuterHTML("html", &markup),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrRenderFailed, err)
	}

	s.log.WithFields(logrus.Fields{"url": rawURL, "duration": time.Since(start).String()}).
		Debug("Page rendered")
	return markup, nil
}

// Close releases the tab. The browser process itself stays up until the
// owning Browser is closed.
func (s *Session) Close() {
	s.cancel()
}
