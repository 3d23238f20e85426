package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"webharvest/pkg/utils"
)

// DocumentFetcher retrieves the raw bytes of a binary resource. Rendered pages
// never pass through here; they go to the browser session instead.
type DocumentFetcher interface {
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Fetcher is the HTTP-backed DocumentFetcher. A failed fetch is recorded by the
// caller and never re-attempted within the same crawl run; there is no retry
// loop here on purpose.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	log          *logrus.Logger
}

// NewFetcher creates a Fetcher on top of a configured http.Client.
func NewFetcher(client *http.Client, userAgent string, maxBodyBytes int64, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:       client,
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
		log:          log,
	}
}

// FetchBytes performs a single GET and returns the full body.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	reqLog := f.log.WithField("url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for '%s': %w", utils.ErrFetchFailed, rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d fetching '%s'", utils.ErrHTTPStatus, resp.StatusCode, rawURL)
	}

	limited := io.LimitReader(resp.Body, f.maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body from '%s': %w", utils.ErrFetchFailed, rawURL, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: body of '%s' exceeds %d bytes", utils.ErrFetchFailed, rawURL, f.maxBodyBytes)
	}

	reqLog.Debugf("Fetched %d bytes", len(body))
	return body, nil
}
