package config

import (
	"fmt"
	"net/url"
	"time"

	"webharvest/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// NumWorkers (1 preserves the deterministic breadth-first reference order)
	if c.NumWorkers <= 0 {
		warnings = append(warnings, "num_workers should be > 0, defaulting to 1")
		c.NumWorkers = 1
	}

	// MaxRequests
	if c.MaxRequests <= 0 {
		warnings = append(warnings, "max_requests should be > 0, defaulting to num_workers")
		c.MaxRequests = c.NumWorkers
	}

	// OutputBaseDir
	if c.OutputBaseDir == "" {
		warnings = append(warnings, "output_base_dir is empty, defaulting to './crawled_sites'")
		c.OutputBaseDir = "./crawled_sites"
	}

	// DefaultUserAgent
	if c.DefaultUserAgent == "" {
		c.DefaultUserAgent = "webharvest/1.0"
	}

	// SettleDelay: short deliberate pause after each render so client-side
	// content can finish populating the DOM.
	if c.SettleDelay < 0 {
		warnings = append(warnings, "settle_delay cannot be negative, defaulting to 1s")
		c.SettleDelay = time.Second
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = time.Second
	}

	// RenderTimeout
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = 45 * time.Second
	}

	// CollisionPolicy
	switch c.CollisionPolicy {
	case "", CollisionOverwrite, CollisionSuffix:
	default:
		return warnings, fmt.Errorf("%w: unknown collision_policy '%s' (want 'overwrite' or 'suffix')",
			utils.ErrConfigValidation, c.CollisionPolicy)
	}

	c.validateHTTPClientSettings()

	if len(c.Sites) == 0 {
		return warnings, fmt.Errorf("%w: no sites configured", utils.ErrConfigValidation)
	}

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 45 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
	if h.MaxBodyBytes <= 0 {
		h.MaxBodyBytes = 50 << 20 // 50 MiB
	}
}

// Validate checks SiteConfig fields. Invalid seed URLs and negative bounds are
// fatal here, before any traversal begins; per-resource failures later never
// abort the crawl.
func (c *SiteConfig) Validate() (warnings []string, err error) {
	if len(c.SeedURLs) == 0 {
		return nil, fmt.Errorf("%w: site has no seed_urls", utils.ErrConfigValidation)
	}

	for _, seed := range c.SeedURLs {
		parsed, parseErr := url.ParseRequestURI(seed)
		if parseErr != nil {
			return warnings, fmt.Errorf("%w: invalid seed URL '%s': %v", utils.ErrConfigValidation, seed, parseErr)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return warnings, fmt.Errorf("%w: seed URL '%s' must be http(s)", utils.ErrConfigValidation, seed)
		}
		if parsed.Hostname() == "" {
			return warnings, fmt.Errorf("%w: seed URL '%s' has no host", utils.ErrConfigValidation, seed)
		}
	}

	if c.MaxDepth < 0 {
		return warnings, fmt.Errorf("%w: max_depth cannot be negative (use 0 for unbounded)", utils.ErrConfigValidation)
	}
	if c.MaxPages < 0 {
		return warnings, fmt.Errorf("%w: max_pages cannot be negative (use 0 for unbounded)", utils.ErrConfigValidation)
	}

	switch c.CollisionPolicy {
	case "", CollisionOverwrite, CollisionSuffix:
	default:
		return warnings, fmt.Errorf("%w: unknown collision_policy '%s'", utils.ErrConfigValidation, c.CollisionPolicy)
	}

	if c.SettleDelay != nil && *c.SettleDelay < 0 {
		warnings = append(warnings, "site settle_delay cannot be negative, using global value")
		c.SettleDelay = nil
	}

	return warnings, nil
}
