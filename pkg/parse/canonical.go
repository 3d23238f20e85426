package parse

import (
	"net/url"
	"strings"
)

// Canonicalize maps a URL string to the identity used for dedup and scope
// checks. It strips the fragment, normalizes an empty path to "/", removes all
// trailing slashes from any non-root path, and lowercases the whole result.
// Two URLs differing only by fragment, trailing slashes, or letter case
// collapse to the same canonical value, and the function is a fixed point of
// itself: applying it to its own output changes nothing. The result is for
// equality comparison only, never for dereferencing.
//
// Never fails: malformed input is handled best-effort at the string level.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return canonicalizeRaw(rawURL)
	}

	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	} else if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = stripTrailingSlashes(u.Path)
		if u.RawPath != "" {
			u.RawPath = stripTrailingSlashes(u.RawPath)
		}
	}

	return strings.ToLower(u.String())
}

// canonicalizeRaw applies the same transforms without a parsed URL.
func canonicalizeRaw(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx >= 0 {
		rawURL = rawURL[:idx]
	}
	return strings.ToLower(stripTrailingSlashes(rawURL))
}

// stripTrailingSlashes removes every trailing slash while keeping at least one
// leading character, so "/x//" becomes "/x" and "/" stays "/".
func stripTrailingSlashes(s string) string {
	for len(s) > 1 && strings.HasSuffix(s, "/") {
		s = s[:len(s)-1]
	}
	return s
}

// HostOf returns the lowercased hostname of a URL, or "" if it cannot be
// parsed. Used for exact scope-host comparison (subdomains do not match).
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
