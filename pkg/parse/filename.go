package parse

import (
	"net/url"
	"strings"

	"webharvest/pkg/utils"
)

// maxFilenameLength bounds encoded names to what common filesystems accept.
const maxFilenameLength = 255

// querySeparator joins the encoded path and the encoded query string.
const querySeparator = "--q--"

// EncodeFilename maps a URL and content kind to a deterministic,
// filesystem-safe name. The scheme becomes an `https-`/`http-` prefix, host
// separators are replaced with marker characters that cannot appear in
// hostnames on disk (`:`->`_`, `.`->`!`), path slashes become `--`, and a
// non-empty query is appended after `--q--` with `=`->`~` and `&`->`-`.
// A path+query encoding longer than 255 characters is replaced by its SHA-256
// hex digest; the final name is truncated to 255 characters. Injective in the
// common case, collision-tolerant for pathological URLs — an accepted
// tradeoff, with last-write-wins semantics on a true collision.
func EncodeFilename(rawURL string, kind Kind) string {
	if kind == "" {
		kind = KindHTML
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable input still gets a stable name.
		return "http-" + utils.CalculateStringSHA256(rawURL) + "." + string(kind)
	}

	scheme := "http-"
	if u.Scheme == "https" {
		scheme = "https-"
	}

	netloc := strings.NewReplacer(":", "_", ".", "!").Replace(u.Host)
	path := strings.ReplaceAll(u.Path, "/", "--")
	query := strings.NewReplacer("=", "~", "&", "-").Replace(u.RawQuery)

	pathQuery := path
	if query != "" {
		pathQuery = path + querySeparator + query
	}
	if len(pathQuery) > maxFilenameLength {
		pathQuery = utils.CalculateStringSHA256(pathQuery)
	}

	filename := scheme + netloc + "-" + pathQuery + "." + string(kind)
	if len(filename) > maxFilenameLength {
		filename = filename[:maxFilenameLength]
	}
	return filename
}
