package render

import "context"

// Renderer returns fully rendered page markup for a URL, after client-side
// script execution. A static HTTP fetch is not a valid implementation for
// script-driven pages.
//
// A Renderer is not safe for concurrent use; the crawler gives each worker its
// own session rather than sharing one.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (markup string, err error)
	Close()
}
