// Package browser is the small set of page operations the scraper needs,
// with interchangeable drivers behind it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrTimeout is returned by WaitFor when the selector never matched.
	ErrTimeout = errors.New("timed out waiting for element")
	// ErrNotFound means a lookup matched nothing, or an attribute is absent.
	ErrNotFound = errors.New("element not found")
	// ErrStale means an element handle no longer points into the document.
	ErrStale = errors.New("stale element reference")
)

const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
	DriverHTTP     = "http"
)

// Page is one browser tab.
type Page interface {
	// Load navigates the tab and blocks until the document has loaded.
	Load(ctx context.Context, url string) error
	// WaitFor blocks until selector matches at least one node, or returns
	// ErrTimeout after timeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// FindAll returns every match in document order. No match is not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// FindOne returns the first match or ErrNotFound.
	FindOne(ctx context.Context, selector string) (Element, error)
	// OpenTab opens url in a new tab. The caller owns the returned Page and
	// must Close it; the receiver is left untouched.
	OpenTab(ctx context.Context, url string) (Page, error)
	// Close closes the tab. Closing the browser's first tab is a no-op.
	Close() error
}

// Element is a node inside a Page.
type Element interface {
	// Find returns the first descendant matching selector or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	// Text returns the rendered text of the element.
	Text(ctx context.Context) (string, error)
	// Attr returns an attribute. href and src come back as absolute URLs.
	Attr(ctx context.Context, name string) (string, error)
}

// Browser owns a running session and its first tab.
type Browser interface {
	Page() Page
	Close() error
}

type Options struct {
	Driver   string
	Headless bool
	// LoadTimeout bounds a single navigation. Zero means no bound.
	LoadTimeout time.Duration
	// HTTPClient and UserAgent are used by the http driver only.
	HTTPClient *http.Client
	UserAgent  string
}

// Open starts a browser session with the driver named in opts.
func Open(ctx context.Context, opts Options) (Browser, error) {
	switch opts.Driver {
	case "", DriverChromedp:
		b, err := openChrome(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case DriverRod:
		b, err := openRod(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case DriverHTTP:
		return openStatic(opts), nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", opts.Driver)
	}
}
