package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// staticBrowser fetches pages over plain HTTP and queries them with goquery.
// No JavaScript runs, so a selector that is absent after the fetch never appears.
type staticBrowser struct {
	client    *http.Client
	userAgent string
	main      *staticPage
}

func openStatic(opts Options) *staticBrowser {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.LoadTimeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	b := &staticBrowser{client: client, userAgent: ua}
	b.main = &staticPage{b: b}
	return b
}

func (b *staticBrowser) Page() Page {
	return b.main
}

func (b *staticBrowser) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

type staticPage struct {
	b   *staticBrowser
	doc *goquery.Document
	url *url.URL
}

func (p *staticPage) Load(ctx context.Context, rawURL string) error {
	target, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	target.RawQuery = encodeQuery(target.RawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", p.b.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := p.b.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("get %s: status %d", rawURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", rawURL, err)
	}

	p.doc = doc
	p.url = res.Request.URL
	return nil
}

// encodeQuery percent-encodes each key and value of a raw query the way a
// browser does before sending it, keeping parameter order.
// "l=Toronto, ON" becomes "l=Toronto%2C+ON"; "q=data+coop" is unchanged.
func encodeQuery(raw string) string {
	if raw == "" {
		return raw
	}

	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, value, hasValue := strings.Cut(part, "=")
		part = escapeQueryPart(key)
		if hasValue {
			part += "=" + escapeQueryPart(value)
		}
		parts[i] = part
	}
	return strings.Join(parts, "&")
}

func escapeQueryPart(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		unescaped = s
	}
	return url.QueryEscape(unescaped)
}

func (p *staticPage) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.doc == nil || p.doc.Find(selector).Length() == 0 {
		return ErrTimeout
	}
	return nil
}

func (p *staticPage) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.doc == nil {
		return nil, nil
	}

	var els []Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		els = append(els, &staticElement{page: p, sel: s})
	})
	return els, nil
}

func (p *staticPage) FindOne(ctx context.Context, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.doc == nil {
		return nil, ErrNotFound
	}

	s := p.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil, ErrNotFound
	}
	return &staticElement{page: p, sel: s}, nil
}

func (p *staticPage) OpenTab(ctx context.Context, rawURL string) (Page, error) {
	tab := &staticPage{b: p.b}
	if err := tab.Load(ctx, rawURL); err != nil {
		return nil, err
	}
	return tab, nil
}

func (p *staticPage) Close() error {
	return nil
}

type staticElement struct {
	page *staticPage
	sel  *goquery.Selection
}

func (e *staticElement) Find(_ context.Context, selector string) (Element, error) {
	s := e.sel.Find(selector).First()
	if s.Length() == 0 {
		return nil, ErrNotFound
	}
	return &staticElement{page: e.page, sel: s}, nil
}

func (e *staticElement) Text(_ context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *staticElement) Attr(_ context.Context, name string) (string, error) {
	v, ok := e.sel.Attr(name)
	if !ok {
		return "", ErrNotFound
	}
	if (name != "href" && name != "src") || e.page.url == nil {
		return v, nil
	}

	ref, err := url.Parse(v)
	if err != nil {
		return v, nil
	}
	return e.page.url.ResolveReference(ref).String(), nil
}
