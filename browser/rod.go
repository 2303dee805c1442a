package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"indeed-scraper/utils"
)

type rodBrowser struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	loadTimeout time.Duration
	main        *rodTab
}

func openRod(ctx context.Context, opts Options) (*rodBrowser, error) {
	utils.Info("Launching Chrome via rod...")
	l := newRodLauncher(ctx, opts.Headless)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open first tab: %w", err)
	}

	b := &rodBrowser{launcher: l, browser: browser, loadTimeout: opts.LoadTimeout}
	b.main = &rodTab{b: b, page: page, first: true}
	utils.Success("Browser ready")
	return b, nil
}

// newRodLauncher applies the shared Chrome flags. rod adds --enable-automation
// by default, which shows the automation infobar and sets navigator.webdriver.
func newRodLauncher(ctx context.Context, headless bool) *launcher.Launcher {
	l := launcher.New().Context(ctx).Headless(headless).Delete(flags.Flag("enable-automation"))
	for name, value := range utils.ChromeFlags {
		switch v := value.(type) {
		case bool:
			if v {
				l = l.Set(flags.Flag(name))
			}
		case string:
			l = l.Set(flags.Flag(name), v)
		}
	}
	return l
}

func (b *rodBrowser) Page() Page {
	return b.main
}

func (b *rodBrowser) Close() error {
	utils.Info("Closing browser...")
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

type rodTab struct {
	b     *rodBrowser
	page  *rod.Page
	first bool
}

func (t *rodTab) Load(ctx context.Context, url string) error {
	p := t.page.Context(ctx)
	if t.b.loadTimeout > 0 {
		p = p.Timeout(t.b.loadTimeout)
	}

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	if _, err := p.Eval(`() => {` + utils.HideWebDriverJS + `}`); err != nil {
		return fmt.Errorf("patch webdriver flags: %w", err)
	}
	return nil
}

func (t *rodTab) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p := t.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	_, err := p.Element(selector)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("wait for %s: %w", selector, err)
}

func (t *rodTab) FindAll(ctx context.Context, selector string) ([]Element, error) {
	found, err := t.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}

	els := make([]Element, 0, len(found))
	for _, el := range found {
		els = append(els, &rodElement{el: el})
	}
	return els, nil
}

func (t *rodTab) FindOne(ctx context.Context, selector string) (Element, error) {
	has, el, err := t.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	if !has {
		return nil, ErrNotFound
	}
	return &rodElement{el: el}, nil
}

func (t *rodTab) OpenTab(ctx context.Context, url string) (Page, error) {
	page, err := t.b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	tab := &rodTab{b: t.b, page: page}
	if err := tab.Load(ctx, url); err != nil {
		_ = tab.Close()
		return nil, err
	}
	return tab, nil
}

func (t *rodTab) Close() error {
	if t.first {
		return nil
	}
	if err := t.page.Close(); err != nil {
		return fmt.Errorf("close tab: %w", err)
	}
	return nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Find(ctx context.Context, selector string) (Element, error) {
	has, el, err := e.el.Context(ctx).Has(selector)
	if err != nil {
		return nil, rodErr(err)
	}
	if !has {
		return nil, ErrNotFound
	}
	return &rodElement{el: el}, nil
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", rodErr(err)
	}
	return text, nil
}

func (e *rodElement) Attr(ctx context.Context, name string) (string, error) {
	el := e.el.Context(ctx)
	raw, err := el.Attribute(name)
	if err != nil {
		return "", rodErr(err)
	}
	if raw == nil {
		return "", ErrNotFound
	}
	if name != "href" && name != "src" {
		return *raw, nil
	}

	prop, err := el.Property(name)
	if err != nil {
		return "", rodErr(err)
	}
	return prop.Str(), nil
}

func rodErr(err error) error {
	var cerr *cdp.Error
	if errors.As(err, &cerr) {
		return fmt.Errorf("%w: %s", ErrStale, cerr.Message)
	}
	return err
}
