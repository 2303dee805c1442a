package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"indeed-scraper/utils"
)

type chromeBrowser struct {
	ctx           context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	loadTimeout   time.Duration
	main          *chromeTab
}

func openChrome(ctx context.Context, opts Options) (*chromeBrowser, error) {
	utils.Info("Launching Chrome browser...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, utils.StealthOpts(opts.Headless)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts Chrome; it must not see a deadline or the
	// process dies with it.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := &chromeBrowser{
		ctx:           browserCtx,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		loadTimeout:   opts.LoadTimeout,
	}
	b.main = &chromeTab{b: b, ctx: browserCtx}
	utils.Success("Browser ready")
	return b, nil
}

func (b *chromeBrowser) Page() Page {
	return b.main
}

func (b *chromeBrowser) Close() error {
	utils.Info("Closing browser...")
	b.browserCancel()
	b.allocCancel()
	return nil
}

type chromeTab struct {
	b      *chromeBrowser
	ctx    context.Context
	cancel context.CancelFunc // nil for the first tab
}

// run executes actions on the tab while honouring the caller's ctx.
func (t *chromeTab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (t *chromeTab) Load(ctx context.Context, url string) error {
	if t.b.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.b.loadTimeout)
		defer cancel()
	}

	if err := t.run(ctx, chromedp.Navigate(url), utils.HideWebDriver()); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (t *chromeTab) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := t.run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("wait for %s: %w", selector, err)
}

func (t *chromeTab) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := t.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}

	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{tab: t, node: n})
	}
	return els, nil
}

func (t *chromeTab) FindOne(ctx context.Context, selector string) (Element, error) {
	var nodes []*cdp.Node
	if err := t.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return &chromeElement{tab: t, node: nodes[0]}, nil
}

func (t *chromeTab) OpenTab(ctx context.Context, url string) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(t.b.ctx)
	// Creates the target. Same rule as the browser: no deadline on first Run.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	tab := &chromeTab{b: t.b, ctx: tabCtx, cancel: cancel}
	if err := tab.Load(ctx, url); err != nil {
		_ = tab.Close()
		return nil, err
	}
	return tab, nil
}

func (t *chromeTab) Close() error {
	if t.cancel == nil {
		return nil
	}
	err := chromedp.Cancel(t.ctx)
	t.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close tab: %w", err)
	}
	return nil
}

type chromeElement struct {
	tab  *chromeTab
	node *cdp.Node
}

func (e *chromeElement) Find(ctx context.Context, selector string) (Element, error) {
	var nodes []*cdp.Node
	err := e.tab.run(ctx, chromedp.Nodes(selector, &nodes,
		chromedp.ByQuery, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, chromeErr(err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return &chromeElement{tab: e.tab, node: nodes[0]}, nil
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.tab.run(ctx, chromedp.Text([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID))
	if err != nil {
		return "", chromeErr(err)
	}
	return text, nil
}

func (e *chromeElement) Attr(ctx context.Context, name string) (string, error) {
	raw, ok := e.node.Attribute(name)
	if !ok {
		return "", ErrNotFound
	}
	if name != "href" && name != "src" {
		return raw, nil
	}

	// The DOM property carries the resolved absolute URL.
	var resolved string
	err := e.tab.run(ctx, chromedp.JavascriptAttribute([]cdp.NodeID{e.node.NodeID}, name, &resolved, chromedp.ByNodeID))
	if err != nil {
		return "", chromeErr(err)
	}
	return resolved, nil
}

// chromeErr maps protocol errors on a node to ErrStale.
func chromeErr(err error) error {
	var cerr *cdproto.Error
	if errors.As(err, &cerr) {
		return fmt.Errorf("%w: %s", ErrStale, cerr.Message)
	}
	return err
}
