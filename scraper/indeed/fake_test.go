package indeed

import (
	"context"
	"errors"
	"time"

	"indeed-scraper/browser"
)

// fakeCard is one scripted job card.
type fakeCard struct {
	title, company, location, href string

	noTitle, noCompany, noLocation, noLink bool
	stale                                  bool
}

// fakeSite scripts what each URL shows and records how it was driven.
type fakeSite struct {
	pages         map[string][]fakeCard // missing URL: markers never appear
	emptyAfterSee map[string]bool       // WaitFor succeeds but FindAll returns nothing
	descriptions  map[string]string     // missing href: description never appears
	loadErr       map[string]error

	loads       []string
	openTabs    int
	maxOpenTabs int
	tabsOpened  int
	tabsClosed  int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:         make(map[string][]fakeCard),
		emptyAfterSee: make(map[string]bool),
		descriptions:  make(map[string]string),
		loadErr:       make(map[string]error),
	}
}

type fakePage struct {
	site   *fakeSite
	url    string
	tab    bool
	closed bool
}

func (p *fakePage) Load(_ context.Context, url string) error {
	p.site.loads = append(p.site.loads, url)
	if err := p.site.loadErr[url]; err != nil {
		return err
	}
	p.url = url
	return nil
}

func (p *fakePage) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.tab {
		if _, ok := p.site.descriptions[p.url]; ok && selector == DescriptionSelector {
			return nil
		}
		return browser.ErrTimeout
	}
	if p.site.emptyAfterSee[p.url] {
		return nil
	}
	if len(p.site.pages[p.url]) == 0 {
		return browser.ErrTimeout
	}
	return nil
}

func (p *fakePage) FindAll(_ context.Context, _ string) ([]browser.Element, error) {
	if p.site.emptyAfterSee[p.url] {
		return nil, nil
	}
	var els []browser.Element
	for i := range p.site.pages[p.url] {
		els = append(els, &fakeElement{card: &p.site.pages[p.url][i]})
	}
	return els, nil
}

func (p *fakePage) FindOne(_ context.Context, _ string) (browser.Element, error) {
	text, ok := p.site.descriptions[p.url]
	if !p.tab || !ok {
		return nil, browser.ErrNotFound
	}
	return &fakeElement{text: text}, nil
}

func (p *fakePage) OpenTab(ctx context.Context, url string) (browser.Page, error) {
	p.site.tabsOpened++
	p.site.openTabs++
	if p.site.openTabs > p.site.maxOpenTabs {
		p.site.maxOpenTabs = p.site.openTabs
	}
	tab := &fakePage{site: p.site, tab: true}
	if err := tab.Load(ctx, url); err != nil {
		_ = tab.Close()
		return nil, err
	}
	return tab, nil
}

func (p *fakePage) Close() error {
	if p.tab && !p.closed {
		p.closed = true
		p.site.openTabs--
		p.site.tabsClosed++
	}
	return nil
}

type fakeElement struct {
	card *fakeCard
	text string
	href string
}

func (e *fakeElement) Find(_ context.Context, selector string) (browser.Element, error) {
	c := e.card
	if c == nil {
		return nil, browser.ErrNotFound
	}
	if c.stale {
		return nil, errors.Join(browser.ErrStale, errors.New("node detached"))
	}

	switch selector {
	case TitleSelector:
		if c.noTitle {
			return nil, browser.ErrNotFound
		}
		return &fakeElement{text: c.title}, nil
	case CompanySelector:
		if c.noCompany {
			return nil, browser.ErrNotFound
		}
		return &fakeElement{text: c.company}, nil
	case LocationSelector:
		if c.noLocation {
			return nil, browser.ErrNotFound
		}
		return &fakeElement{text: c.location}, nil
	case LinkSelector:
		if c.noLink {
			return nil, browser.ErrNotFound
		}
		return &fakeElement{href: c.href}, nil
	}
	return nil, browser.ErrNotFound
}

func (e *fakeElement) Text(_ context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) Attr(_ context.Context, name string) (string, error) {
	if name != "href" || e.href == "" {
		return "", browser.ErrNotFound
	}
	return e.href, nil
}
