package utils

import (
	"context"

	"github.com/chromedp/chromedp"
)

// ChromeFlags are the command-line switches every driver launches Chrome with.
// disable-blink-features=AutomationControlled drops the navigator.webdriver hint
// and start-maximized opens a full-size window.
var ChromeFlags = map[string]interface{}{
	"disable-blink-features":   "AutomationControlled",
	"start-maximized":          true,
	"no-first-run":             true,
	"no-default-browser-check": true,
}

// HideWebDriverJS patches the page-visible properties automation checks look at.
const HideWebDriverJS = `
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
`

// StealthOpts returns chromedp allocator options built from ChromeFlags.
func StealthOpts(headless bool) []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, len(ChromeFlags)+1)
	for name, value := range ChromeFlags {
		opts = append(opts, chromedp.Flag(name, value))
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	return opts
}

// HideWebDriver runs HideWebDriverJS in the current page.
func HideWebDriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(HideWebDriverJS, nil).Do(ctx)
	})
}
