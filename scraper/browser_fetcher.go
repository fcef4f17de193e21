package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"

	"github.com/playwright-community/playwright-go"

	"rea_scraper/logging"
)

// BrowserFetcher loads pages in headless Chromium for portals that block
// plain HTTP clients. The browser starts lazily on the first fetch.
type BrowserFetcher struct {
	userDataDir string
	log         *logging.Logger

	mu          sync.Mutex
	pw          *playwright.Playwright
	context     playwright.BrowserContext
	initialized bool
}

func NewBrowserFetcher(userDataDir string, log *logging.Logger) *BrowserFetcher {
	if log == nil {
		log = logging.Default("browser")
	}
	return &BrowserFetcher{userDataDir: userDataDir, log: log}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string, params url.Values, headers http.Header) *Page {
	target := withQuery(rawURL, params)
	result := &Page{URL: target}

	if err := ctx.Err(); err != nil {
		f.log.Errorf("Requesting %s failed: %v", target, err)
		return result
	}
	if err := f.ensureBrowser(); err != nil {
		f.log.Errorf("Requesting %s failed: %v", target, err)
		return result
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	page, err := f.context.NewPage()
	if err != nil {
		f.log.Errorf("Failed to create page for %s: %v", target, err)
		return result
	}
	defer page.Close()

	if extra := flattenHeaders(headers); len(extra) > 0 {
		if err := page.SetExtraHTTPHeaders(extra); err != nil {
			f.log.Warnf("Setting headers failed: %v", err)
		}
	}

	resp, err := page.Goto(target, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		f.log.Errorf("Requesting %s failed: %v", target, err)
		return result
	}
	if resp != nil {
		result.StatusCode = resp.Status()
		if !result.OK() {
			f.log.Warnf("Response code %d when requesting %s", result.StatusCode, target)
		}
	}

	f.humanDelay(page, 800, 1600)
	f.handleConsent(page)

	content, err := page.Content()
	if err != nil {
		f.log.Errorf("Reading %s failed: %v", target, err)
		return result
	}
	result.URL = page.URL()
	result.Body = []byte(content)
	return result
}

func (f *BrowserFetcher) ensureBrowser() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	var err error
	f.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	f.context, err = f.pw.Chromium.LaunchPersistentContext(f.userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(true),
		Locale:   playwright.String("pl-PL"),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		f.pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	f.initialized = true
	return nil
}

func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return nil
	}
	if f.context != nil {
		f.context.Close()
	}
	f.initialized = false
	return f.pw.Stop()
}

func (f *BrowserFetcher) humanDelay(page playwright.Page, minMs, maxMs int) {
	page.WaitForTimeout(float64(minMs + rand.Intn(maxMs-minMs)))
}

// handleConsent dismisses the cookie banner both portals show on first visit.
func (f *BrowserFetcher) handleConsent(page playwright.Page) {
	for _, selector := range consentSelectors {
		btn := page.Locator(selector).First()
		if visible, _ := btn.IsVisible(); visible {
			f.log.Debugf("Clicking consent button: %s", selector)
			btn.Click()
			page.WaitForTimeout(1000)
			return
		}
	}
}

var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#didomi-notice-agree-button",
	"button:has-text('Akceptuję')",
	"button:has-text('Zgadzam się')",
	"button:has-text('Accept')",
	"button[id*='accept']",
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
