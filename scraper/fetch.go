package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"rea_scraper/logging"
)

// Page is a fetched document. A failed fetch yields a Page with no body, so
// parsing it fails the same way a malformed page does.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (p *Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// Document parses the body. It never fails: broken markup yields an empty document.
func (p *Page) Document() *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		empty, _ := goquery.NewDocumentFromReader(bytes.NewReader(nil))
		return empty
	}
	return doc
}

// Fetcher issues GET requests. Implementations never return transport errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, params url.Values, headers http.Header) *Page
}

type HTTPFetcher struct {
	client *http.Client
	log    *logging.Logger
}

func NewHTTPFetcher(client *http.Client, log *logging.Logger) *HTTPFetcher {
	if log == nil {
		log = logging.Default("fetch")
	}
	return &HTTPFetcher{client: client, log: log}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, params url.Values, headers http.Header) *Page {
	target := withQuery(rawURL, params)
	page := &Page{URL: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		f.log.Errorf("Requesting %s failed: %v", target, err)
		return page
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Errorf("Requesting %s failed: %v", target, err)
		return page
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode
	page.URL = resp.Request.URL.String()
	if !page.OK() {
		f.log.Warnf("Response code %d when requesting %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Errorf("Reading %s failed: %v", target, err)
		return page
	}
	page.Body = body
	return page
}

func withQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}
