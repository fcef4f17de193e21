package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"rea_scraper/config"
	"rea_scraper/logging"
	"rea_scraper/models"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func quietLogger() *logging.Logger {
	return logging.New(io.Discard, "test", models.LogLevelDebug)
}

func fixedClock() time.Time {
	return time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
}

// otodomSearchPage renders a search page carrying the given offer slugs.
func otodomSearchPage(slugs ...string) []byte {
	items := make([]map[string]string, 0, len(slugs))
	for _, s := range slugs {
		items = append(items, map[string]string{"slug": s})
	}
	payload := map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{
				"data": map[string]any{
					"searchAds": map[string]any{"items": items},
				},
			},
		},
	}
	data, _ := json.Marshal(payload)
	return []byte(`<html><body><script id="__NEXT_DATA__" type="application/json">` + string(data) + `</script></body></html>`)
}

type fakeFetcher struct {
	mu       sync.Mutex
	requests []string
	respond  func(rawURL string, params url.Values) []byte
}

func staticFetcher(pages map[string][]byte) *fakeFetcher {
	return &fakeFetcher{respond: func(rawURL string, _ url.Values) []byte {
		return pages[rawURL]
	}}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, params url.Values, _ http.Header) *Page {
	f.mu.Lock()
	f.requests = append(f.requests, withQuery(rawURL, params))
	f.mu.Unlock()

	body := f.respond(rawURL, params)
	if body == nil {
		return &Page{URL: rawURL, StatusCode: http.StatusNotFound}
	}
	return &Page{URL: rawURL, StatusCode: http.StatusOK, Body: body}
}

func (f *fakeFetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

type memCache struct {
	mu      sync.Mutex
	batches map[string][]string
	putErr  error
}

func newMemCache() *memCache {
	return &memCache{batches: map[string][]string{}}
}

func (c *memCache) Put(_ context.Context, key string, urls []string) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches[key] = append([]string(nil), urls...)
	return nil
}

func (c *memCache) Keys(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.batches))
	for k := range c.batches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *memCache) Get(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls, ok := c.batches[key]
	if !ok {
		return nil, errors.New("no such batch")
	}
	return append([]string(nil), urls...), nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.batches, key)
	return nil
}

func (c *memCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.batches[key]
	return ok
}

type fakeStore struct {
	mu          sync.Mutex
	stored      []string
	storedErr   error
	storedCalls int

	relationalErr error
	documentErr   error
	analyticalErr error

	relational []models.Offer
	document   []models.Offer
	exported   []models.Offer
	exportRun  string
}

func (s *fakeStore) StoredURLs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storedCalls++
	if s.storedErr != nil {
		return nil, s.storedErr
	}
	return append([]string(nil), s.stored...), nil
}

func (s *fakeStore) StoreRelational(_ context.Context, offers []models.Offer) (int, error) {
	if s.relationalErr != nil {
		return 0, s.relationalErr
	}
	s.relational = append(s.relational, offers...)
	return len(offers), nil
}

func (s *fakeStore) StoreDocument(_ context.Context, offers []models.Offer) (int, error) {
	if s.documentErr != nil {
		return 0, s.documentErr
	}
	s.document = append(s.document, offers...)
	return len(offers), nil
}

func (s *fakeStore) StoreAnalytical(_ context.Context, runName string, offers []models.Offer) error {
	if s.analyticalErr != nil {
		return s.analyticalErr
	}
	s.exportRun = runName
	s.exported = append(s.exported, offers...)
	return nil
}

// stubScraper returns canned search results and fails the offers listed in fail.
type stubScraper struct {
	name     string
	urls     []string
	counts   []int
	fail     map[string]error
	onScrape func(rawURL string)

	gotParams models.SearchParams
	gotPages  int
}

func (s *stubScraper) Name() string              { return s.name }
func (s *stubScraper) Portal() models.Portal     { return models.PortalOtodom }
func (s *stubScraper) Category() models.Category { return models.CategoryLands }

func (s *stubScraper) ListOfferURLs(_ context.Context, params models.SearchParams, pages int, _ time.Duration) ([]string, []int) {
	s.gotParams = params
	s.gotPages = pages
	return s.urls, s.counts
}

func (s *stubScraper) ScrapeOffer(_ context.Context, rawURL string) (models.Offer, error) {
	if s.onScrape != nil {
		s.onScrape(rawURL)
	}
	if err, ok := s.fail[rawURL]; ok {
		return nil, err
	}
	return &models.OtodomLandOffer{OtodomOffer: models.OtodomOffer{URL: models.Ptr(rawURL)}}, nil
}

type stubFilters struct {
	filters *config.Filters
	err     error
}

func (f stubFilters) Load(string, string) (*config.Filters, error) {
	return f.filters, f.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	reports []models.Report
}

func (n *recordingNotifier) Send(_ context.Context, report models.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report)
	return nil
}

type recordingRuns struct {
	mu   sync.Mutex
	runs []*models.RunRecord
	logs []*models.RunLog
}

func (r *recordingRuns) SaveRun(_ context.Context, rec *models.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, rec)
	return nil
}

func (r *recordingRuns) SaveLog(_ context.Context, entry *models.RunLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entry)
	return nil
}
