package scraper

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rea_scraper/identity"
	"rea_scraper/logging"
	"rea_scraper/models"
)

// Scraper discovers offer URLs for one portal and category and parses offers.
type Scraper interface {
	Name() string
	Portal() models.Portal
	Category() models.Category
	ListOfferURLs(ctx context.Context, params models.SearchParams, pages int, avgDelay time.Duration) ([]string, []int)
	ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error)
}

// HeaderSource hands out request headers, e.g. *httputil.HeaderPool.
type HeaderSource interface {
	Random() http.Header
}

// portalFamily holds everything that is shared by the categories of one portal.
type portalFamily struct {
	portal      models.Portal
	baseURL     string
	pageParam   string
	searchPaths map[models.Category]string
	extractURLs func(doc *goquery.Document) ([]string, error)
}

func (f *portalFamily) searchURL(category models.Category) string {
	return resolve(f.baseURL, f.searchPaths[category])
}

// pageScraper implements pagination and fetching; leaf types add ScrapeOffer.
type pageScraper struct {
	name     string
	category models.Category
	family   *portalFamily
	fetcher  Fetcher
	headers  HeaderSource
	log      *logging.Logger
	now      func() time.Time
}

func (s *pageScraper) Name() string              { return s.name }
func (s *pageScraper) Portal() models.Portal     { return s.family.portal }
func (s *pageScraper) Category() models.Category { return s.category }

func (s *pageScraper) randomHeaders() http.Header {
	if s.headers == nil {
		return nil
	}
	return s.headers.Random()
}

// ListOfferURLs walks search pages 1..pages and stops at the first page
// without offers. Counts are per page, in order, and include that last zero.
func (s *pageScraper) ListOfferURLs(ctx context.Context, params models.SearchParams, pages int, avgDelay time.Duration) ([]string, []int) {
	searchURL := s.family.searchURL(s.category)
	counts := make([]int, 0, pages)
	var all []string

	s.log.Debugf("About to scrape %d pages", pages)
	for page := 1; page <= pages; page++ {
		if err := sleepAround(ctx, avgDelay); err != nil {
			s.log.Warnf("Searching interrupted before page %d: %v", page, err)
			break
		}

		resp := s.fetcher.Fetch(ctx, searchURL, params.With(s.family.pageParam, page).Values(), s.randomHeaders())
		s.log.Debugf("Requested search url: %s", resp.URL)

		urls, err := s.family.extractURLs(resp.Document())
		if err != nil {
			s.log.Warnf("Extracting urls from page %d failed: %v", page, err)
			urls = nil
		}
		counts = append(counts, len(urls))
		all = append(all, urls...)
		s.log.Debugf("Got %d urls from search page", len(urls))

		if len(urls) == 0 {
			s.log.Warnf("No urls found on a search page. Searching aborted")
			break
		}
	}

	unique := identity.UniqueURLs(all)
	s.log.Infof("Found %d urls from search params. %d are unique", len(all), len(unique))
	return unique, counts
}

func (s *pageScraper) fetchDocument(ctx context.Context, rawURL string) *goquery.Document {
	return s.fetcher.Fetch(ctx, rawURL, nil, s.randomHeaders()).Document()
}

func (s *pageScraper) scrapedAt() time.Time {
	return s.now().UTC()
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return base + ref
	}
	return b.ResolveReference(r).String()
}
