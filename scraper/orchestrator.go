package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"rea_scraper/config"
	"rea_scraper/logging"
	"rea_scraper/models"
)

// devBatchLimit caps how many URLs of a cached batch are scraped outside prod.
const devBatchLimit = 8

// Cache stores named URL batches between search and scrape runs.
type Cache interface {
	Put(ctx context.Context, key string, urls []string) error
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// OfferStore is the persistence boundary for one portal and category.
type OfferStore interface {
	StoredURLs(ctx context.Context) ([]string, error)
	StoreRelational(ctx context.Context, offers []models.Offer) (int, error)
	StoreDocument(ctx context.Context, offers []models.Offer) (int, error)
	StoreAnalytical(ctx context.Context, runName string, offers []models.Offer) error
}

type FilterSource interface {
	Load(portal, category string) (*config.Filters, error)
}

type StoreTargets struct {
	Relational bool
	Document   bool
	Analytical bool
}

type OrchestratorOptions struct {
	Portal   models.Portal
	Category models.Category
	Mode     models.Mode
	JobType  models.JobType
	RunName  string

	Fetcher Fetcher
	Headers HeaderSource
	// Scraper overrides the registry lookup.
	Scraper Scraper

	Cache   Cache
	Store   OfferStore
	Filters FilterSource
	Logger  *logging.Logger
	Now     func() time.Time
}

// Orchestrator drives one search or scrape run for a single portal and category.
type Orchestrator struct {
	portal   models.Portal
	category models.Category
	mode     models.Mode
	runName  string

	scraper Scraper
	cache   Cache
	store   OfferStore
	filters FilterSource
	report  models.Report
	log     *logging.Logger
	now     func() time.Time
}

func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default(opts.RunName)
	}

	s := opts.Scraper
	if s == nil {
		var err error
		s, err = NewScraper(opts.Portal, opts.Category, opts.RunName, opts.Fetcher, opts.Headers,
			WithLogger(opts.Logger), WithClock(opts.Now))
		if err != nil {
			return nil, err
		}
	}

	o := &Orchestrator{
		portal:   opts.Portal,
		category: opts.Category,
		mode:     opts.Mode,
		runName:  opts.RunName,
		scraper:  s,
		cache:    opts.Cache,
		store:    opts.Store,
		filters:  opts.Filters,
		report:   models.NewReport(opts.JobType, opts.Portal, opts.Category, opts.RunName, opts.Mode, opts.Now()),
		log:      opts.Logger,
		now:      opts.Now,
	}
	o.log.Infof("Orchestrator initialized for %s %s | mode: %s", o.portal, o.category, o.mode)
	return o, nil
}

func (o *Orchestrator) Report() models.Report {
	return o.report
}

// Finish stamps the end of the run on the report.
func (o *Orchestrator) Finish() {
	o.report.Base().Finish(o.now())
}

// searchParams merges the compiled-in defaults with the filter file.
func (o *Orchestrator) searchParams() (models.SearchParams, int, error) {
	defaults, ok := models.DefaultSearchParams(o.portal, o.category)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s %s", ErrCategoryNotExists, o.portal, o.category)
	}
	if o.filters == nil {
		return defaults.Compact(), config.DefaultPages, nil
	}

	custom, err := o.filters.Load(string(o.portal), string(o.category))
	if err != nil {
		return nil, 0, fmt.Errorf("load filters: %w", err)
	}
	params := defaults.Compact().Merge(custom.Filters)
	o.log.Debugf("All search params: %v. Number of pages: %d", params, custom.NPages)
	return params, custom.NPages, nil
}

// SearchOffersURLs discovers offer URLs and, when useCache is set, stores them
// as one batch keyed by run name and batch size. Only a missing or unreadable
// filter file is returned as an error.
func (o *Orchestrator) SearchOffersURLs(ctx context.Context, useCache bool, avgDelay time.Duration) ([]string, error) {
	o.log.Infof("Searching offers urls started")

	params, pages, err := o.searchParams()
	if err != nil {
		return nil, err
	}

	urls, counts := o.scraper.ListOfferURLs(ctx, params, pages, avgDelay)
	if r, ok := o.report.(*models.SearchReport); ok {
		r.URLsFromPages = counts
	}

	if useCache && o.cache != nil {
		key := fmt.Sprintf("%s_%d", o.scraper.Name(), len(urls))
		if err := o.cache.Put(ctx, key, urls); err != nil {
			o.log.Errorf("Caching urls under %s failed: %v", key, err)
		} else {
			o.log.Debugf("Cached %d urls under %s", len(urls), key)
		}
	}

	return urls, nil
}

// matchingKeys lists cache keys matching pattern at their start, sorted.
func (o *Orchestrator) matchingKeys(ctx context.Context, pattern string) ([]string, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile cache pattern: %w", err)
	}
	keys, err := o.cache.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cache keys: %w", err)
	}

	var out []string
	for _, k := range keys {
		if re.MatchString(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ScrapeCachedURLs scrapes every cached batch matching pattern. Per-offer
// failures are counted on the report and never stop the run. A batch is
// deleted only after all of its URLs were attempted.
func (o *Orchestrator) ScrapeCachedURLs(ctx context.Context, pattern string, clearCache bool, avgDelay time.Duration) ([]models.Offer, error) {
	o.log.Infof("Scraping cached offers started")
	if o.cache == nil {
		return nil, ErrNoCache
	}
	report := o.scrapeReport()

	keys, err := o.matchingKeys(ctx, pattern)
	if err != nil {
		return nil, err
	}
	o.log.Debugf("Cached batches read: %v", keys)

	var scraped []models.Offer
	toScrape := 0
	for _, key := range keys {
		stored, err := o.storedURLs(ctx)
		if err != nil {
			o.log.Errorf("Reading stored urls failed, skipping %s: %v", key, err)
			continue
		}

		batch, err := o.cache.Get(ctx, key)
		if err != nil {
			o.log.Errorf("Reading cached batch %s failed: %v", key, err)
			continue
		}
		toScrape += len(batch)
		o.log.Debugf("Scraping offers from %s, %d offers to scrape", key, len(batch))

		if o.mode != models.ModeProd && len(batch) > devBatchLimit {
			batch = batch[:devBatchLimit]
		}

		report.OpenBatch()
		succeeded := 0
		for _, u := range batch {
			report.MarkAttempted()
			if _, ok := stored[u]; ok {
				o.log.Warnf("URL %s already in database", u)
				report.ScrapedBefore++
				continue
			}

			if err := sleepAround(ctx, avgDelay); err != nil {
				o.log.Warnf("Scraping interrupted at %s, %s kept in cache: %v", u, key, err)
				return scraped, fmt.Errorf("scrape %s: %w", key, err)
			}

			offer, err := o.scraper.ScrapeOffer(ctx, u)
			if err != nil {
				report.UnknownErrors++
				o.log.Warnf("Offer scraping failed (%s)", u)
				o.log.Warnf("Error: %s: %v", errorKind(err), err)
				continue
			}
			scraped = append(scraped, offer)
			report.MarkSucceeded()
			succeeded++
			o.log.Infof("Offer successfully scraped from %s", u)
		}

		o.log.Debugf("For %s: %d offers scraped out of %d (%s)", key, succeeded, len(batch), percent(succeeded, len(batch)))

		if clearCache {
			if err := o.cache.Delete(ctx, key); err != nil {
				o.log.Errorf("Clearing %s failed: %v", key, err)
			} else {
				o.log.Debugf("%s: cache cleared after scraping", key)
			}
		}
	}

	o.log.Infof("Altogether %d offers scraped out of %d (%s)", len(scraped), toScrape, percent(len(scraped), toScrape))
	return scraped, nil
}

func (o *Orchestrator) storedURLs(ctx context.Context) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	if o.store == nil {
		return set, nil
	}
	urls, err := o.store.StoredURLs(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}

// StoreScrapedOffers writes offers to every enabled sink. A failing sink is
// logged and does not prevent the others.
func (o *Orchestrator) StoreScrapedOffers(ctx context.Context, offers []models.Offer, targets StoreTargets) {
	o.log.Infof("Storing %d offers started (relational=%t document=%t analytical=%t)",
		len(offers), targets.Relational, targets.Document, targets.Analytical)
	if o.store == nil {
		o.log.Errorf("No offer store configured, nothing stored")
		return
	}
	report := o.scrapeReport()

	if targets.Relational {
		n, err := o.store.StoreRelational(ctx, offers)
		if err != nil {
			o.log.Errorf("Storing data in postgresql failed: %v", err)
		} else {
			report.RelationalSuccess = n
			o.log.Infof("%d offers stored in postgresql", n)
		}
	}

	if targets.Document {
		n, err := o.store.StoreDocument(ctx, offers)
		if err != nil {
			o.log.Errorf("Storing data in mongodb failed: %v", err)
		} else {
			report.DocumentSuccess = n
			o.log.Infof("%d offers stored in mongodb", n)
		}
	}

	if targets.Analytical {
		if err := o.store.StoreAnalytical(ctx, o.runName, offers); err != nil {
			o.log.Errorf("Storing data in analytical export failed: %v", err)
		} else {
			report.AnalyticalStored = true
			o.log.Infof("%d offers exported", len(offers))
		}
	}
}

// scrapeReport returns the scrape report, or a detached one when the run was
// not started as a scrape job.
func (o *Orchestrator) scrapeReport() *models.ScrapeReport {
	if r, ok := o.report.(*models.ScrapeReport); ok {
		return r
	}
	return &models.ScrapeReport{}
}

// errorKind names the failure class for the log line.
func errorKind(err error) string {
	if errors.Is(err, ErrInvalidOffer) {
		return "InvalidOffer"
	}
	return fmt.Sprintf("%T", err)
}

func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(total))
}
