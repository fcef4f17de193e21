package scraper

import (
	"context"
	"fmt"
	"time"

	"rea_scraper/logging"
	"rea_scraper/models"
	"rea_scraper/notify"
)

// RunRecorder keeps the history of finished runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, rec *models.RunRecord) error
	SaveLog(ctx context.Context, entry *models.RunLog) error
}

// StoreFactory opens the offer store bound to one portal, category and mode.
type StoreFactory func(portal models.Portal, category models.Category, mode models.Mode) OfferStore

// Pipeline wires orchestrators to their collaborators for the two jobs.
type Pipeline struct {
	Cache    Cache
	Stores   StoreFactory
	Filters  FilterSource
	Notifier notify.Notifier
	Runs     RunRecorder
	Fetcher  Fetcher
	Headers  HeaderSource

	LogDir      string
	LogLevel    models.LogLevel
	SearchDelay time.Duration
	ScrapeDelay time.Duration
	Analytical  bool
	Now         func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) orchestrator(portal models.Portal, category models.Category, mode models.Mode, job models.JobType, log *logging.Logger, runName string) (*Orchestrator, error) {
	var store OfferStore
	if p.Stores != nil {
		store = p.Stores(portal, category, mode)
	}
	return NewOrchestrator(OrchestratorOptions{
		Portal:   portal,
		Category: category,
		Mode:     mode,
		JobType:  job,
		RunName:  runName,
		Fetcher:  p.Fetcher,
		Headers:  p.Headers,
		Cache:    p.Cache,
		Store:    store,
		Filters:  p.Filters,
		Logger:   log,
		Now:      p.Now,
	})
}

// Search discovers offer URLs and caches them for a later scrape job.
func (p *Pipeline) Search(ctx context.Context, portal models.Portal, category models.Category, mode models.Mode) (*models.SearchReport, error) {
	portal, category = models.ParsePortal(string(portal)), models.ParseCategory(string(category))
	runName := models.RunName(p.now(), portal, category, models.JobSearch)
	log := p.runLogger(runName, portal)
	defer log.Close()

	o, err := p.orchestrator(portal, category, mode, models.JobSearch, log, runName)
	if err != nil {
		return nil, err
	}
	if _, err := o.SearchOffersURLs(ctx, true, p.SearchDelay); err != nil {
		return nil, err
	}
	o.Finish()

	p.finishRun(ctx, o.Report(), log)
	log.Infof("Scraping finished properly")
	return o.Report().(*models.SearchReport), nil
}

// Scrape scrapes the batches cached by earlier searches of the same pair and
// stores the offers.
func (p *Pipeline) Scrape(ctx context.Context, portal models.Portal, category models.Category, mode models.Mode, clearCache bool) (*models.ScrapeReport, error) {
	portal, category = models.ParsePortal(string(portal)), models.ParseCategory(string(category))
	runName := models.RunName(p.now(), portal, category, models.JobScrape)
	log := p.runLogger(runName, portal)
	defer log.Close()

	o, err := p.orchestrator(portal, category, mode, models.JobScrape, log, runName)
	if err != nil {
		return nil, err
	}

	offers, err := o.ScrapeCachedURLs(ctx, models.SearchBatchPattern(portal, category), clearCache, p.ScrapeDelay)
	if err != nil {
		log.Errorf("Scraping cached urls stopped: %v", err)
	}
	o.Finish()
	log.Infof("%d cached offers scraped", len(offers))

	// Stores still get the offers scraped before an interruption.
	storeCtx := context.WithoutCancel(ctx)
	o.StoreScrapedOffers(storeCtx, offers, StoreTargets{
		Relational: true,
		Document:   true,
		Analytical: p.Analytical,
	})

	p.finishRun(storeCtx, o.Report(), log)
	log.Infof("Scraping finished properly")
	return o.Report().(*models.ScrapeReport), nil
}

func (p *Pipeline) finishRun(ctx context.Context, report models.Report, log *logging.Logger) {
	if p.Notifier != nil {
		if err := p.Notifier.Send(ctx, report); err != nil {
			log.Errorf("Sending report failed: %v", err)
		} else {
			log.Infof("Report sent")
		}
	}

	if p.Runs != nil {
		rec, err := models.NewRunRecord(report)
		if err != nil {
			log.Errorf("Building run record failed: %v", err)
			return
		}
		if err := p.Runs.SaveRun(ctx, rec); err != nil {
			log.Errorf("Saving run record failed: %v", err)
		}
	}
}

// runLogger opens the per-run log file; warnings and errors also go to the run history.
func (p *Pipeline) runLogger(runName string, portal models.Portal) *logging.Logger {
	level := p.LogLevel
	if level == "" {
		level = models.LogLevelInfo
	}

	log := logging.Default(string(portal))
	if p.LogDir != "" {
		l, err := logging.NewRunLogger(p.LogDir, runName, string(portal), level)
		if err != nil {
			log.Warnf("Falling back to process log: %v", err)
		} else {
			log = l
		}
	}

	if p.Runs == nil {
		return log
	}
	runs := p.Runs
	return log.WithSink(func(lvl models.LogLevel, source, message string) {
		if !lvl.Enabled(models.LogLevelWarn) {
			return
		}
		entry := &models.RunLog{
			RunName:   runName,
			Timestamp: time.Now().UTC(),
			Level:     lvl,
			Source:    source,
			Message:   message,
		}
		if err := runs.SaveLog(context.Background(), entry); err != nil {
			fmt.Printf("save run log: %v\n", err)
		}
	})
}
