package api

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"rea_scraper/models"
	"rea_scraper/scraper"
)

// RunLister reads the run history, e.g. *storage.RunStore.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.RunRecord, error)
}

// App holds what the handlers share. It is built once at startup.
type App struct {
	scrapers map[models.Category]scraper.Scraper
	runs     RunLister
}

// NewApp loads the three Otodom offer scrapers concurrently.
func NewApp(fetcher scraper.Fetcher, headers scraper.HeaderSource, runs RunLister) (*App, error) {
	app := &App{
		scrapers: make(map[models.Category]scraper.Scraper, len(models.Categories)),
		runs:     runs,
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	for _, category := range models.Categories {
		g.Go(func() error {
			name := fmt.Sprintf("API_%s_%s", models.PortalOtodom, category)
			s, err := scraper.NewScraper(models.PortalOtodom, category, name, fetcher, headers)
			if err != nil {
				return fmt.Errorf("load %s scraper: %w", category, err)
			}
			mu.Lock()
			app.scrapers[category] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading scrapers failed: %w", err)
	}

	log.Printf("API: %d scrapers loaded", len(app.scrapers))
	return app, nil
}
