package scraper

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rea_scraper/models"
)

func TestPipeline_SearchThenScrape(t *testing.T) {
	search := loadFixture(t, "otodom_search.html")
	land := loadFixture(t, "otodom_land.html")
	fetcher := &fakeFetcher{respond: func(rawURL string, _ url.Values) []byte {
		if strings.Contains(rawURL, "/pl/oferty/") {
			return search
		}
		return land
	}}

	cache := newMemCache()
	store := &fakeStore{stored: []string{"https://www.otodom.pl/pl/oferta/dzialka-pod-lasem-ID4pQa2"}}
	notifier := &recordingNotifier{}
	runs := &recordingRuns{}
	logDir := t.TempDir()

	p := &Pipeline{
		Cache: cache,
		Stores: func(portal models.Portal, category models.Category, _ models.Mode) OfferStore {
			assert.Equal(t, models.PortalOtodom, portal)
			assert.Equal(t, models.CategoryLands, category)
			return store
		},
		Notifier:   notifier,
		Runs:       runs,
		Fetcher:    fetcher,
		LogDir:     logDir,
		LogLevel:   models.LogLevelDebug,
		Analytical: true,
		Now:        fixedClock,
	}

	searchReport, err := p.Search(context.Background(), "otodom", "lands", models.ModeTest)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, searchReport.URLsFromPages)
	assert.False(t, searchReport.EndedAt.IsZero())
	assert.True(t, cache.Has("20240210-0930_OTODOM_LANDS_SEARCH_2"))
	_, err = os.Stat(filepath.Join(logDir, "20240210-0930_OTODOM_LANDS_SEARCH.log"))
	assert.NoError(t, err)

	scrapeReport, err := p.Scrape(context.Background(), models.PortalOtodom, models.CategoryLands, models.ModeTest, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, scrapeReport.AttemptedInBatches)
	assert.Equal(t, []int{1}, scrapeReport.SucceededInBatches)
	assert.Equal(t, 1, scrapeReport.ScrapedBefore)
	assert.Equal(t, 1, scrapeReport.RelationalSuccess)
	assert.Equal(t, 1, scrapeReport.DocumentSuccess)
	assert.True(t, scrapeReport.AnalyticalStored)
	assert.False(t, cache.Has("20240210-0930_OTODOM_LANDS_SEARCH_2"))

	require.Len(t, notifier.reports, 2)
	assert.Same(t, searchReport, notifier.reports[0])
	require.Len(t, runs.runs, 2)
	assert.Equal(t, models.JobSearch, runs.runs[0].JobType)
	assert.Equal(t, "20240210-0930_OTODOM_LANDS_SCRAPE", runs.runs[1].Name)

	require.NotEmpty(t, runs.logs, "warnings are persisted with the run")
	assert.Equal(t, models.LogLevelWarn, runs.logs[0].Level)
	assert.Equal(t, "20240210-0930_OTODOM_LANDS_SCRAPE", runs.logs[0].RunName)
	assert.Contains(t, runs.logs[0].Message, "already in database")
}

func TestPipeline_UnknownPortal(t *testing.T) {
	p := &Pipeline{Cache: newMemCache(), Now: fixedClock}

	_, err := p.Search(context.Background(), "gratka", "lands", models.ModeTest)
	assert.ErrorIs(t, err, ErrServiceNotExists)

	_, err = p.Scrape(context.Background(), "otodom", "garages", models.ModeTest, false)
	assert.ErrorIs(t, err, ErrCategoryNotExists)
}
