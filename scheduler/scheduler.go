package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"rea_scraper/config"
	"rea_scraper/models"
)

// Jobs runs the two pipeline jobs, e.g. *scraper.Pipeline.
type Jobs interface {
	Search(ctx context.Context, portal models.Portal, category models.Category, mode models.Mode) (*models.SearchReport, error)
	Scrape(ctx context.Context, portal models.Portal, category models.Category, mode models.Mode, clearCache bool) (*models.ScrapeReport, error)
}

type Scheduler struct {
	jobs    Jobs
	entries []config.ScheduleEntry
	cron    *cron.Cron
}

func New(entries []config.ScheduleEntry, jobs Jobs) *Scheduler {
	return &Scheduler{
		jobs:    jobs,
		entries: entries,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start registers every schedule entry and starts the cron loop. An invalid
// entry fails Start.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.entries) == 0 {
		log.Println("No schedule configured, daemon is idle")
	}

	for _, entry := range s.entries {
		if err := validate(entry); err != nil {
			return err
		}
		log.Printf("Scheduling %s %s %s (mode %d) at %q", entry.Job, entry.Portal, entry.Category, entry.Mode, entry.Cron)
		_, err := s.cron.AddFunc(entry.Cron, func() {
			if err := s.RunEntry(ctx, entry); err != nil {
				log.Printf("Scheduled %s %s %s error: %v", entry.Job, entry.Portal, entry.Category, err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", entry.Cron, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// RunEntry runs one entry immediately.
func (s *Scheduler) RunEntry(ctx context.Context, entry config.ScheduleEntry) error {
	if err := validate(entry); err != nil {
		return err
	}
	portal := models.ParsePortal(entry.Portal)
	category := models.ParseCategory(entry.Category)
	mode := models.Mode(entry.Mode)

	switch models.JobType(strings.ToUpper(entry.Job)) {
	case models.JobSearch:
		_, err := s.jobs.Search(ctx, portal, category, mode)
		return err
	default:
		clearCache := true
		if entry.ClearCache != nil {
			clearCache = *entry.ClearCache
		}
		_, err := s.jobs.Scrape(ctx, portal, category, mode, clearCache)
		return err
	}
}

func validate(entry config.ScheduleEntry) error {
	switch models.JobType(strings.ToUpper(entry.Job)) {
	case models.JobSearch, models.JobScrape:
	default:
		return fmt.Errorf("schedule: unknown job %q", entry.Job)
	}
	if _, err := models.ParseMode(entry.Mode); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}
