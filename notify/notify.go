package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rea_scraper/models"
)

// Notifier delivers a finished run report.
type Notifier interface {
	Send(ctx context.Context, report models.Report) error
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04"
)

// Title is e.g. "Scrape: OTODOM-LANDS: 2024-02-10".
func Title(report models.Report, date time.Time) string {
	base := report.Base()
	return fmt.Sprintf("%s: %s-%s: %s", jobLabel(base.JobType), base.Portal, base.Category, date.Format(dateLayout))
}

func Body(report models.Report, env string) string {
	base := report.Base()

	var b strings.Builder
	fmt.Fprintf(&b, "Env: %s\n", env)
	fmt.Fprintf(&b, "Start: %s\n", formatTime(base.StartedAt))
	fmt.Fprintf(&b, "End: %s\n", formatTime(base.EndedAt))

	switch r := report.(type) {
	case *models.SearchReport:
		fmt.Fprintf(&b, "Acquired: %d (%s)\n", r.TotalURLsAcquired(), formatCounts(r.URLsFromPages))
	case *models.ScrapeReport:
		fmt.Fprintf(&b, "Scraped before: %d\n", r.ScrapedBefore)
		fmt.Fprintf(&b, "Unknown errors: %d\n", r.UnknownErrors)
		fmt.Fprintf(&b, "Offers attempted: %d (%s)\n", r.TotalAttempted(), formatCounts(r.AttemptedInBatches))
		fmt.Fprintf(&b, "Offers success: %d (%s)\n", r.TotalSucceeded(), formatCounts(r.SucceededInBatches))
		fmt.Fprintf(&b, "Postgresql success: %d\n", r.RelationalSuccess)
		fmt.Fprintf(&b, "Mongodb success: %d\n", r.DocumentSuccess)
	}
	return b.String()
}

func jobLabel(job models.JobType) string {
	switch job {
	case models.JobSearch:
		return "Search"
	case models.JobScrape:
		return "Scrape"
	default:
		return "Run"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timestampLayout)
}

// formatCounts renders [10, 10, 0].
func formatCounts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
