package models

import "time"

// Report accumulates counters for a single run. The orchestrator mutates it
// while the run is in progress; notifiers only read it.
type Report interface {
	Base() *RunReport
}

// RunReport is the variant used when the job type is not recognized.
type RunReport struct {
	JobType   JobType   `json:"job_type"`
	Portal    Portal    `json:"portal"`
	Category  Category  `json:"category"`
	RunName   string    `json:"run_name"`
	Mode      Mode      `json:"mode"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func (r *RunReport) Base() *RunReport { return r }

// Finish stamps the end of the run.
func (r *RunReport) Finish(now time.Time) {
	r.EndedAt = now
}

type SearchReport struct {
	RunReport
	URLsFromPages []int `json:"urls_from_pages"`
}

func (r *SearchReport) TotalURLsAcquired() int {
	return sum(r.URLsFromPages)
}

type ScrapeReport struct {
	RunReport
	ScrapedBefore      int   `json:"scraped_before"`
	UnknownErrors      int   `json:"unknown_errors"`
	AttemptedInBatches []int `json:"attempted_in_batches"`
	SucceededInBatches []int `json:"succeeded_in_batches"`
	RelationalSuccess  int   `json:"relational_success"`
	DocumentSuccess    int   `json:"document_success"`
	AnalyticalStored   bool  `json:"analytical_stored"`
}

// OpenBatch starts a new (attempted, succeeded) pair. Both lists always grow together.
func (r *ScrapeReport) OpenBatch() {
	r.AttemptedInBatches = append(r.AttemptedInBatches, 0)
	r.SucceededInBatches = append(r.SucceededInBatches, 0)
}

func (r *ScrapeReport) MarkAttempted() {
	if len(r.AttemptedInBatches) == 0 {
		r.OpenBatch()
	}
	r.AttemptedInBatches[len(r.AttemptedInBatches)-1]++
}

func (r *ScrapeReport) MarkSucceeded() {
	if len(r.SucceededInBatches) == 0 {
		r.OpenBatch()
	}
	r.SucceededInBatches[len(r.SucceededInBatches)-1]++
}

func (r *ScrapeReport) TotalAttempted() int {
	return sum(r.AttemptedInBatches)
}

func (r *ScrapeReport) TotalSucceeded() int {
	return sum(r.SucceededInBatches)
}

// NewReport picks the report variant for a job type and stamps its start time.
func NewReport(job JobType, portal Portal, category Category, runName string, mode Mode, now time.Time) Report {
	base := RunReport{
		JobType:   job,
		Portal:    portal,
		Category:  category,
		RunName:   runName,
		Mode:      mode,
		StartedAt: now,
	}

	switch job {
	case JobSearch:
		return &SearchReport{RunReport: base, URLsFromPages: []int{}}
	case JobScrape:
		return &ScrapeReport{RunReport: base, AttemptedInBatches: []int{}, SucceededInBatches: []int{}}
	default:
		return &base
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
