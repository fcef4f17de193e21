package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Portal string

const (
	PortalOtodom    Portal = "OTODOM"
	PortalDomiporta Portal = "DOMIPORTA"
)

type Category string

const (
	CategoryLands      Category = "LANDS"
	CategoryHouses     Category = "HOUSES"
	CategoryApartments Category = "APARTMENTS"
)

// Categories lists every supported property category.
var Categories = []Category{CategoryLands, CategoryHouses, CategoryApartments}

// Mode only changes how many offers of a cached batch get scraped.
type Mode int

const (
	ModeTest Mode = 0
	ModeDev  Mode = 1
	ModeProd Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeTest:
		return "test"
	case ModeDev:
		return "dev"
	case ModeProd:
		return "prod"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(v int) (Mode, error) {
	m := Mode(v)
	if m < ModeTest || m > ModeProd {
		return 0, fmt.Errorf("unknown scraping mode %d (want 0=test, 1=dev, 2=prod)", v)
	}
	return m, nil
}

type JobType string

const (
	JobSearch JobType = "SEARCH"
	JobScrape JobType = "SCRAPE"
)

func ParsePortal(s string) Portal {
	return Portal(strings.ToUpper(strings.TrimSpace(s)))
}

func ParseCategory(s string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(s)))
}

const runNameLayout = "20060102-1504"

// RunName builds the identity shared by the run logger and the cache key namespace,
// e.g. 20240210-0930_OTODOM_HOUSES_SEARCH.
func RunName(now time.Time, portal Portal, category Category, job JobType) string {
	return now.Format(runNameLayout) +
		"_" + strings.ToUpper(string(portal)) +
		"_" + strings.ToUpper(string(category)) +
		"_" + strings.ToUpper(string(job))
}

// SearchBatchPattern matches cache keys written by search runs of the given pair.
func SearchBatchPattern(portal Portal, category Category) string {
	return fmt.Sprintf(".*%s_%s_%s.*", strings.ToUpper(string(portal)), strings.ToUpper(string(category)), JobSearch)
}

// RunRecord is the persisted outcome of one search or scrape run.
type RunRecord struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	JobType    JobType         `json:"job_type" db:"job_type"`
	Portal     Portal          `json:"portal" db:"portal"`
	Category   Category        `json:"category" db:"category"`
	Mode       Mode            `json:"mode" db:"mode"`
	StartedAt  time.Time       `json:"started_at" db:"started_at"`
	FinishedAt *time.Time      `json:"finished_at" db:"finished_at"`
	Report     json.RawMessage `json:"report" db:"report"`
}

func NewRunRecord(report Report) (*RunRecord, error) {
	base := report.Base()
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	rec := &RunRecord{
		ID:        uuid.New(),
		Name:      base.RunName,
		JobType:   base.JobType,
		Portal:    base.Portal,
		Category:  base.Category,
		Mode:      base.Mode,
		StartedAt: base.StartedAt,
		Report:    data,
	}
	if !base.EndedAt.IsZero() {
		ended := base.EndedAt
		rec.FinishedAt = &ended
	}
	return rec, nil
}
