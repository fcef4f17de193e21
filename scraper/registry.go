package scraper

import (
	"fmt"
	"time"

	"rea_scraper/logging"
	"rea_scraper/models"
)

type Option func(*pageScraper)

func WithLogger(l *logging.Logger) Option {
	return func(s *pageScraper) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *pageScraper) { s.now = now }
}

var families = map[models.Portal]*portalFamily{
	models.PortalOtodom:    otodomFamily,
	models.PortalDomiporta: domiportaFamily,
}

// NewScraper returns the scraper for a portal and category.
func NewScraper(portal models.Portal, category models.Category, name string, fetcher Fetcher, headers HeaderSource, opts ...Option) (Scraper, error) {
	family, ok := families[portal]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotExists, portal)
	}
	if _, ok := family.searchPaths[category]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotExists, category)
	}

	base := pageScraper{
		name:     name,
		category: category,
		family:   family,
		fetcher:  fetcher,
		headers:  headers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&base)
	}
	if base.log == nil {
		base.log = logging.Default(name)
	}

	switch portal {
	case models.PortalOtodom:
		switch category {
		case models.CategoryLands:
			return &OtodomLandScraper{base}, nil
		case models.CategoryHouses:
			return &OtodomHouseScraper{base}, nil
		case models.CategoryApartments:
			return &OtodomApartmentScraper{base}, nil
		}
	case models.PortalDomiporta:
		switch category {
		case models.CategoryLands:
			return &DomiportaLandScraper{base}, nil
		case models.CategoryHouses:
			return &DomiportaHouseScraper{base}, nil
		case models.CategoryApartments:
			return &DomiportaApartmentScraper{base}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryNotExists, category)
}
