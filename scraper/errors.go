package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrServiceNotExists  = errors.New("service does not exist")
	ErrCategoryNotExists = errors.New("category does not exist")
	ErrInvalidOffer      = errors.New("invalid offer")
	ErrNoCache           = errors.New("no cache configured")
)

func invalidOffer(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOffer, reason)
}
