package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rea_scraper/models"
)

const (
	featureTotalArea    = "Powierzchnia całkowita"
	featureBuildYear    = "Rok budowy"
	featureRooms        = "Liczba pokoi"
	featureLotArea      = "Powierzchnia działki"
	featureDriveway     = "Droga dojazdowa"
	featureMedia        = "Media"
	featureBuildingType = "Rodzaj domu"
)

type DomiportaLandScraper struct {
	pageScraper
}

func (s *DomiportaLandScraper) ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error) {
	offer, err := parseDomiportaLand(s.fetchDocument(ctx, rawURL), s.scrapedAt())
	if err != nil {
		return nil, err
	}
	return models.Normalize(offer), nil
}

func parseDomiportaLand(doc *goquery.Document, scrapedAt time.Time) (*models.DomiportaLandOffer, error) {
	features := readDomiportaFeatures(doc)
	base, err := domiportaBaseOffer(doc, features, scrapedAt)
	if err != nil {
		return nil, err
	}
	landArea, err := features.intValue(featureTotalArea, parseWholeArea)
	if err != nil {
		return nil, err
	}
	if landArea == nil {
		return nil, fmt.Errorf("land area not listed")
	}

	return &models.DomiportaLandOffer{
		DomiportaOffer: base,
		LandArea:       landArea,
		Driveway:       features.optional(featureDriveway),
		Media:          features.optional(featureMedia),
	}, nil
}

type DomiportaHouseScraper struct {
	pageScraper
}

func (s *DomiportaHouseScraper) ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error) {
	offer, err := parseDomiportaHouse(s.fetchDocument(ctx, rawURL), s.scrapedAt())
	if err != nil {
		return nil, err
	}
	return models.Normalize(offer), nil
}

func parseDomiportaHouse(doc *goquery.Document, scrapedAt time.Time) (*models.DomiportaHouseOffer, error) {
	features := readDomiportaFeatures(doc)
	base, err := domiportaBaseOffer(doc, features, scrapedAt)
	if err != nil {
		return nil, err
	}
	area, buildYear, rooms, err := domiportaBuildingFields(features)
	if err != nil {
		return nil, err
	}
	lotArea, err := features.intValue(featureLotArea, parseWholeArea)
	if err != nil {
		return nil, err
	}

	return &models.DomiportaHouseOffer{
		DomiportaOffer: base,
		LotArea:        lotArea,
		Driveway:       features.optional(featureDriveway),
		Media:          features.optional(featureMedia),
		Area:           area,
		BuildYear:      buildYear,
		NRooms:         rooms,
		BuildingType:   features.optional(featureBuildingType),
	}, nil
}

type DomiportaApartmentScraper struct {
	pageScraper
}

func (s *DomiportaApartmentScraper) ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error) {
	offer, err := parseDomiportaApartment(s.fetchDocument(ctx, rawURL), s.scrapedAt())
	if err != nil {
		return nil, err
	}
	return models.Normalize(offer), nil
}

func parseDomiportaApartment(doc *goquery.Document, scrapedAt time.Time) (*models.DomiportaApartmentOffer, error) {
	features := readDomiportaFeatures(doc)
	base, err := domiportaBaseOffer(doc, features, scrapedAt)
	if err != nil {
		return nil, err
	}
	area, buildYear, rooms, err := domiportaBuildingFields(features)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		return nil, fmt.Errorf("number of rooms not listed")
	}

	return &models.DomiportaApartmentOffer{
		DomiportaOffer: base,
		Area:           area,
		BuildYear:      buildYear,
		NRooms:         rooms,
	}, nil
}

// domiportaBuildingFields reads the attributes houses and apartments share.
// Total area and build year are mandatory.
func domiportaBuildingFields(features domiportaFeatures) (area *float64, buildYear, rooms *int, err error) {
	if area, err = features.floatValue(featureTotalArea); err != nil {
		return nil, nil, nil, err
	}
	if area == nil {
		return nil, nil, nil, fmt.Errorf("total area not listed")
	}
	if buildYear, err = features.intValue(featureBuildYear, atoi); err != nil {
		return nil, nil, nil, err
	}
	if buildYear == nil {
		return nil, nil, nil, fmt.Errorf("build year not listed")
	}
	if rooms, err = features.intValue(featureRooms, atoi); err != nil {
		return nil, nil, nil, err
	}
	return area, buildYear, rooms, nil
}
