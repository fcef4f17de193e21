package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rea_scraper/models"
)

type OtodomLandScraper struct {
	pageScraper
}

func (s *OtodomLandScraper) ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error) {
	offer, err := parseOtodomLand(s.fetchDocument(ctx, rawURL), s.scrapedAt())
	if err != nil {
		return nil, err
	}
	return models.Normalize(offer), nil
}

func parseOtodomLand(doc *goquery.Document, scrapedAt time.Time) (*models.OtodomLandOffer, error) {
	ad, err := otodomAdFromDocument(doc)
	if err != nil {
		return nil, err
	}
	base, err := ad.baseOffer(scrapedAt)
	if err != nil {
		return nil, err
	}
	area, err := ad.Target.requiredNumber("Area")
	if err != nil {
		return nil, err
	}

	return &models.OtodomLandOffer{
		OtodomOffer:  base,
		LandArea:     models.Ptr(int(area)),
		LandFeatures: ad.featuresJSON(),
		Vicinity:     ad.Target.joined("Vicinity_types"),
	}, nil
}

type OtodomHouseScraper struct {
	pageScraper
}

func (s *OtodomHouseScraper) ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error) {
	offer, err := parseOtodomHouse(s.fetchDocument(ctx, rawURL), s.scrapedAt())
	if err != nil {
		return nil, err
	}
	return models.Normalize(offer), nil
}

func parseOtodomHouse(doc *goquery.Document, scrapedAt time.Time) (*models.OtodomHouseOffer, error) {
	ad, err := otodomAdFromDocument(doc)
	if err != nil {
		return nil, err
	}
	base, err := ad.baseOffer(scrapedAt)
	if err != nil {
		return nil, err
	}
	lotArea, err := ad.Target.requiredNumber("Terrain_area")
	if err != nil {
		return nil, err
	}
	houseArea, err := ad.Target.requiredNumber("Area")
	if err != nil {
		return nil, err
	}

	return &models.OtodomHouseOffer{
		OtodomOffer:   base,
		Market:        models.Ptr(ad.Market),
		BuildingType:  ad.Target.joined("Building_type"),
		HouseFeatures: ad.featuresJSON(),
		LotArea:       models.Ptr(int(lotArea)),
		HouseArea:     models.Ptr(int(houseArea)),
		NRooms:        ad.Target.optionalInt("Rooms_num"),
		Floors:        floorsCount(ad.Target.list("Floors_num")),
		Heating:       ad.Target.joined("Heating_types"),
		BuildYear:     ad.Target.optionalInt("Build_year"),
		Media:         ad.Target.joined("Media_types"),
		Vicinity:      ad.Target.joined("Vicinity_types"),
	}, nil
}

type OtodomApartmentScraper struct {
	pageScraper
}

func (s *OtodomApartmentScraper) ScrapeOffer(ctx context.Context, rawURL string) (models.Offer, error) {
	offer, err := parseOtodomApartment(s.fetchDocument(ctx, rawURL), s.scrapedAt())
	if err != nil {
		return nil, err
	}
	return models.Normalize(offer), nil
}

func parseOtodomApartment(doc *goquery.Document, scrapedAt time.Time) (*models.OtodomApartmentOffer, error) {
	ad, err := otodomAdFromDocument(doc)
	if err != nil {
		return nil, err
	}
	base, err := ad.baseOffer(scrapedAt)
	if err != nil {
		return nil, err
	}
	area, err := ad.Target.requiredNumber("Area")
	if err != nil {
		return nil, err
	}

	return &models.OtodomApartmentOffer{
		OtodomOffer:       base,
		Market:            models.Ptr(ad.Market),
		Status:            ad.Target.joined("Construction_status"),
		ApartmentFeatures: ad.featuresList(),
		ApartmentArea:     models.Ptr(int(area)),
		BuildYear:         ad.Target.optionalInt("Build_year"),
		Floor:             floorNumber(ad.Target.list("Floor_no")),
		BuildingFloorsNum: ad.Target.optionalInt("Building_floors_num"),
		BuildingType:      ad.Target.joined("Building_type"),
		Media:             ad.Target.joined("Media_types"),
		Heating:           ad.Target.joined("Heating_types"),
		NRooms:            ad.Target.optionalInt("Rooms_num"),
	}, nil
}
