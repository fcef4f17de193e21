package api

import (
	"fmt"

	"rea_scraper/models"
)

// Features is the subset of an offer a price model takes as input.
type Features map[string]any

func offerFeatures(offer models.Offer) (Features, error) {
	switch o := offer.(type) {
	case *models.OtodomLandOffer:
		return Features{
			"advert_type":    o.AdvertType,
			"utc_created_at": o.UTCCreatedAt,
			"province":       o.Province,
			"subregion":      o.Subregion,
			"location":       o.Location,
			"land_area":      o.LandArea,
		}, nil
	case *models.OtodomHouseOffer:
		return Features{
			"advert_type":    o.AdvertType,
			"utc_created_at": o.UTCCreatedAt,
			"province":       o.Province,
			"subregion":      o.Subregion,
			"location":       o.Location,
			"market":         o.Market,
			"lot_area":       o.LotArea,
			"house_area":     o.HouseArea,
			"n_rooms":        o.NRooms,
			"build_year":     o.BuildYear,
		}, nil
	case *models.OtodomApartmentOffer:
		return Features{
			"advert_type":    o.AdvertType,
			"utc_created_at": o.UTCCreatedAt,
			"province":       o.Province,
			"subregion":      o.Subregion,
			"market":         o.Market,
			"apartment_area": o.ApartmentArea,
			"n_rooms":        o.NRooms,
			"build_year":     o.BuildYear,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported offer type %T", offer)
	}
}
