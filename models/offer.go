package models

import (
	"reflect"
	"time"
)

// Offer is one parsed listing. Variants differ per portal and category;
// every optional attribute is a pointer and nil means "no value".
type Offer interface {
	OfferURL() string
	Portal() Portal
	Category() Category
}

// OtodomOffer holds the attributes shared by every Otodom listing.
type OtodomOffer struct {
	NumberID       *int64     `db:"number_id" json:"number_id"`
	ShortID        *string    `db:"short_id" json:"short_id"`
	LongID         *string    `db:"long_id" json:"long_id"`
	URL            *string    `db:"url" json:"url"`
	Title          *string    `db:"title" json:"title"`
	Price          *int       `db:"price" json:"price"`
	AdvertiserType *string    `db:"advertiser_type" json:"advertiser_type"`
	AdvertType     *string    `db:"advert_type" json:"advert_type"`
	UTCCreatedAt   *time.Time `db:"utc_created_at" json:"utc_created_at"`
	UTCScrapedAt   *time.Time `db:"utc_scraped_at" json:"utc_scraped_at"`
	Description    *string    `db:"description" json:"description"`
	City           *string    `db:"city" json:"city"`
	Subregion      *string    `db:"subregion" json:"subregion"`
	Province       *string    `db:"province" json:"province"`
	Location       *string    `db:"location" json:"location"`
	Latitude       *float64   `db:"latitude" json:"latitude"`
	Longitude      *float64   `db:"longitude" json:"longitude"`
}

func (o *OtodomOffer) OfferURL() string { return deref(o.URL) }
func (o *OtodomOffer) Portal() Portal   { return PortalOtodom }

type OtodomLandOffer struct {
	OtodomOffer
	LandArea     *int    `db:"land_area" json:"land_area"`
	LandFeatures *string `db:"land_features" json:"land_features"`
	Vicinity     *string `db:"vicinity" json:"vicinity"`
}

func (o *OtodomLandOffer) Category() Category { return CategoryLands }

type OtodomHouseOffer struct {
	OtodomOffer
	Market        *string `db:"market" json:"market"`
	BuildingType  *string `db:"building_type" json:"building_type"`
	HouseFeatures *string `db:"house_features" json:"house_features"`
	LotArea       *int    `db:"lot_area" json:"lot_area"`
	HouseArea     *int    `db:"house_area" json:"house_area"`
	NRooms        *int    `db:"n_rooms" json:"n_rooms"`
	Floors        *int    `db:"floors" json:"floors"`
	Heating       *string `db:"heating" json:"heating"`
	BuildYear     *int    `db:"build_year" json:"build_year"`
	Media         *string `db:"media" json:"media"`
	Vicinity      *string `db:"vicinity" json:"vicinity"`
}

func (o *OtodomHouseOffer) Category() Category { return CategoryHouses }

type OtodomApartmentOffer struct {
	OtodomOffer
	Market            *string `db:"market" json:"market"`
	Status            *string `db:"status" json:"status"`
	ApartmentFeatures *string `db:"apartment_features" json:"apartment_features"`
	ApartmentArea     *int    `db:"apartment_area" json:"apartment_area"`
	BuildYear         *int    `db:"build_year" json:"build_year"`
	Floor             *int    `db:"floor" json:"floor"`
	BuildingFloorsNum *int    `db:"building_floors_num" json:"building_floors_num"`
	BuildingType      *string `db:"building_type" json:"building_type"`
	Media             *string `db:"media" json:"media"`
	Heating           *string `db:"heating" json:"heating"`
	NRooms            *int    `db:"n_rooms" json:"n_rooms"`
}

func (o *OtodomApartmentOffer) Category() Category { return CategoryApartments }

// DomiportaOffer holds the attributes shared by every Domiporta listing.
type DomiportaOffer struct {
	NumberID     *string    `db:"number_id" json:"number_id"`
	URL          *string    `db:"url" json:"url"`
	Title        *string    `db:"title" json:"title"`
	Price        *int       `db:"price" json:"price"`
	UTCScrapedAt *time.Time `db:"utc_scraped_at" json:"utc_scraped_at"`
	Description  *string    `db:"description" json:"description"`
	City         *string    `db:"city" json:"city"`
	Province     *string    `db:"province" json:"province"`
	Latitude     *float64   `db:"latitude" json:"latitude"`
	Longitude    *float64   `db:"longitude" json:"longitude"`
}

func (o *DomiportaOffer) OfferURL() string { return deref(o.URL) }
func (o *DomiportaOffer) Portal() Portal   { return PortalDomiporta }

type DomiportaLandOffer struct {
	DomiportaOffer
	LandArea *int    `db:"land_area" json:"land_area"`
	Driveway *string `db:"driveway" json:"driveway"`
	Media    *string `db:"media" json:"media"`
}

func (o *DomiportaLandOffer) Category() Category { return CategoryLands }

type DomiportaHouseOffer struct {
	DomiportaOffer
	LotArea      *int     `db:"lot_area" json:"lot_area"`
	Driveway     *string  `db:"driveway" json:"driveway"`
	Media        *string  `db:"media" json:"media"`
	Area         *float64 `db:"area" json:"area"`
	BuildYear    *int     `db:"build_year" json:"build_year"`
	NRooms       *int     `db:"n_rooms" json:"n_rooms"`
	BuildingType *string  `db:"building_type" json:"building_type"`
}

func (o *DomiportaHouseOffer) Category() Category { return CategoryHouses }

type DomiportaApartmentOffer struct {
	DomiportaOffer
	Area      *float64 `db:"area" json:"area"`
	BuildYear *int     `db:"build_year" json:"build_year"`
	NRooms    *int     `db:"n_rooms" json:"n_rooms"`
}

func (o *DomiportaApartmentOffer) Category() Category { return CategoryApartments }

// Ptr returns a pointer to v. Zero values are cleared later by Normalize.
func Ptr[T any](v T) *T {
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var timeType = reflect.TypeOf(time.Time{})

// Normalize returns a copy of offer in which every attribute pointing at an
// empty value (zero number, empty string, "[]", zero time) is nil.
// The input is left untouched.
func Normalize[T Offer](offer T) T {
	v := reflect.ValueOf(offer)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return offer
	}

	cp := reflect.New(v.Elem().Type())
	cp.Elem().Set(v.Elem())
	normalizeStruct(cp.Elem())
	return cp.Interface().(T)
}

func normalizeStruct(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.Struct:
			if f.Type() != timeType {
				normalizeStruct(f)
			}
		case reflect.Pointer:
			if !f.IsNil() && isEmptyValue(f.Elem()) {
				f.Set(reflect.Zero(f.Type()))
			}
		}
	}
}

func isEmptyValue(v reflect.Value) bool {
	if v.Kind() == reflect.String {
		s := v.String()
		return s == "" || s == "[]"
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).IsZero()
	}
	return v.IsZero()
}

// Column is one flattened offer attribute.
type Column struct {
	Name  string
	Value any
}

// Columns flattens an offer into its `db`-tagged attributes, base attributes first.
// Nil pointers are returned as untyped nil so drivers write NULL.
func Columns(offer Offer) []Column {
	v := reflect.ValueOf(offer)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var cols []Column
	collectColumns(v, &cols)
	return cols
}

func collectColumns(v reflect.Value, cols *[]Column) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		f := v.Field(i)
		if sf.Anonymous && f.Kind() == reflect.Struct {
			collectColumns(f, cols)
			continue
		}
		name := sf.Tag.Get("db")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		var value any
		if f.Kind() == reflect.Pointer {
			if !f.IsNil() {
				value = f.Elem().Interface()
			}
		} else {
			value = f.Interface()
		}
		*cols = append(*cols, Column{Name: name, Value: value})
	}
}
