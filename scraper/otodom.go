package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rea_scraper/models"
)

const (
	otodomBaseURL      = "https://www.otodom.pl/"
	otodomOfferBaseURL = "https://www.otodom.pl/pl/oferta/"
)

var otodomFamily = &portalFamily{
	portal:    models.PortalOtodom,
	baseURL:   otodomBaseURL,
	pageParam: "page",
	searchPaths: map[models.Category]string{
		models.CategoryLands:      "pl/oferty/sprzedaz/dzialka/cala-polska",
		models.CategoryHouses:     "pl/oferty/sprzedaz/dom/cala-polska",
		models.CategoryApartments: "pl/oferty/sprzedaz/mieszkanie/cala-polska",
	},
	extractURLs: otodomSearchURLs,
}

var (
	errOffersScriptMissing = errors.New("offers script not found on the search page")
	errOffersJSONInvalid   = errors.New("offers search JSON invalid (keys not found)")
)

// otodomSearchURLs reads the offer slugs from the first embedded JSON script.
func otodomSearchURLs(doc *goquery.Document) ([]string, error) {
	script := doc.Find(`script[type="application/json"]`).First()
	if script.Length() == 0 {
		return nil, errOffersScriptMissing
	}

	var payload struct {
		Props struct {
			PageProps struct {
				Data *struct {
					SearchAds *struct {
						Items []struct {
							Slug string `json:"slug"`
						} `json:"items"`
					} `json:"searchAds"`
				} `json:"data"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return nil, fmt.Errorf("decode offers script: %w", err)
	}

	data := payload.Props.PageProps.Data
	if data == nil || data.SearchAds == nil {
		return nil, errOffersJSONInvalid
	}

	urls := make([]string, 0, len(data.SearchAds.Items))
	for _, item := range data.SearchAds.Items {
		if item.Slug == "" {
			continue
		}
		urls = append(urls, resolve(otodomOfferBaseURL, item.Slug))
	}
	return urls, nil
}

// otodomAd is the "ad" object embedded in every offer page.
type otodomAd struct {
	ID                 int64                `json:"id"`
	PublicID           string               `json:"publicId"`
	Slug               string               `json:"slug"`
	URL                string               `json:"url"`
	Title              string               `json:"title"`
	AdvertiserType     string               `json:"advertiserType"`
	AdvertType         string               `json:"advertType"`
	CreatedAt          string               `json:"createdAt"`
	Description        string               `json:"description"`
	Market             string               `json:"market"`
	Features           []any                `json:"features"`
	FeaturesByCategory []otodomFeatureGroup `json:"featuresByCategory"`
	Location           otodomLocation       `json:"location"`
	Target             otodomTarget         `json:"target"`
}

type otodomFeatureGroup struct {
	Label  string `json:"label"`
	Values []any  `json:"values"`
}

type otodomLocation struct {
	Address struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		County struct {
			Code string `json:"code"`
		} `json:"county"`
		Province struct {
			Code string `json:"code"`
		} `json:"province"`
	} `json:"address"`
	Coordinates struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"coordinates"`
}

// otodomAdFromDocument extracts the ad and checks it is a Polish sale offer.
func otodomAdFromDocument(doc *goquery.Document) (*otodomAd, error) {
	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return nil, invalidOffer("page does not contain valid offer json")
	}

	var payload struct {
		Props struct {
			PageProps struct {
				Ad *otodomAd `json:"ad"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
		return nil, invalidOffer("page does not contain valid offer json")
	}
	ad := payload.Props.PageProps.Ad
	if ad == nil || ad.Target == nil {
		return nil, invalidOffer("page does not contain valid offer json")
	}

	if ad.Target.str("Country") != "Polska" {
		return nil, invalidOffer("offer from another country")
	}
	if ad.Target.str("OfferType") != "sprzedaz" {
		return nil, invalidOffer("not a sales offer")
	}
	return ad, nil
}

func (ad *otodomAd) baseOffer(scrapedAt time.Time) (models.OtodomOffer, error) {
	price, err := ad.Target.requiredNumber("Price")
	if err != nil {
		return models.OtodomOffer{}, err
	}
	createdAt, err := parseCreatedAt(ad.CreatedAt)
	if err != nil {
		return models.OtodomOffer{}, err
	}

	addr := ad.Location.Address
	return models.OtodomOffer{
		NumberID:       models.Ptr(ad.ID),
		ShortID:        models.Ptr(ad.PublicID),
		LongID:         models.Ptr(ad.Slug),
		URL:            models.Ptr(ad.URL),
		Title:          models.Ptr(ad.Title),
		Price:          models.Ptr(int(price)),
		AdvertiserType: models.Ptr(ad.AdvertiserType),
		AdvertType:     models.Ptr(ad.AdvertType),
		UTCCreatedAt:   createdAt,
		UTCScrapedAt:   models.Ptr(scrapedAt),
		Description:    models.Ptr(htmlToText(ad.Description)),
		City:           models.Ptr(addr.City.Name),
		Subregion:      models.Ptr(addr.County.Code),
		Province:       models.Ptr(addr.Province.Code),
		Location:       ad.Target.joined("Location"),
		Latitude:       ad.Location.Coordinates.Latitude,
		Longitude:      ad.Location.Coordinates.Longitude,
	}, nil
}

// featuresList renders the flat feature list as "a|b|c".
func (ad *otodomAd) featuresList() *string {
	if ad.Features == nil {
		return nil
	}
	s := strings.Join(stringify(ad.Features), "|")
	return &s
}

// featuresJSON renders feature groups as {"label": [values]}.
func (ad *otodomAd) featuresJSON() *string {
	if ad.FeaturesByCategory == nil {
		return nil
	}
	groups := make(map[string][]any, len(ad.FeaturesByCategory))
	for _, g := range ad.FeaturesByCategory {
		groups[g.Label] = g.Values
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(groups); err != nil {
		return nil
	}
	s := strings.TrimSpace(buf.String())
	return &s
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseCreatedAt keeps the wall clock and drops the offset.
func parseCreatedAt(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
			return &wall, nil
		}
	}
	return nil, fmt.Errorf("parse createdAt %q", s)
}

// otodomTarget is the loosely typed "target" map: values are strings, numbers
// or lists of strings depending on the attribute.
type otodomTarget map[string]any

func (t otodomTarget) str(key string) string {
	s, _ := t[key].(string)
	return s
}

func (t otodomTarget) list(key string) []string {
	raw, ok := t[key].([]any)
	if !ok {
		return nil
	}
	return stringify(raw)
}

func stringify(raw []any) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// joined renders a list attribute as "a|b|c"; absent attributes yield nil.
func (t otodomTarget) joined(key string) *string {
	switch v := t[key].(type) {
	case []any:
		s := strings.Join(t.list(key), "|")
		return &s
	case string:
		return &v
	default:
		return nil
	}
}

func (t otodomTarget) number(key string) (float64, bool) {
	switch v := t[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		return otodomTarget{key: v[0]}.number(key)
	default:
		return 0, false
	}
}

func (t otodomTarget) requiredNumber(key string) (float64, error) {
	n, ok := t.number(key)
	if !ok {
		return 0, fmt.Errorf("target %s missing or not numeric", key)
	}
	return n, nil
}

// optionalInt truncates like a float-to-int cast; unparseable values yield nil.
func (t otodomTarget) optionalInt(key string) *int {
	n, ok := t.number(key)
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}
