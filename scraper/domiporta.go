package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rea_scraper/models"
)

const domiportaBaseURL = "https://www.domiporta.pl"

var domiportaFamily = &portalFamily{
	portal:    models.PortalDomiporta,
	baseURL:   domiportaBaseURL,
	pageParam: "PageNumber",
	searchPaths: map[models.Category]string{
		models.CategoryLands:      "dzialki-budowlane/sprzedam",
		models.CategoryHouses:     "dom/sprzedam",
		models.CategoryApartments: "mieszkanie/sprzedam",
	},
	extractURLs: domiportaSearchURLs,
}

func domiportaSearchURLs(doc *goquery.Document) ([]string, error) {
	var urls []string
	doc.Find("article.sneakpeak").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("data-href"); ok && href != "" {
			urls = append(urls, resolve(domiportaBaseURL, href))
		}
	})
	return urls, nil
}

// domiportaFeatures is the name -> value table from the offer's feature list.
type domiportaFeatures map[string]string

func readDomiportaFeatures(doc *goquery.Document) domiportaFeatures {
	features := domiportaFeatures{}
	doc.Find("ul.features__list-2").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		name := strings.TrimSpace(li.Find("span.features__item_name").First().Text())
		value := strings.TrimSpace(li.Find("span.features__item_value").First().Text())
		if name != "" {
			features[name] = value
		}
	})
	return features
}

func (f domiportaFeatures) optional(name string) *string {
	v, ok := f[name]
	if !ok {
		return nil
	}
	return &v
}

func (f domiportaFeatures) price() (int, error) {
	v, ok := f["Cena"]
	if !ok {
		return 0, fmt.Errorf("price not listed")
	}
	return parsePrice(v)
}

// intValue parses an optional feature; a present but malformed value is an error.
func (f domiportaFeatures) intValue(name string, parse func(string) (int, error)) (*int, error) {
	v, ok := f[name]
	if !ok {
		return nil, nil
	}
	n, err := parse(v)
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", name, err)
	}
	return &n, nil
}

func (f domiportaFeatures) floatValue(name string) (*float64, error) {
	v, ok := f[name]
	if !ok {
		return nil, nil
	}
	n, err := parseArea(v)
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", name, err)
	}
	return &n, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// domiportaBaseOffer reads the microdata shared by every category and rejects
// offers located outside Poland.
func domiportaBaseOffer(doc *goquery.Document, features domiportaFeatures, scrapedAt time.Time) (models.DomiportaOffer, error) {
	var base models.DomiportaOffer

	country, ok := doc.Find(`meta[itemprop="addressCountry"]`).First().Attr("content")
	if !ok {
		return base, invalidOffer("page does not contain an address country")
	}
	if country != "Polska" {
		return base, invalidOffer("offer from another country")
	}

	price, err := features.price()
	if err != nil {
		return base, err
	}

	coords := map[string]float64{}
	var coordErr error
	doc.Find(`span[itemprop="geo"]`).First().Find("meta").Each(func(_ int, m *goquery.Selection) {
		prop, _ := m.Attr("itemprop")
		content, _ := m.Attr("content")
		if prop == "" || coordErr != nil {
			return
		}
		v, err := parseCoordinate(content)
		if err != nil {
			coordErr = err
			return
		}
		coords[prop] = v
	})
	if coordErr != nil {
		return base, coordErr
	}
	lat, okLat := coords["latitude"]
	lng, okLng := coords["longitude"]
	if !okLat || !okLng {
		return base, fmt.Errorf("coordinates not found")
	}

	numberID, ok := doc.Find("div.detials_bar_data").First().Find(`input[type="hidden"]`).First().Attr("value")
	if !ok {
		return base, fmt.Errorf("offer number not found")
	}
	canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	if !ok {
		return base, fmt.Errorf("canonical url not found")
	}
	title := doc.Find("h1").First().Find("span").First()
	if title.Length() == 0 {
		return base, fmt.Errorf("title not found")
	}
	province, _ := doc.Find(`meta[itemprop="addressRegion"]`).First().Attr("content")

	base = models.DomiportaOffer{
		NumberID:     models.Ptr(numberID),
		URL:          models.Ptr(canonical),
		Title:        models.Ptr(collapseSpaces(title.Text())),
		Price:        models.Ptr(price),
		UTCScrapedAt: models.Ptr(scrapedAt),
		Description:  models.Ptr(cleanText(doc.Find("div.description__panel").First().Text())),
		City:         models.Ptr(doc.Find(`span[itemprop="addressLocality"]`).First().Text()),
		Province:     models.Ptr(province),
		Latitude:     models.Ptr(lat),
		Longitude:    models.Ptr(lng),
	}
	return base, nil
}
