package scraper

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rea_scraper/models"
)

func fixtureDocument(t *testing.T, name string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(loadFixture(t, name)))
	require.NoError(t, err)
	return doc
}

func TestOtodomSearchURLs(t *testing.T) {
	urls, err := otodomSearchURLs(fixtureDocument(t, "otodom_search.html"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.otodom.pl/pl/oferta/dzialka-budowlana-wieliczka-ID4pQa1",
		"https://www.otodom.pl/pl/oferta/dzialka-pod-lasem-ID4pQa2",
		"https://www.otodom.pl/pl/oferta/dzialka-budowlana-wieliczka-ID4pQa1",
	}, urls)
}

func TestOtodomSearchURLs_MissingScript(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte("<html><body>captcha</body></html>")))
	require.NoError(t, err)

	_, err = otodomSearchURLs(doc)
	assert.ErrorIs(t, err, errOffersScriptMissing)
}

func TestOtodomSearchURLs_MissingKeys(t *testing.T) {
	page := `<script type="application/json">{"props":{"pageProps":{}}}</script>`
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(page)))
	require.NoError(t, err)

	_, err = otodomSearchURLs(doc)
	assert.ErrorIs(t, err, errOffersJSONInvalid)
}

func TestParseOtodomLand(t *testing.T) {
	scrapedAt := fixedClock()
	offer, err := parseOtodomLand(fixtureDocument(t, "otodom_land.html"), scrapedAt)
	require.NoError(t, err)
	offer = models.Normalize(offer)

	assert.Equal(t, int64(64712001), *offer.NumberID)
	assert.Equal(t, "4pQa1", *offer.ShortID)
	assert.Equal(t, "https://www.otodom.pl/pl/oferta/dzialka-budowlana-wieliczka-ID4pQa1", offer.OfferURL())
	assert.Equal(t, 289000, *offer.Price)
	assert.Equal(t, 1200, *offer.LandArea)
	assert.Equal(t, `{"Media":["prąd","woda"],"Ogrodzenie":["siatka"]}`, *offer.LandFeatures)
	assert.Equal(t, "forest|open_terrain", *offer.Vicinity)
	assert.Equal(t, "Wieliczka", *offer.City)
	assert.Equal(t, "wielicki", *offer.Subregion)
	assert.Equal(t, "malopolskie", *offer.Province)
	assert.Equal(t, "Działka budowlana, media w drodze.", *offer.Description)
	assert.InDelta(t, 49.987, *offer.Latitude, 1e-9)
	assert.Equal(t, time.Date(2024, 2, 9, 18, 12, 44, 0, time.UTC), *offer.UTCCreatedAt)
	assert.Equal(t, scrapedAt, *offer.UTCScrapedAt)
	assert.Nil(t, offer.Location, "empty location is normalized away")
}

func TestParseOtodomHouse(t *testing.T) {
	offer, err := parseOtodomHouse(fixtureDocument(t, "otodom_house.html"), fixedClock())
	require.NoError(t, err)

	assert.Equal(t, "SECONDARY", *offer.Market)
	assert.Equal(t, "detached", *offer.BuildingType)
	assert.Equal(t, `{"Media":["prąd","woda"],"Zabezpieczenia":["monitoring"]}`, *offer.HouseFeatures)
	assert.Equal(t, 600, *offer.LotArea)
	assert.Equal(t, 145, *offer.HouseArea)
	assert.Equal(t, 5, *offer.NRooms)
	assert.Equal(t, 2, *offer.Floors)
	assert.Equal(t, "gas|fireplace", *offer.Heating)
	assert.Equal(t, 2010, *offer.BuildYear)
	assert.Equal(t, "water|electricity", *offer.Media)
	assert.Equal(t, "forest", *offer.Vicinity)
	assert.Equal(t, time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC), *offer.UTCCreatedAt, "wall clock kept, offset dropped")
	assert.Contains(t, *offer.Description, "Dom z ogrodem")
}

func TestParseOtodomApartment(t *testing.T) {
	offer, err := parseOtodomApartment(fixtureDocument(t, "otodom_apartment.html"), fixedClock())
	require.NoError(t, err)

	assert.Equal(t, 720000, *offer.Price)
	assert.Equal(t, "PRIMARY", *offer.Market)
	assert.Equal(t, "ready_to_use", *offer.Status)
	assert.Equal(t, "balkon|winda|piwnica", *offer.ApartmentFeatures)
	assert.Equal(t, 58, *offer.ApartmentArea)
	assert.Equal(t, 2024, *offer.BuildYear)
	assert.Equal(t, 3, *offer.Floor)
	assert.Equal(t, 4, *offer.BuildingFloorsNum)
	assert.Equal(t, "block", *offer.BuildingType)
	assert.Equal(t, 3, *offer.NRooms)
	assert.Equal(t, time.Date(2024, 2, 10, 7, 5, 0, 0, time.UTC), *offer.UTCCreatedAt)
}

func TestParseOtodom_ForeignOfferIsInvalid(t *testing.T) {
	_, err := parseOtodomHouse(fixtureDocument(t, "otodom_foreign.html"), fixedClock())
	require.ErrorIs(t, err, ErrInvalidOffer)
	assert.Contains(t, err.Error(), "another country")
}

func TestParseOtodom_PageWithoutOfferJSON(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(nil))
	require.NoError(t, err)

	_, err = parseOtodomLand(doc, fixedClock())
	assert.ErrorIs(t, err, ErrInvalidOffer)
}

func TestOtodomScraper_ScrapeOfferNormalizes(t *testing.T) {
	offerURL := "https://www.otodom.pl/pl/oferta/dzialka-budowlana-wieliczka-ID4pQa1"
	fetcher := staticFetcher(map[string][]byte{offerURL: loadFixture(t, "otodom_land.html")})

	s, err := NewScraper(models.PortalOtodom, models.CategoryLands, "test", fetcher, nil,
		WithLogger(quietLogger()), WithClock(fixedClock))
	require.NoError(t, err)

	offer, err := s.ScrapeOffer(context.Background(), offerURL)
	require.NoError(t, err)

	land, ok := offer.(*models.OtodomLandOffer)
	require.True(t, ok)
	assert.Nil(t, land.Location)
	assert.Equal(t, models.CategoryLands, offer.Category())
	assert.Equal(t, models.PortalOtodom, offer.Portal())
}
