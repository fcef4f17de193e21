package scraper

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomiportaSearchURLs(t *testing.T) {
	urls, err := domiportaSearchURLs(fixtureDocument(t, "domiporta_search.html"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.domiporta.pl/nieruchomosci/sprzedam-dom-krakow-150m2/154321987",
		"https://www.domiporta.pl/nieruchomosci/sprzedam-dom-skawina-120m2/154321555",
	}, urls)
}

func TestParseDomiportaHouse(t *testing.T) {
	offer, err := parseDomiportaHouse(fixtureDocument(t, "domiporta_house.html"), fixedClock())
	require.NoError(t, err)

	assert.Equal(t, "154321987", *offer.NumberID)
	assert.Equal(t, "https://www.domiporta.pl/nieruchomosci/sprzedam-dom-krakow-150m2/154321987", offer.OfferURL())
	assert.Equal(t, "Dom na sprzedaż Kraków, Bronowice", *offer.Title)
	assert.Equal(t, 1250000, *offer.Price)
	assert.Equal(t, "Przestronny dom z ogrodem w spokojnej okolicy.", *offer.Description)
	assert.Equal(t, "Kraków", *offer.City)
	assert.Equal(t, "małopolskie", *offer.Province)
	assert.InDelta(t, 50.0814, *offer.Latitude, 1e-9)
	assert.InDelta(t, 19.8966, *offer.Longitude, 1e-9)

	assert.InDelta(t, 150.5, *offer.Area, 1e-9)
	assert.Equal(t, 800, *offer.LotArea)
	assert.Equal(t, 5, *offer.NRooms)
	assert.Equal(t, 1998, *offer.BuildYear)
	assert.Equal(t, "wolnostojący", *offer.BuildingType)
	assert.Equal(t, "asfaltowa", *offer.Driveway)
	assert.Equal(t, "prąd, woda, gaz", *offer.Media)
}

func TestParseDomiportaLand(t *testing.T) {
	offer, err := parseDomiportaLand(fixtureDocument(t, "domiporta_land.html"), fixedClock())
	require.NoError(t, err)

	assert.Equal(t, 199000, *offer.Price)
	assert.Equal(t, 1000, *offer.LandArea)
	assert.Equal(t, "prąd", *offer.Media)
	assert.Nil(t, offer.Driveway)
}

func TestParseDomiportaApartment(t *testing.T) {
	offer, err := parseDomiportaApartment(fixtureDocument(t, "domiporta_apartment.html"), fixedClock())
	require.NoError(t, err)

	assert.InDelta(t, 48.2, *offer.Area, 1e-9)
	assert.Equal(t, 2, *offer.NRooms)
	assert.Equal(t, 2015, *offer.BuildYear)
	assert.Equal(t, "Warszawa", *offer.City)
}

func TestParseDomiporta_ForeignOfferIsInvalid(t *testing.T) {
	_, err := parseDomiportaHouse(fixtureDocument(t, "domiporta_foreign.html"), fixedClock())
	require.ErrorIs(t, err, ErrInvalidOffer)
	assert.Contains(t, err.Error(), "another country")
}

func TestParseDomiporta_MissingCountryIsInvalid(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte("<html><body><h1><span>x</span></h1></body></html>")))
	require.NoError(t, err)

	_, err = parseDomiportaLand(doc, fixedClock())
	assert.ErrorIs(t, err, ErrInvalidOffer)
}

func TestParseDomiporta_MalformedFeatureFails(t *testing.T) {
	page := bytes.Replace(loadFixture(t, "domiporta_apartment.html"), []byte(">2015<"), []byte(">ok. 2015<"), 1)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)

	_, err = parseDomiportaApartment(doc, fixedClock())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidOffer)
	assert.Contains(t, err.Error(), "Rok budowy")
}
