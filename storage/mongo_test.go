package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"rea_scraper/models"
)

func TestOfferDocument_ParsesEmbeddedJSON(t *testing.T) {
	offer := &models.OtodomLandOffer{
		OtodomOffer: models.OtodomOffer{
			URL:   models.Ptr("https://www.otodom.pl/pl/oferta/dzialka-ID1"),
			Title: models.Ptr("[Okazja] działka"),
		},
		LandFeatures: models.Ptr(`{"Media":["prąd","woda"]}`),
		Vicinity:     models.Ptr("forest|lake"),
	}

	doc := offerDocument(offer)
	m := doc.Map()

	features, ok := m["land_features"].(map[string]any)
	require.True(t, ok, "feature groups become a nested document")
	assert.Equal(t, []any{"prąd", "woda"}, features["Media"])
	assert.Equal(t, "[Okazja] działka", m["title"], "strings that are not JSON stay as they are")
	assert.Equal(t, "forest|lake", m["vicinity"])
	assert.Nil(t, m["price"])
	assert.Equal(t, "number_id", doc[0].Key)
}

func TestOfferDocument_MarshalsToBSON(t *testing.T) {
	offer := &models.DomiportaApartmentOffer{
		DomiportaOffer: models.DomiportaOffer{URL: models.Ptr("u"), Price: models.Ptr(649000)},
		Area:           models.Ptr(48.2),
	}

	data, err := bson.Marshal(offerDocument(offer))
	require.NoError(t, err)

	var back bson.M
	require.NoError(t, bson.Unmarshal(data, &back))
	assert.Equal(t, "u", back["url"])
	assert.EqualValues(t, 649000, back["price"])
	assert.Equal(t, 48.2, back["area"])
}
