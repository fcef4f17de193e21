package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rea_scraper/models"
)

func TestMaskConnectionString(t *testing.T) {
	assert.Equal(t, "postgres://rea:xxxxx@db:5432/offers", maskConnectionString("postgres://rea:secret@db:5432/offers"))
	assert.Equal(t, "http://proxy:3128", maskConnectionString("http://proxy:3128"))
	assert.Equal(t, "not a url", maskConnectionString("not a url"))
}

func TestJobFlags(t *testing.T) {
	portal, category, mode, err := newJobFlags("search").parse([]string{"-portal", "otodom", "-category", "Houses", "-mode", "2"})
	require.NoError(t, err)
	assert.Equal(t, models.PortalOtodom, portal)
	assert.Equal(t, models.CategoryHouses, category)
	assert.Equal(t, models.ModeProd, mode)

	_, _, mode, err = newJobFlags("search").parse([]string{"-portal", "domiporta", "-category", "lands"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeTest, mode)

	_, _, _, err = newJobFlags("search").parse([]string{"-portal", "otodom"})
	assert.ErrorContains(t, err, "required")

	_, _, _, err = newJobFlags("search").parse([]string{"-portal", "otodom", "-category", "lands", "-mode", "5"})
	assert.ErrorContains(t, err, "unknown scraping mode")
}
