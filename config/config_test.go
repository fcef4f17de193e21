package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
env = "staging"

[scraping]
search_delay = "1s"
scrape_delay = "3s"

[cache]
backend = "sqlite"
sqlite_path = "/tmp/cache.db"

[[schedule]]
job = "search"
portal = "otodom"
category = "lands"
mode = 2
cron = "0 */6 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ENV_NAME", "prod-box")
	t.Setenv("DATABASE_URL", "postgres://prod")
	t.Setenv("DATABASE_URL_DEV", "postgres://dev")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod-box", cfg.Env)
	assert.Equal(t, time.Second, cfg.Scraping.SearchDelay)
	assert.Equal(t, 3*time.Second, cfg.Scraping.ScrapeDelay)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.Equal(t, "postgres://prod", cfg.Postgres.URLFor(true))
	assert.Equal(t, "postgres://dev", cfg.Postgres.URLFor(false))
	require.Len(t, cfg.Schedule, 1)
	assert.Equal(t, "0 */6 * * *", cfg.Schedule[0].Cron)
	assert.Equal(t, 2, cfg.Schedule[0].Mode)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Scraping.ScrapeDelay)
	assert.Equal(t, "conf/filters", cfg.Scraping.FiltersDir)
	assert.Equal(t, "rea_dev", cfg.Mongo.DatabaseFor(false))
	assert.Equal(t, "rea", cfg.Mongo.DatabaseFor(true))
}

func TestFilterFiles_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "otodom"), 0755))
	yamlBody := "filters:\n  priceMax: 400000\n  areaMin: 800\nn_pages: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "otodom", "lands.yaml"), []byte(yamlBody), 0644))

	files := NewFilterFiles(dir)
	flt, err := files.Load("OTODOM", "LANDS")
	require.NoError(t, err)
	assert.Equal(t, 3, flt.NPages)
	assert.Equal(t, 400000, flt.Filters["priceMax"])
	assert.Equal(t, 800, flt.Filters["areaMin"])
}

func TestFilterFiles_MissingIsError(t *testing.T) {
	_, err := NewFilterFiles(t.TempDir()).Load("DOMIPORTA", "HOUSES")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFilters_JSONAndDefaults(t *testing.T) {
	flt, err := ParseFilters([]byte(`{"filters": {"RowsPerPage": "30"}}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPages, flt.NPages)
	assert.Equal(t, "30", flt.Filters["RowsPerPage"])

	flt, err = ParseFilters([]byte(`n_pages: 2`))
	require.NoError(t, err)
	assert.NotNil(t, flt.Filters)
}
