package httputil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHeaderPool_MissingFallsBack(t *testing.T) {
	pool, err := LoadHeaderPool(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	h := pool.Random()
	assert.Contains(t, defaultChoices["User-Agent"], h.Get("User-Agent"))
	assert.Contains(t, defaultChoices["Accept-Language"], h.Get("Accept-Language"))
}

func TestLoadHeaderPool_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")
	body := "User-Agent:\n  - test-agent/1.0\nDNT:\n  - \"1\"\nReferer: []\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	pool, err := LoadHeaderPool(path)
	require.NoError(t, err)

	h := pool.Random()
	assert.Equal(t, "test-agent/1.0", h.Get("User-Agent"))
	assert.Equal(t, "1", h.Get("DNT"))
	assert.Empty(t, h.Get("Referer"))
	assert.Len(t, h, 2)
}
