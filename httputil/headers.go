package httputil

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

var defaultChoices = map[string][]string{
	"User-Agent": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	},
	"Accept": {
		"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	},
	"Accept-Language": {
		"pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7",
		"pl,en-US;q=0.7,en;q=0.3",
		"en-US,en;q=0.9,pl;q=0.8",
	},
}

// HeaderPool maps a header name to the values it may take. Every request gets
// one randomly chosen value per header.
type HeaderPool struct {
	choices map[string][]string
}

func NewHeaderPool(choices map[string][]string) *HeaderPool {
	return &HeaderPool{choices: choices}
}

func DefaultHeaderPool() *HeaderPool {
	return NewHeaderPool(defaultChoices)
}

// LoadHeaderPool reads a YAML mapping of header name to candidate values.
// A missing file falls back to the built-in pool.
func LoadHeaderPool(path string) (*HeaderPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultHeaderPool(), nil
		}
		return nil, fmt.Errorf("read headers %s: %w", path, err)
	}

	var choices map[string][]string
	if err := yaml.Unmarshal(data, &choices); err != nil {
		return nil, fmt.Errorf("parse headers %s: %w", path, err)
	}
	if len(choices) == 0 {
		return DefaultHeaderPool(), nil
	}
	return NewHeaderPool(choices), nil
}

func (p *HeaderPool) Random() http.Header {
	h := http.Header{}
	for name, values := range p.choices {
		if len(values) == 0 {
			continue
		}
		h.Set(name, values[rand.IntN(len(values))])
	}
	return h
}
