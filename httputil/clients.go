package httputil

import (
	"net/http"
	"net/url"
	"time"

	"rea_scraper/config"
)

type Clients struct {
	Scraping *http.Client // optionally proxied, for the portals
}

func NewClients(httpCfg config.HTTPConfig) *Clients {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if httpCfg.ProxyURL != "" {
		if proxyURL, err := url.Parse(httpCfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Clients{
		Scraping: &http.Client{Timeout: timeout, Transport: transport},
	}
}
