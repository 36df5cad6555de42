package mercari

import (
	"strings"

	"mercari-search/internal/common/config"
	"mercari-search/internal/common/logger"
)

const (
	searchPath   = "v2/entities:search"
	itemInfoPath = "items/get" // not under v2, matching the live API
)

// API bundles the marketplace endpoints behind one client. It holds no
// per-call state; every search call constructs its own stream and every
// invocation re-fetches from scratch.
type API struct {
	doer           Doer
	searchURL      string
	itemInfoURL    string
	productBaseURL string
	countryCode    string
	logger         logger.Logger
}

func NewAPI(doer Doer, cfg config.MercariConfig, log logger.Logger) *API {
	base := cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &API{
		doer:           doer,
		searchURL:      base + searchPath,
		itemInfoURL:    base + itemInfoPath,
		productBaseURL: cfg.ProductBaseURL,
		countryCode:    cfg.CountryCode,
		logger:         log,
	}
}

// ProductURL returns the public listing page for an identifier.
func (a *API) ProductURL(id string) string {
	return a.productBaseURL + id
}
