package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/netx"
)

const DefaultGeocoderBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder calls the Google Geocoding API.
type GoogleGeocoder struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGoogleGeocoder(baseURL, apiKey string, hc *http.Client) *GoogleGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocoderBaseURL
	}
	return &GoogleGeocoder{baseURL: baseURL, apiKey: apiKey, http: hc}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the position of the first result for address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	var out geocodeResponse
	if err := netx.GetJSON(ctx, g.http, g.baseURL+"?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	switch out.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return nil, fmt.Errorf("geocode %q: %w", address, common.ErrNotFound)
	default:
		return nil, fmt.Errorf("%w: geocode status %s %s", common.ErrExternalService, out.Status, out.ErrorMessage)
	}

	if len(out.Results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", address, common.ErrNotFound)
	}

	loc := out.Results[0].Geometry.Location
	return &models.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
