// Package geocode resolves free-text location strings to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

var ErrNoResults = errors.New("no geocoding results")

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Result struct {
	PlaceID  string   `json:"place_id"`
	Address  string   `json:"address"`
	Location Location `json:"location"`
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Geocode returns the best match for a free-text address.
func (g *GoogleProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	resp, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(resp) == 0 {
		return nil, ErrNoResults
	}

	best := resp[0]
	return &Result{
		PlaceID: best.PlaceID,
		Address: best.FormattedAddress,
		Location: Location{
			Lat: best.Geometry.Location.Lat,
			Lng: best.Geometry.Location.Lng,
		},
	}, nil
}
