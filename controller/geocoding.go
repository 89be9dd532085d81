package controller

import (
	"context"
	"fmt"

	"github.com/ETTyler/football/model"
	"github.com/rs/zerolog/log"
)

func (c *controller) SearchLocations(ctx context.Context, query string) ([]model.Location, error) {
	if c.geocoder == nil {
		return []model.Location{}, nil
	}
	return c.geocoder.Search(ctx, query)
}

// ReverseGeocode names the point, falling back to its coordinates when the
// geocoder cannot.
func (c *controller) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if !model.ValidCoordinates(lat, lon) {
		return "", fmt.Errorf("%w: coordinates are out of range", ErrInvalidInput)
	}
	if c.geocoder == nil {
		return model.CoordinatesLabel(lat, lon), nil
	}

	name, err := c.geocoder.Reverse(ctx, lat, lon)
	if err != nil || name == "" {
		if err != nil {
			log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocoding failed")
		}
		return model.CoordinatesLabel(lat, lon), nil
	}
	return name, nil
}
