package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/ETTyler/football/db/mockdb"
	"github.com/ETTyler/football/geocode/mockgeocode"
	"github.com/ETTyler/football/model"
	"github.com/stretchr/testify/mock"
)

func TestReverseGeocode(t *testing.T) {
	tests := map[string]struct {
		lat      float64
		lon      float64
		name     string
		geoErr   error
		expected string
		err      error
	}{
		"named":        {lat: 51.5432, lon: -0.0312, name: "Hackney Marshes", expected: "Hackney Marshes"},
		"lookup error": {lat: 51.5432, lon: -0.0312, geoErr: errors.New("timeout"), expected: "51.543200, -0.031200"},
		"no name":      {lat: 51.5432, lon: -0.0312, name: "", expected: "51.543200, -0.031200"},
		"out of range": {lat: 100, lon: 0, err: ErrInvalidInput},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			geocoder := &mockgeocode.Client{}
			ctrl := controllerWith(t, mockClock(), &mockdb.DB{}, geocoder, Config{})
			geocoder.On("Reverse", mock.Anything, tc.lat, tc.lon).Return(tc.name, tc.geoErr)

			res, err := ctrl.ReverseGeocode(context.Background(), tc.lat, tc.lon)
			if !errors.Is(err, tc.err) {
				t.Fatalf("unexpected err value, wanted: '%v', got: '%v'", tc.err, err)
			}
			if res != tc.expected {
				t.Errorf("expected '%s', got '%s'", tc.expected, res)
			}
		})
	}
}

func TestSearchLocations(t *testing.T) {
	geocoder := &mockgeocode.Client{}
	ctrl := controllerWith(t, mockClock(), &mockdb.DB{}, geocoder, Config{})

	expected := []model.Location{{DisplayName: "Hackney Marshes", Latitude: 51.5432, Longitude: -0.0312}}
	geocoder.On("Search", mock.Anything, "hackney").Return(expected, nil)

	res, err := ctrl.SearchLocations(context.Background(), "hackney")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 1 || res[0].DisplayName != "Hackney Marshes" {
		t.Errorf("unexpected locations: %+v", res)
	}
}

func TestGeocoding_noGeocoder(t *testing.T) {
	ctrl := controllerForTest(t, mockClock(), &mockdb.DB{})

	res, err := ctrl.SearchLocations(context.Background(), "hackney")
	if err != nil || res == nil || len(res) != 0 {
		t.Errorf("expected no locations without a geocoder, got: %v, %v", res, err)
	}

	name, err := ctrl.ReverseGeocode(context.Background(), 1.5, 2.25)
	if err != nil || name != "1.500000, 2.250000" {
		t.Errorf("expected the coordinates label, got: %s, %v", name, err)
	}
}
