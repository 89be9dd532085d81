package model

import "fmt"

type Location struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
}

// CoordinatesLabel is the label used for a point the geocoder could not name.
func CoordinatesLabel(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
