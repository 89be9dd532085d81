package web

import (
	"net/http"
	"strconv"

	"github.com/ETTyler/football/controller"
	"github.com/unrolled/render"
)

type reverseResponse struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
}

func locationSearchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locations, err := ctrl.SearchLocations(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			renderError(render, w, r, err, "Failed to search locations")
			return
		}
		render.JSON(w, http.StatusOK, locations)
	}
}

func reverseGeocodeHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			renderBadRequest(render, w, "Failed to look up location: lat and lon must be numbers")
			return
		}

		name, err := ctrl.ReverseGeocode(r.Context(), lat, lon)
		if err != nil {
			renderError(render, w, r, err, "Failed to look up location")
			return
		}
		render.JSON(w, http.StatusOK, reverseResponse{DisplayName: name, Latitude: lat, Longitude: lon})
	}
}
