package testutils

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	FakeGeocoderLat     = 51.5432
	FakeGeocoderLon     = -0.0312
	FakeGeocoderAddress = "Hackney Marshes, Homerton Road, London, E9 5PF, United Kingdom"
)

// FakeGeocoderServer answers a small subset of the Nominatim API.
type FakeGeocoderServer struct {
	s *httptest.Server
}

func NewFakeGeocoderServer() *FakeGeocoderServer {
	r := chi.NewRouter()
	r.Use(requireUserAgent)
	r.Get("/search", geocodeSearchHandler)
	r.Get("/reverse", geocodeReverseHandler)

	return &FakeGeocoderServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeGeocoderServer) Close() {
	f.s.Close()
}

func (f *FakeGeocoderServer) URL() string {
	return f.s.URL
}

// Nominatim rejects anonymous clients.
func requireUserAgent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() == "" || strings.HasPrefix(r.UserAgent(), "Go-http-client") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func geocodeSearchHandler(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Query().Get("format") != "json":
		w.WriteHeader(http.StatusBadRequest)
	case strings.Contains(q, "broken"):
		w.WriteHeader(http.StatusInternalServerError)
	case strings.Contains(q, "hackney"):
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[
			{"place_id": 1, "display_name": "Hackney Marshes, Homerton Road, London, E9 5PF, United Kingdom", "lat": "51.5432", "lon": "-0.0312"},
			{"place_id": 2, "display_name": "Hackney Wick, London, United Kingdom", "lat": "51.5434", "lon": "-0.0250"},
			{"place_id": 3, "display_name": "Bad coordinates", "lat": "north", "lon": "-0.0250"}
		]`))
	default:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("[]"))
	}
}

func geocodeReverseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("lat") == "51.5432" && r.URL.Query().Get("lon") == "-0.0312" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"place_id": 1, "display_name": "` + FakeGeocoderAddress + `"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"error": "Unable to geocode"}`))
}
