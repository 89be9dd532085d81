package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ETTyler/football/controller"
	"github.com/go-chi/chi/v5"
	"github.com/unrolled/render"
)

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// userSearchHandler never fails: bad input yields empty buckets.
func userSearchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var exclude []string
		for _, id := range strings.Split(q.Get("exclude"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				exclude = append(exclude, id)
			}
		}

		buckets := ctrl.SearchUsersWithAvailability(r.Context(), q.Get("q"), q.Get("date"), exclude)
		render.JSON(w, http.StatusOK, buckets)
	}
}

func getAvailabilityHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, ctrl.GetUserAvailability(r.Context(), currentUser(r).ID))
	}
}

func setAvailabilityHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := strconv.Atoi(chi.URLParam(r, "day"))
		if err != nil {
			renderError(render, w, r, controller.ErrInvalidDay, "Failed to save availability")
			return
		}
		var req availabilityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			renderError(render, w, r, err, "Failed to save availability")
			return
		}
		if req.Available == nil {
			renderBadRequest(render, w, "Failed to save availability: available is required")
			return
		}

		userID := currentUser(r).ID
		if err := ctrl.SetUserAvailability(r.Context(), userID, day, *req.Available); err != nil {
			renderError(render, w, r, err, "Failed to save availability")
			return
		}
		render.JSON(w, http.StatusOK, ctrl.GetUserAvailability(r.Context(), userID))
	}
}

func availableUsersHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := ctrl.AvailableUsersForDate(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			renderError(render, w, r, err, "Failed to load available users")
			return
		}
		render.JSON(w, http.StatusOK, users)
	}
}
