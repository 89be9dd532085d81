package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ETTyler/football/controller"
	"github.com/ETTyler/football/db"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

const maxBodyBytes = 1 << 20

var errBadID = errors.New("not a valid id")

type errorResponse struct {
	Error string `json:"error"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, controller.ErrInvalidInput),
		errors.Is(err, controller.ErrInvalidDay),
		errors.Is(err, controller.ErrMatchInPast),
		errors.Is(err, controller.ErrOrganizerCannotLeave),
		errors.Is(err, controller.ErrInvalidOAuthState),
		errors.Is(err, errBadID):
		return http.StatusBadRequest
	case errors.Is(err, controller.ErrInvalidCredentials),
		errors.Is(err, controller.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, controller.ErrNotOrganizer),
		errors.Is(err, controller.ErrNotInvitee):
		return http.StatusForbidden
	case errors.Is(err, db.ErrMatchNotFound),
		errors.Is(err, db.ErrUserNotFound),
		errors.Is(err, db.ErrInvitationNotFound),
		errors.Is(err, db.ErrNotificationNotFound),
		errors.Is(err, controller.ErrOAuthNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, db.ErrAlreadyJoined),
		errors.Is(err, db.ErrNotJoined),
		errors.Is(err, db.ErrMatchFull),
		errors.Is(err, db.ErrDuplicateInvitation),
		errors.Is(err, db.ErrInvitationNotPending),
		errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// renderError writes {"error": msg}. Client errors get the cause appended to
// msg; server errors are logged and only msg is shown.
func renderError(render *render.Render, w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request", middleware.GetReqID(r.Context())).Str("path", r.URL.Path).Msg(msg)
	} else {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	render.JSON(w, status, errorResponse{Error: msg})
}

func renderBadRequest(render *render.Render, w http.ResponseWriter, msg string) {
	render.JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// idParam reads a uuid path parameter.
func idParam(r *http.Request, name string) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", fmt.Errorf("%w: %s", errBadID, name)
	}
	return id.String(), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body is not valid json", controller.ErrInvalidInput)
	}
	return nil
}
