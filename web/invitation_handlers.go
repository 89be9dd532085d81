package web

import (
	"net/http"

	"github.com/ETTyler/football/controller"
	"github.com/ETTyler/football/model"
	"github.com/unrolled/render"
)

type respondRequest struct {
	Status string `json:"status"`
}

func listInvitationsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitations, err := ctrl.ListInvitations(r.Context(), currentUser(r).ID)
		if err != nil {
			renderError(render, w, r, err, "Failed to load invitations")
			return
		}
		render.JSON(w, http.StatusOK, invitations)
	}
}

func respondInvitationHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitationID, err := idParam(r, "invitationID")
		if err != nil {
			renderError(render, w, r, err, "Failed to update invitation")
			return
		}
		var req respondRequest
		if err := decodeJSON(w, r, &req); err != nil {
			renderError(render, w, r, err, "Failed to update invitation")
			return
		}
		status, ok := model.ParseInvitationStatus(req.Status)
		if !ok {
			renderBadRequest(render, w, "Failed to update invitation: status must be accepted or declined")
			return
		}

		inv, err := ctrl.RespondToInvitation(r.Context(), currentUser(r).ID, invitationID, status)
		if err != nil {
			renderError(render, w, r, err, "Failed to update invitation")
			return
		}
		render.JSON(w, http.StatusOK, inv)
	}
}
