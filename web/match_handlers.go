package web

import (
	"net/http"

	"github.com/ETTyler/football/controller"
	"github.com/ETTyler/football/model"
	"github.com/unrolled/render"
)

type createMatchRequest struct {
	model.MatchInput
	InviteeIDs []string `json:"invitee_ids"`
	Message    string   `json:"message"`
}

type inviteRequest struct {
	InviteeIDs []string `json:"invitee_ids"`
	Message    string   `json:"message"`
}

// participationResponse carries the authoritative count after a join or leave.
type participationResponse struct {
	MatchID        string `json:"match_id"`
	Joined         bool   `json:"joined"`
	CurrentPlayers int    `json:"current_players"`
}

func listMatchesHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := model.MatchFilter{
			Dates:  model.ParseDateFilter(q.Get("date")),
			Search: q.Get("q"),
		}
		if pt := q.Get("pitch_type"); pt != "" && pt != "all" {
			filter.PitchType = model.ParsePitchType(pt)
			if filter.PitchType == model.PITCH_UNKNOWN {
				renderBadRequest(render, w, "Failed to load matches: unknown pitch type")
				return
			}
		}

		matches, err := ctrl.ListMatches(r.Context(), filter)
		if err != nil {
			renderError(render, w, r, err, "Failed to load matches")
			return
		}
		render.JSON(w, http.StatusOK, matches)
	}
}

func createMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			renderError(render, w, r, err, "Failed to create match")
			return
		}

		res, err := ctrl.CreateMatch(r.Context(), currentUser(r).ID, req.MatchInput, req.InviteeIDs, req.Message)
		if err != nil {
			renderError(render, w, r, err, "Failed to create match")
			return
		}
		render.JSON(w, http.StatusCreated, res)
	}
}

func getMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to load match details")
			return
		}

		m, err := ctrl.GetMatch(r.Context(), matchID)
		if err != nil {
			renderError(render, w, r, err, "Failed to load match details")
			return
		}
		render.JSON(w, http.StatusOK, m)
	}
}

func updateMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to update match")
			return
		}
		var input model.MatchInput
		if err := decodeJSON(w, r, &input); err != nil {
			renderError(render, w, r, err, "Failed to update match")
			return
		}

		m, err := ctrl.UpdateMatch(r.Context(), currentUser(r).ID, matchID, input)
		if err != nil {
			renderError(render, w, r, err, "Failed to update match")
			return
		}
		render.JSON(w, http.StatusOK, m)
	}
}

func deleteMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to delete match")
			return
		}

		if err := ctrl.DeleteMatch(r.Context(), currentUser(r).ID, matchID); err != nil {
			renderError(render, w, r, err, "Failed to delete match")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func participantsHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to load participants")
			return
		}

		participants, err := ctrl.ListParticipants(r.Context(), matchID)
		if err != nil {
			renderError(render, w, r, err, "Failed to load participants")
			return
		}
		render.JSON(w, http.StatusOK, participants)
	}
}

func joinMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to join match")
			return
		}

		count, err := ctrl.JoinMatch(r.Context(), currentUser(r).ID, matchID)
		if err != nil {
			renderError(render, w, r, err, "Failed to join match")
			return
		}
		render.JSON(w, http.StatusOK, participationResponse{MatchID: matchID, Joined: true, CurrentPlayers: count})
	}
}

func leaveMatchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to leave match")
			return
		}

		count, err := ctrl.LeaveMatch(r.Context(), currentUser(r).ID, matchID)
		if err != nil {
			renderError(render, w, r, err, "Failed to leave match")
			return
		}
		render.JSON(w, http.StatusOK, participationResponse{MatchID: matchID, Joined: false, CurrentPlayers: count})
	}
}

func inviteHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to send invitations")
			return
		}
		var req inviteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			renderError(render, w, r, err, "Failed to send invitations")
			return
		}

		res, err := ctrl.InviteUsers(r.Context(), currentUser(r).ID, matchID, req.InviteeIDs, req.Message)
		if err != nil {
			renderError(render, w, r, err, "Failed to send invitations")
			return
		}
		render.JSON(w, http.StatusOK, res)
	}
}

func inviteeSearchHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			renderError(render, w, r, err, "Failed to search users")
			return
		}

		buckets, err := ctrl.SearchInvitees(r.Context(), currentUser(r).ID, matchID, r.URL.Query().Get("q"))
		if err != nil {
			renderError(render, w, r, err, "Failed to search users")
			return
		}
		render.JSON(w, http.StatusOK, buckets)
	}
}

func dashboardHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := ctrl.Dashboard(r.Context(), currentUser(r).ID)
		if err != nil {
			renderError(render, w, r, err, "Failed to load dashboard")
			return
		}
		render.JSON(w, http.StatusOK, d)
	}
}
