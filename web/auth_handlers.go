package web

import (
	"net/http"

	"github.com/ETTyler/football/controller"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func signUpHandler(ctrl controller.C, render *render.Render, sessions *sessionCookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := decodeJSON(w, r, &req); err != nil {
			renderError(render, w, r, err, "Failed to sign up")
			return
		}

		u, err := ctrl.SignUp(r.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			renderError(render, w, r, err, "Failed to sign up")
			return
		}

		session, err := ctrl.IssueSession(u)
		if err != nil {
			renderError(render, w, r, err, "Failed to sign up")
			return
		}
		sessions.set(w, session)
		render.JSON(w, http.StatusCreated, session)
	}
}

func signInHandler(ctrl controller.C, render *render.Render, sessions *sessionCookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := decodeJSON(w, r, &req); err != nil {
			renderError(render, w, r, err, "Failed to sign in")
			return
		}

		u, err := ctrl.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			renderError(render, w, r, err, "Failed to sign in")
			return
		}

		session, err := ctrl.IssueSession(u)
		if err != nil {
			renderError(render, w, r, err, "Failed to sign in")
			return
		}
		sessions.set(w, session)
		render.JSON(w, http.StatusOK, session)
	}
}

func signOutHandler(sessions *sessionCookies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, currentUser(r))
	}
}

func oauthStartHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := ctrl.OAuthStart()
		if err != nil {
			renderError(render, w, r, err, "Failed to start sign in")
			return
		}

		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}

func oauthCallbackHandler(ctrl controller.C, render *render.Render, sessions *sessionCookies, redirect string) http.HandlerFunc {
	if redirect == "" {
		redirect = "/"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		if e := params.Get("error"); e != "" {
			log.Warn().Str("error", e).Msg("oauth provider returned an error")
			renderBadRequest(render, w, "Failed to sign in: "+e)
			return
		}

		u, err := ctrl.OAuthSignIn(r.Context(), params.Get("state"), params.Get("code"))
		if err != nil {
			renderError(render, w, r, err, "Failed to sign in")
			return
		}

		session, err := ctrl.IssueSession(u)
		if err != nil {
			renderError(render, w, r, err, "Failed to sign in")
			return
		}
		sessions.set(w, session)
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}
