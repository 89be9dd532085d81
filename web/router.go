package web

import (
	"time"

	"github.com/ETTyler/football/controller"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/render"
)

func getRouter(ctrl controller.C, render *render.Render, cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	sessions := &sessionCookies{secure: cfg.CookieSecure}
	upgrader := newUpgrader(cfg.AllowedOrigins)

	r.Route("/api", func(r chi.Router) {
		// The notification stream stays open, so it is kept out of the
		// request timeout below.
		r.With(requireSession(ctrl, render)).Get("/notifications/ws", notificationStreamHandler(ctrl, upgrader))

		r.Group(func(r chi.Router) {
			// Set a timeout value on the request context (ctx), that will signal
			// through ctx.Done() that the request has timed out and further
			// processing should be stopped.
			r.Use(middleware.Timeout(10 * time.Second))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", signUpHandler(ctrl, render, sessions))
				r.Post("/signin", signInHandler(ctrl, render, sessions))
				r.Post("/signout", signOutHandler(sessions))
				r.Get("/oauth/start", oauthStartHandler(ctrl, render))
				r.Get("/oauth/callback", oauthCallbackHandler(ctrl, render, sessions, cfg.SignInRedirect))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireSession(ctrl, render))

				r.Get("/me", meHandler(render))
				r.Get("/dashboard", dashboardHandler(ctrl, render))

				r.Route("/matches", func(r chi.Router) {
					r.Get("/", listMatchesHandler(ctrl, render))
					r.Post("/", createMatchHandler(ctrl, render))

					r.Route("/{matchID}", func(r chi.Router) {
						r.Get("/", getMatchHandler(ctrl, render))
						r.Put("/", updateMatchHandler(ctrl, render))
						r.Delete("/", deleteMatchHandler(ctrl, render))
						r.Get("/participants", participantsHandler(ctrl, render))
						r.Post("/join", joinMatchHandler(ctrl, render))
						r.Post("/leave", leaveMatchHandler(ctrl, render))
						r.Post("/invitations", inviteHandler(ctrl, render))
						r.Get("/invitees/search", inviteeSearchHandler(ctrl, render))
					})
				})

				r.Get("/users/search", userSearchHandler(ctrl, render))

				r.Route("/availability", func(r chi.Router) {
					r.Get("/", getAvailabilityHandler(ctrl, render))
					r.Put("/{day}", setAvailabilityHandler(ctrl, render))
					r.Get("/users", availableUsersHandler(ctrl, render))
				})

				r.Route("/invitations", func(r chi.Router) {
					r.Get("/", listInvitationsHandler(ctrl, render))
					r.Post("/{invitationID}/respond", respondInvitationHandler(ctrl, render))
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", listNotificationsHandler(ctrl, render))
					r.Get("/unread-count", unreadCountHandler(ctrl, render))
					r.Post("/read-all", markAllReadHandler(ctrl, render))
					r.Post("/{notificationID}/read", markReadHandler(ctrl, render))
					r.Delete("/{notificationID}", deleteNotificationHandler(ctrl, render))
				})

				r.Route("/locations", func(r chi.Router) {
					r.Get("/search", locationSearchHandler(ctrl, render))
					r.Get("/reverse", reverseGeocodeHandler(ctrl, render))
				})
			})
		})
	})

	return r
}
