package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ETTyler/football/controller"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type Config struct {
	Port int
	// Marks the session cookie Secure. Enable when served over https.
	CookieSecure bool
	// Origins allowed to call the API with credentials and to open the
	// notification stream.
	AllowedOrigins []string
	// Where the browser lands after an OAuth sign in.
	SignInRedirect string
}

type Server struct {
	server *http.Server
}

func NewServer(cfg Config, ctrl controller.C) (*Server, error) {
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	s := &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           newHandler(cfg, ctrl),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	return s, nil
}

// newHandler builds the full handler chain: CORS in front of the router.
func newHandler(cfg Config, ctrl controller.C) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(getRouter(ctrl, newRender(), cfg))
}

func (s *Server) ListenAndServe(shutdown chan bool, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()

		// Wait for the shutdown signal and safely close the server.
		<-shutdown

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("fatal error shutting down server")
		}
	}()

	log.Info().Str("addr", s.server.Addr).Msg("web server is listening")
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("fatal error with server")
	}
}

func newRender() *render.Render {
	return render.New(render.Options{
		// Notes and locations are user text, keep "&" and friends readable.
		UnEscapeHTML: true,
	})
}
