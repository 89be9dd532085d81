package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ETTyler/football/controller"
	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/geocode"
	"github.com/ETTyler/football/notify"
	"github.com/ETTyler/football/web"
	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("error loading .env file")
	}
	setupLogging()

	connString := os.Getenv("POSTGRES_CONN_STR")
	if connString == "" {
		log.Fatal().Msg("POSTGRES_CONN_STR is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	portNum := 3000 // 3000 is the default
	port := os.Getenv("PORT")
	if port != "" {
		portNum, err = strconv.Atoi(port)
		if err != nil {
			log.Fatal().Err(err).Msg("error parsing port number")
		}
	}

	retention := controller.DefaultNotificationRetention
	if r := os.Getenv("NOTIFICATION_RETENTION"); r != "" {
		retention, err = time.ParseDuration(r)
		if err != nil {
			log.Fatal().Err(err).Msg("error parsing NOTIFICATION_RETENTION")
		}
	}

	oauthConfig, userInfoURL, err := oauthFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("error reading oauth settings")
	}

	if err := db.Migrate(connString); err != nil {
		log.Fatal().Err(err).Msg("error migrating the database")
	}

	clock := clock.New()
	db, err := db.New(context.Background(), connString, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to DB")
	}

	geocoder := geocode.New(os.Getenv("GEOCODER_URL"))
	hub := notify.NewHub(notify.DefaultBuffer)

	ctrl, err := controller.New(clock, db, geocoder, hub, controller.Config{
		JWTSecret:             []byte(jwtSecret),
		OAuth:                 oauthConfig,
		UserInfoURL:           userInfoURL,
		NotificationRetention: retention,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating a new controller")
	}

	server, err := web.NewServer(web.Config{
		Port:           portNum,
		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",
		AllowedOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:3000")),
		SignInRedirect: os.Getenv("SIGNIN_REDIRECT"),
	}, ctrl)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating new web server")
	}

	shutdown := make(chan bool)
	wg := &sync.WaitGroup{}

	// Setup a handler to catch ctrl-c signals and properly shutdown everything.
	intChannel := make(chan os.Signal, 2)
	signal.Notify(intChannel, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-intChannel
		close(shutdown)

		if err := waitTimeout(wg, 10*time.Second); err != nil {
			log.Error().Msg("timed out waiting for proper shutdown")
			os.Exit(255)
		}
	}()

	// Delete old read notifications once a day
	wg.Add(1)
	go ctrl.RunPeriodicNotificationCleanup(24*time.Hour, shutdown, wg)

	// Start the web server
	wg.Add(1)
	go server.ListenAndServe(shutdown, wg)

	// Wait for everything to stop.
	wg.Wait()
	log.Info().Msg("server shutdown")
}

// setupLogging uses LOG_LEVEL (default info) and writes human readable
// output when LOG_PRETTY is true.
func setupLogging() {
	level, err := zerolog.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing LOG_LEVEL")
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}

// oauthFromEnv returns nil when no OAuth settings are present. Setting only
// some of them is an error.
func oauthFromEnv() (*oauth2.Config, string, error) {
	keys := []string{
		"OAUTH_CLIENT_ID",
		"OAUTH_CLIENT_SECRET",
		"OAUTH_AUTH_URL",
		"OAUTH_TOKEN_URL",
		"OAUTH_USERINFO_URL",
		"OAUTH_REDIRECT_URL",
	}

	values := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			values[k] = v
		} else {
			missing = append(missing, k)
		}
	}

	if len(values) == 0 {
		return nil, "", nil
	}
	if len(missing) > 0 {
		return nil, "", errors.New("missing " + strings.Join(missing, ", "))
	}

	cfg := &oauth2.Config{
		ClientID:     values["OAUTH_CLIENT_ID"],
		ClientSecret: values["OAUTH_CLIENT_SECRET"],
		Endpoint: oauth2.Endpoint{
			AuthURL:  values["OAUTH_AUTH_URL"],
			TokenURL: values["OAUTH_TOKEN_URL"],
		},
		RedirectURL: values["OAUTH_REDIRECT_URL"],
		Scopes:      []string{"openid", "email", "profile"},
	}
	return cfg, values["OAUTH_USERINFO_URL"], nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var result []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) error {
	c := make(chan any)
	go func() {
		defer close(c)
		wg.Wait()
	}()

	select {
	case <-c:
		return nil // completed normally
	case <-time.After(timeout):
		return errors.New("timed out waiting")
	}
}
