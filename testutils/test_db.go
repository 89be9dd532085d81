package testutils

import (
	"context"
	"time"

	"github.com/ETTyler/football/containers"
	"github.com/ETTyler/football/db"
	"github.com/itbasis/go-clock"
	"github.com/rs/zerolog/log"
)

// TestStart is where the mock clock of a TestDB starts.
var TestStart = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type TestDB struct {
	container *containers.DBContainer
	DB        db.DB
	Clock     *clock.Mock
}

// NewTestDB starts a PostgreSQL container and applies the schema to it.
func NewTestDB() *TestDB {
	container := containers.NewDBContainer()
	connString := container.ConnectionString()

	if err := db.Migrate(connString); err != nil {
		container.Shutdown()
		log.Fatal().Err(err).Msg("error migrating db in test container")
	}

	clock := clock.NewMock()
	clock.Set(TestStart)

	d, err := db.New(context.Background(), connString, clock)
	if err != nil {
		container.Shutdown()
		log.Fatal().Err(err).Msg("error connecting to db in test container")
	}

	return &TestDB{
		container: container,
		DB:        d,
		Clock:     clock,
	}
}

func (db *TestDB) Shutdown() {
	db.container.Shutdown()
}
