package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ETTyler/football/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// The participant count is always derived from match_participants, never stored.
var matchColumns = []string{
	"m.id",
	"m.title",
	"to_char(m.match_date, 'YYYY-MM-DD')",
	"left(m.match_time::text, 5)",
	"m.location",
	"m.latitude",
	"m.longitude",
	"m.pitch_type",
	"m.pricing::float8",
	"m.max_players",
	"(SELECT COUNT(*) FROM match_participants mp WHERE mp.match_id = m.id)",
	"m.notes",
	"m.organizer_id",
	"u.full_name",
	"u.email",
	"m.created",
	"m.updated",
}

func selectMatches() sq.SelectBuilder {
	return psql.Select(matchColumns...).
		From("matches m").
		LeftJoin("user_profiles u ON u.id = m.organizer_id")
}

func (db *postgresDB) CreateMatch(ctx context.Context, m *model.Match) error {
	const insertMatch = `INSERT INTO matches (
		id,
		title,
		match_date,
		match_time,
		location,
		latitude,
		longitude,
		pitch_type,
		pricing,
		max_players,
		notes,
		organizer_id,
		created,
		updated
	) VALUES (
		@id,
		@title,
		@date::date,
		@time::time,
		@location,
		@latitude,
		@longitude,
		@pitchType,
		@pricing,
		@maxPlayers,
		@notes,
		@organizerID,
		@created,
		@created
	)`

	// The organizer is the first participant of their own match.
	const insertOrganizer = `INSERT INTO match_participants (id, match_id, user_id, joined)
		VALUES (@id, @matchID, @userID, @joined)`

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	created := db.now()

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	args := namedArgsForMatch(m)
	args["created"] = created
	if _, err := tx.Exec(ctx, insertMatch, args); err != nil {
		return fmt.Errorf("error inserting match: %w", err)
	}

	_, err = tx.Exec(ctx, insertOrganizer, pgx.NamedArgs{
		"id":      uuid.NewString(),
		"matchID": m.ID,
		"userID":  m.OrganizerID,
		"joined":  created,
	})
	if err != nil {
		return fmt.Errorf("error adding organizer to match: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting match transaction: %w", err)
	}

	m.CurrentPlayers = 1
	m.Created = created.Time
	m.Updated = created.Time
	return nil
}

func (db *postgresDB) UpdateMatch(ctx context.Context, m *model.Match) error {
	const update = `UPDATE matches
		SET title=@title,
			match_date=@date::date,
			match_time=@time::time,
			location=@location,
			latitude=@latitude,
			longitude=@longitude,
			pitch_type=@pitchType,
			pricing=@pricing,
			max_players=@maxPlayers,
			notes=@notes,
			updated=@updated
		WHERE id=@id`

	updated := db.now()
	args := namedArgsForMatch(m)
	args["updated"] = updated
	tag, err := db.pool.Exec(ctx, update, args)
	if err != nil {
		return fmt.Errorf("error updating match (%s): %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	m.Updated = updated.Time
	return nil
}

func (db *postgresDB) DeleteMatch(ctx context.Context, id string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM matches WHERE id=@id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting match (%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (db *postgresDB) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	m, err := scanMatch(qRow(ctx, db.pool, selectMatches().Where(sq.Eq{"m.id": id})))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("error scanning match %s: %w", id, err)
	}
	return m, nil
}

func (db *postgresDB) ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error) {
	q := selectMatches()
	if filter.From != "" {
		q = q.Where("m.match_date >= ?::date", filter.From)
	}
	if filter.To != "" {
		q = q.Where("m.match_date <= ?::date", filter.To)
	}
	if filter.PitchType != model.PITCH_UNKNOWN {
		q = q.Where(sq.Eq{"m.pitch_type": string(filter.PitchType)})
	}
	if filter.Search != "" {
		p := containsPattern(filter.Search)
		q = q.Where(sq.Or{
			sq.ILike{"m.title": p},
			sq.ILike{"m.location": p},
			sq.ILike{"m.notes": p},
			sq.ILike{"u.full_name": p},
		})
	}
	return db.listMatches(ctx, q.OrderBy("m.match_date", "m.match_time", "m.id"))
}

func (db *postgresDB) ListOrganizedMatches(ctx context.Context, userID string) ([]model.Match, error) {
	q := selectMatches().
		Where(sq.Eq{"m.organizer_id": userID}).
		OrderBy("m.match_date", "m.match_time", "m.id")
	return db.listMatches(ctx, q)
}

func (db *postgresDB) ListJoinedMatches(ctx context.Context, userID string) ([]model.Match, error) {
	q := selectMatches().
		Join("match_participants p ON p.match_id = m.id").
		Where(sq.Eq{"p.user_id": userID}).
		OrderBy("m.match_date", "m.match_time", "m.id")
	return db.listMatches(ctx, q)
}

func (db *postgresDB) listMatches(ctx context.Context, q sq.SelectBuilder) ([]model.Match, error) {
	rows, err := qQuery(ctx, db.pool, q)
	if err != nil {
		return nil, fmt.Errorf("error running match query: %w", err)
	}
	defer rows.Close()

	results := make([]model.Match, 0, 8)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning match: %w", err)
		}
		results = append(results, *m)
	}
	return results, rows.Err()
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	var result model.Match
	var pitch DBPitchType
	var notes, organizerName, organizerEmail sql.NullString
	var created, updated pgtype.Timestamptz
	err := row.Scan(
		&result.ID,
		&result.Title,
		&result.Date,
		&result.Time,
		&result.Location,
		&result.Latitude,
		&result.Longitude,
		&pitch,
		&result.Pricing,
		&result.MaxPlayers,
		&result.CurrentPlayers,
		&notes,
		&result.OrganizerID,
		&organizerName,
		&organizerEmail,
		&created,
		&updated)
	if err != nil {
		return nil, err
	}

	result.PitchType = pitch.pitchType
	result.Notes = valueOrEmpty(notes)
	if organizerName.Valid {
		result.Organizer = &model.User{
			ID:       result.OrganizerID,
			FullName: organizerName.String,
			Email:    valueOrEmpty(organizerEmail),
		}
	}
	result.Created = created.Time
	result.Updated = updated.Time
	return &result, nil
}

func namedArgsForMatch(m *model.Match) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          m.ID,
		"title":       m.Title,
		"date":        m.Date,
		"time":        m.Time,
		"location":    m.Location,
		"latitude":    m.Latitude,
		"longitude":   m.Longitude,
		"pitchType":   &DBPitchType{pitchType: m.PitchType},
		"pricing":     m.Pricing,
		"maxPlayers":  m.MaxPlayers,
		"notes":       nullString(m.Notes),
		"organizerID": m.OrganizerID,
	}
}

type DBPitchType struct {
	pitchType model.PitchType
}

func (p *DBPitchType) ScanText(v pgtype.Text) error {
	p.pitchType = model.ParsePitchType(v.String)
	return nil
}

func (p *DBPitchType) TextValue() (pgtype.Text, error) {
	return pgtype.Text{
		String: string(p.pitchType),
		Valid:  true,
	}, nil
}
