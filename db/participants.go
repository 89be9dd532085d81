package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ETTyler/football/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (db *postgresDB) AddParticipant(ctx context.Context, matchID, userID string) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	count, err := db.addParticipant(ctx, tx, matchID, userID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error commiting participant transaction: %w", err)
	}
	return count, nil
}

// addParticipant locks the match row so that concurrent joins cannot push the
// participant count past max_players.
func (db *postgresDB) addParticipant(ctx context.Context, tx pgx.Tx, matchID, userID string) (int, error) {
	const lockMatch = `SELECT max_players FROM matches WHERE id=@matchID FOR UPDATE`
	const state = `SELECT
			COUNT(*),
			COALESCE(BOOL_OR(user_id=@userID), false)
		FROM match_participants WHERE match_id=@matchID`
	const insert = `INSERT INTO match_participants (id, match_id, user_id, joined)
		VALUES (@id, @matchID, @userID, @joined)`

	args := pgx.NamedArgs{
		"matchID": matchID,
		"userID":  userID,
	}

	var maxPlayers int
	if err := tx.QueryRow(ctx, lockMatch, args).Scan(&maxPlayers); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMatchNotFound
		}
		return 0, fmt.Errorf("error locking match %s: %w", matchID, err)
	}

	var count int
	var joined bool
	if err := tx.QueryRow(ctx, state, args).Scan(&count, &joined); err != nil {
		return 0, fmt.Errorf("error counting participants of %s: %w", matchID, err)
	}
	if joined {
		return count, ErrAlreadyJoined
	}
	if count >= maxPlayers {
		return count, ErrMatchFull
	}

	args["id"] = uuid.NewString()
	args["joined"] = db.now()
	if _, err := tx.Exec(ctx, insert, args); err != nil {
		if isUniqueViolation(err) {
			return count, ErrAlreadyJoined
		}
		return 0, fmt.Errorf("error inserting participant: %w", err)
	}
	return count + 1, nil
}

func (db *postgresDB) RemoveParticipant(ctx context.Context, matchID, userID string) (int, error) {
	const remove = `DELETE FROM match_participants WHERE match_id=@matchID AND user_id=@userID`
	const count = `SELECT COUNT(*) FROM match_participants WHERE match_id=@matchID`

	args := pgx.NamedArgs{
		"matchID": matchID,
		"userID":  userID,
	}
	tag, err := db.pool.Exec(ctx, remove, args)
	if err != nil {
		return 0, fmt.Errorf("error removing participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotJoined
	}

	var n int
	if err := db.pool.QueryRow(ctx, count, args).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting participants of %s: %w", matchID, err)
	}
	return n, nil
}

func (db *postgresDB) ListParticipants(ctx context.Context, matchID string) ([]model.Participant, error) {
	const query = `SELECT p.id, p.match_id, p.user_id, u.full_name, p.joined
					FROM match_participants p
					LEFT JOIN user_profiles u ON u.id = p.user_id
					WHERE p.match_id=@matchID
					ORDER BY p.joined, p.id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"matchID": matchID})
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	results := make([]model.Participant, 0, 8)
	for rows.Next() {
		var p model.Participant
		var name sql.NullString
		var joined pgtype.Timestamptz
		if err := rows.Scan(&p.ID, &p.MatchID, &p.UserID, &name, &joined); err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		p.FullName = valueOrEmpty(name)
		p.Joined = joined.Time
		results = append(results, p)
	}
	return results, rows.Err()
}
