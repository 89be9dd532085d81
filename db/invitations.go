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

func (db *postgresDB) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	const query = `INSERT INTO invitations (
		id,
		match_id,
		inviter_id,
		invitee_id,
		status,
		message,
		created,
		updated
	) VALUES (
		@id,
		@matchID,
		@inviterID,
		@inviteeID,
		@status,
		@message,
		@created,
		@created
	)`

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = model.INVITATION_PENDING
	}
	created := db.now()
	args := pgx.NamedArgs{
		"id":        inv.ID,
		"matchID":   inv.MatchID,
		"inviterID": inv.InviterID,
		"inviteeID": inv.InviteeID,
		"status":    string(inv.Status),
		"message":   nullString(inv.Message),
		"created":   created,
	}
	if _, err := db.pool.Exec(ctx, query, args); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateInvitation
		}
		return fmt.Errorf("error inserting invitation: %w", err)
	}
	inv.Created = created.Time
	inv.Updated = created.Time
	return nil
}

func (db *postgresDB) GetInvitation(ctx context.Context, id string) (*model.Invitation, error) {
	const query = `SELECT id, match_id, inviter_id, invitee_id, status, message, created, updated
					FROM invitations WHERE id=@id`

	var inv model.Invitation
	var status string
	var message sql.NullString
	var created, updated pgtype.Timestamptz
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}).Scan(
		&inv.ID,
		&inv.MatchID,
		&inv.InviterID,
		&inv.InviteeID,
		&status,
		&message,
		&created,
		&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("error reading invitation %s: %w", id, err)
	}

	inv.Status = model.InvitationStatus(status)
	inv.Message = valueOrEmpty(message)
	inv.Created = created.Time
	inv.Updated = updated.Time
	return &inv, nil
}

func (db *postgresDB) AcceptInvitation(ctx context.Context, id string) (int, error) {
	const lock = `SELECT match_id, invitee_id, status FROM invitations WHERE id=@id FOR UPDATE`

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var matchID, inviteeID, status string
	if err := tx.QueryRow(ctx, lock, pgx.NamedArgs{"id": id}).Scan(&matchID, &inviteeID, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInvitationNotFound
		}
		return 0, fmt.Errorf("error locking invitation %s: %w", id, err)
	}
	if model.InvitationStatus(status) != model.INVITATION_PENDING {
		return 0, ErrInvitationNotPending
	}

	count, err := db.addParticipant(ctx, tx, matchID, inviteeID)
	if err != nil && !errors.Is(err, ErrAlreadyJoined) {
		return 0, err
	}

	if err := db.setInvitationStatus(ctx, tx, id, model.INVITATION_ACCEPTED); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error commiting invitation transaction: %w", err)
	}
	return count, nil
}

func (db *postgresDB) DeclineInvitation(ctx context.Context, id string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := db.setInvitationStatus(ctx, tx, id, model.INVITATION_DECLINED); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Only pending invitations change status, so a second answer loses.
func (db *postgresDB) setInvitationStatus(ctx context.Context, tx pgx.Tx, id string, status model.InvitationStatus) error {
	const update = `UPDATE invitations SET status=@status, updated=@updated
		WHERE id=@id AND status='pending'`

	args := pgx.NamedArgs{
		"id":      id,
		"status":  string(status),
		"updated": db.now(),
	}
	tag, err := tx.Exec(ctx, update, args)
	if err != nil {
		return fmt.Errorf("error updating invitation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE id=@id)`, args).Scan(&exists); err != nil {
			return fmt.Errorf("error reading invitation %s: %w", id, err)
		}
		if !exists {
			return ErrInvitationNotFound
		}
		return ErrInvitationNotPending
	}
	return nil
}

func (db *postgresDB) ListInvitations(ctx context.Context, inviteeID string) ([]model.Invitation, error) {
	const query = `SELECT i.id, i.match_id, i.inviter_id, i.invitee_id, i.status, i.message, i.created, i.updated,
						m.title, to_char(m.match_date, 'YYYY-MM-DD'), left(m.match_time::text, 5),
						m.location, m.pitch_type, m.max_players,
						(SELECT COUNT(*) FROM match_participants mp WHERE mp.match_id = m.id),
						u.full_name
					FROM invitations i
					JOIN matches m ON m.id = i.match_id
					LEFT JOIN user_profiles u ON u.id = i.inviter_id
					WHERE i.invitee_id=@inviteeID
					ORDER BY i.created DESC, i.id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"inviteeID": inviteeID})
	if err != nil {
		return nil, fmt.Errorf("error listing invitations: %w", err)
	}
	defer rows.Close()

	results := make([]model.Invitation, 0, 8)
	for rows.Next() {
		var inv model.Invitation
		var m model.Match
		var status string
		var pitch DBPitchType
		var message, inviterName sql.NullString
		var created, updated pgtype.Timestamptz
		err := rows.Scan(
			&inv.ID,
			&inv.MatchID,
			&inv.InviterID,
			&inv.InviteeID,
			&status,
			&message,
			&created,
			&updated,
			&m.Title,
			&m.Date,
			&m.Time,
			&m.Location,
			&pitch,
			&m.MaxPlayers,
			&m.CurrentPlayers,
			&inviterName)
		if err != nil {
			return nil, fmt.Errorf("error scanning invitation: %w", err)
		}

		inv.Status = model.InvitationStatus(status)
		inv.Message = valueOrEmpty(message)
		inv.Created = created.Time
		inv.Updated = updated.Time
		m.ID = inv.MatchID
		m.OrganizerID = inv.InviterID
		m.PitchType = pitch.pitchType
		inv.Match = &m
		inv.Inviter = &model.UserSearchResult{ID: inv.InviterID, FullName: valueOrEmpty(inviterName)}
		results = append(results, inv)
	}
	return results, rows.Err()
}

func (db *postgresDB) ListPendingInviteeIDs(ctx context.Context, matchID string) ([]string, error) {
	const query = `SELECT invitee_id FROM invitations WHERE match_id=@matchID AND status='pending'`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"matchID": matchID})
	if err != nil {
		return nil, fmt.Errorf("error listing pending invitees: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error scanning pending invitees: %w", err)
	}
	return ids, nil
}
