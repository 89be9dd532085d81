package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ETTyler/football/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (db *postgresDB) CreateNotification(ctx context.Context, n *model.Notification) error {
	const query = `INSERT INTO notifications (
		id,
		user_id,
		type,
		title,
		message,
		read,
		related_match_id,
		related_invitation_id,
		created
	) VALUES (
		@id,
		@userID,
		@type,
		@title,
		@message,
		false,
		@relatedMatchID,
		@relatedInvitationID,
		@created
	)`

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	created := db.now()
	args := pgx.NamedArgs{
		"id":                  n.ID,
		"userID":              n.UserID,
		"type":                string(n.Type),
		"title":               n.Title,
		"message":             n.Message,
		"relatedMatchID":      nullString(n.RelatedMatchID),
		"relatedInvitationID": nullString(n.RelatedInvitationID),
		"created":             created,
	}
	if _, err := db.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("error inserting notification: %w", err)
	}
	n.Read = false
	n.Created = created.Time
	return nil
}

func (db *postgresDB) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	const query = `SELECT n.id, n.user_id, n.type, n.title, n.message, n.read,
						n.related_match_id, n.related_invitation_id, n.created,
						m.title, to_char(m.match_date, 'YYYY-MM-DD'), i.status
					FROM notifications n
					LEFT JOIN matches m ON m.id = n.related_match_id
					LEFT JOIN invitations i ON i.id = n.related_invitation_id
					WHERE n.user_id=@userID
					ORDER BY n.created DESC, n.id
					LIMIT @limit`

	args := pgx.NamedArgs{
		"userID": userID,
		"limit":  limit,
	}
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	results := make([]model.Notification, 0, 8)
	for rows.Next() {
		var n model.Notification
		var nType string
		var matchID, invitationID, matchTitle, matchDate, invitationStatus sql.NullString
		var created pgtype.Timestamptz
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&nType,
			&n.Title,
			&n.Message,
			&n.Read,
			&matchID,
			&invitationID,
			&created,
			&matchTitle,
			&matchDate,
			&invitationStatus)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}

		n.Type = model.NotificationType(nType)
		n.RelatedMatchID = valueOrEmpty(matchID)
		n.RelatedInvitationID = valueOrEmpty(invitationID)
		n.Created = created.Time
		if matchTitle.Valid {
			n.RelatedMatch = &model.NotificationMatch{
				ID:    n.RelatedMatchID,
				Title: matchTitle.String,
				Date:  valueOrEmpty(matchDate),
			}
		}
		if invitationStatus.Valid {
			n.RelatedInvitation = &model.NotificationInvitation{
				ID:     n.RelatedInvitationID,
				Status: model.InvitationStatus(invitationStatus.String),
			}
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

func (db *postgresDB) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id=@userID AND NOT read`

	var count int
	if err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"userID": userID}).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

func (db *postgresDB) MarkNotificationRead(ctx context.Context, userID, id string) error {
	const update = `UPDATE notifications SET read=true WHERE id=@id AND user_id=@userID`
	return db.execNotification(ctx, update, userID, id)
}

func (db *postgresDB) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	const update = `UPDATE notifications SET read=true WHERE user_id=@userID AND NOT read`

	if _, err := db.pool.Exec(ctx, update, pgx.NamedArgs{"userID": userID}); err != nil {
		return fmt.Errorf("error marking notifications read: %w", err)
	}
	return nil
}

func (db *postgresDB) DeleteNotification(ctx context.Context, userID, id string) error {
	const remove = `DELETE FROM notifications WHERE id=@id AND user_id=@userID`
	return db.execNotification(ctx, remove, userID, id)
}

// Rows owned by another user are reported as not found.
func (db *postgresDB) execNotification(ctx context.Context, query, userID, id string) error {
	args := pgx.NamedArgs{
		"id":     id,
		"userID": userID,
	}
	tag, err := db.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("error updating notification %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (db *postgresDB) DeleteReadNotifications(ctx context.Context, before time.Time) (int64, error) {
	const remove = `DELETE FROM notifications WHERE read AND created < @before`

	args := pgx.NamedArgs{
		"before": pgtype.Timestamptz{Time: before.UTC(), InfinityModifier: pgtype.Finite, Valid: true},
	}
	tag, err := db.pool.Exec(ctx, remove, args)
	if err != nil {
		return 0, fmt.Errorf("error deleting read notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
