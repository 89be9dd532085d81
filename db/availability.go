package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func (db *postgresDB) GetUserAvailability(ctx context.Context, userID string) (map[int]bool, error) {
	const query = `SELECT day_of_week, available FROM user_availability WHERE user_id=@userID`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("error reading availability for %s: %w", userID, err)
	}
	defer rows.Close()

	result := make(map[int]bool, 7)
	for rows.Next() {
		var day int
		var available bool
		if err := rows.Scan(&day, &available); err != nil {
			return nil, fmt.Errorf("error scanning availability: %w", err)
		}
		result[day] = available
	}
	return result, rows.Err()
}

func (db *postgresDB) SetUserAvailability(ctx context.Context, userID string, day int, available bool) error {
	const upsert = `INSERT INTO user_availability (user_id, day_of_week, available, updated)
		VALUES (@userID, @day, @available, @updated)
		ON CONFLICT (user_id, day_of_week)
		DO UPDATE SET available=EXCLUDED.available, updated=EXCLUDED.updated`

	args := pgx.NamedArgs{
		"userID":    userID,
		"day":       day,
		"available": available,
		"updated":   db.now(),
	}
	if _, err := db.pool.Exec(ctx, upsert, args); err != nil {
		return fmt.Errorf("error saving availability for %s: %w", userID, err)
	}
	return nil
}
