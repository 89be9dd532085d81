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

const userColumns = `id, full_name, email, password_hash, oauth_subject, created`

func (db *postgresDB) CreateUser(ctx context.Context, u *model.User) error {
	const query = `INSERT INTO user_profiles (
		id,
		full_name,
		email,
		password_hash,
		oauth_subject,
		created
	) VALUES (
		@id,
		@fullName,
		@email,
		@passwordHash,
		@oauthSubject,
		@created
	)`

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	created := db.now()
	args := pgx.NamedArgs{
		"id":           u.ID,
		"fullName":     u.FullName,
		"email":        nullString(u.Email),
		"passwordHash": u.PasswordHash,
		"oauthSubject": nullString(u.OAuthSubject),
		"created":      created,
	}
	if _, err := db.pool.Exec(ctx, query, args); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	u.Created = created.Time
	return nil
}

func (db *postgresDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	return db.getUserBy(ctx, "id", id)
}

func (db *postgresDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUserBy(ctx, "email", email)
}

func (db *postgresDB) GetUserByOAuthSubject(ctx context.Context, subject string) (*model.User, error) {
	return db.getUserBy(ctx, "oauth_subject", subject)
}

func (db *postgresDB) getUserBy(ctx context.Context, column, value string) (*model.User, error) {
	q := psql.Select(userColumns).From("user_profiles").Where(sq.Eq{column: value})
	u, err := scanUser(qRow(ctx, db.pool, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error reading user by %s: %w", column, err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var result model.User
	var email, subject sql.NullString
	var created pgtype.Timestamptz
	err := row.Scan(
		&result.ID,
		&result.FullName,
		&email,
		&result.PasswordHash,
		&subject,
		&created)
	if err != nil {
		return nil, err
	}

	result.Email = valueOrEmpty(email)
	result.OAuthSubject = valueOrEmpty(subject)
	result.Created = created.Time
	return &result, nil
}

func (db *postgresDB) SearchUsers(ctx context.Context, query string, exclude []string, limit int) ([]model.UserSearchResult, error) {
	q := psql.Select("id", "full_name").
		From("user_profiles").
		Where(sq.ILike{"full_name": containsPattern(query)}).
		OrderBy("full_name", "id")
	if len(exclude) > 0 {
		q = q.Where(sq.NotEq{"id": exclude})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := qQuery(ctx, db.pool, q)
	if err != nil {
		return nil, fmt.Errorf("error running user search query: %w", err)
	}
	return scanUserResults(rows)
}

func (db *postgresDB) ListAvailableUsers(ctx context.Context, day int) ([]model.UserSearchResult, error) {
	const query = `SELECT u.id, u.full_name FROM user_profiles u
					WHERE NOT EXISTS (
						SELECT 1 FROM user_availability a
						WHERE a.user_id = u.id AND a.day_of_week = @day AND NOT a.available
					)
					ORDER BY u.full_name, u.id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"day": day})
	if err != nil {
		return nil, fmt.Errorf("error listing available users: %w", err)
	}
	return scanUserResults(rows)
}

func scanUserResults(rows pgx.Rows) ([]model.UserSearchResult, error) {
	defer rows.Close()

	results := make([]model.UserSearchResult, 0, 8)
	for rows.Next() {
		var r model.UserSearchResult
		if err := rows.Scan(&r.ID, &r.FullName); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
