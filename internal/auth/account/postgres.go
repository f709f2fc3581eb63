package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"connect-gateway/internal/db"

	"github.com/lib/pq"
)

const (
	uniqueViolation = "23505"

	usersPrimaryKey = "users_pkey"
	usersSlugUnique = "users_slug_unique"
)

// PostgresStore persists accounts in the wiki's users and role_user tables.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const findByIDQuery = `
	SELECT u.id, u.name, COALESCE(u.fullname, ''), u.email, u.slug,
	       u.access_token, u.refresh_token, u.token_expires,
	       u.created_at, u.updated_at,
	       COALESCE((SELECT MIN(r.role_id) FROM role_user r WHERE r.user_id = u.id), 0)
	FROM users u
	WHERE u.id = $1`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	var (
		a                         Account
		accessToken, refreshToken sql.NullString
		tokenExpires              sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, findByIDQuery, id).Scan(
		&a.ID, &a.Name, &a.FullName, &a.Email, &a.Slug,
		&accessToken, &refreshToken, &tokenExpires,
		&a.CreatedAt, &a.UpdatedAt,
		&a.RoleID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	a.AccessToken = accessToken.String
	a.RefreshToken = refreshToken.String
	if tokenExpires.Valid {
		a.TokenExpires = tokenExpires.Time
	}
	return &a, nil
}

// Create inserts the user row and its role grant in one transaction.
func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, fullname, email, slug, access_token, refresh_token, token_expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		a.ID, a.Name, a.FullName, a.Email, a.Slug,
		nullString(a.AccessToken), nullString(a.RefreshToken), nullTime(a.TokenExpires),
	)
	if err != nil {
		switch uniqueConstraint(err) {
		case usersPrimaryKey:
			return ErrDuplicate
		case usersSlugUnique:
			return ErrSlugTaken
		}
		return fmt.Errorf("create account: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO role_user (user_id, role_id)
		VALUES ($1, $2)
	`, a.ID, a.RoleID)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id string, p Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, fullname = $3, email = $4, updated_at = NOW()
		WHERE id = $1
	`, id, p.Name, p.FullName, p.Email)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return expectOneRow(res)
}

func (s *PostgresStore) UpdateTokens(ctx context.Context, id string, t Tokens) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET access_token = $2, refresh_token = $3, token_expires = $4, updated_at = NOW()
		WHERE id = $1
	`, id, nullString(t.AccessToken), nullString(t.RefreshToken), nullTime(t.Expires))
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// uniqueConstraint names the constraint behind a unique violation, or
// returns "" for any other error.
func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint
	}
	return ""
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
