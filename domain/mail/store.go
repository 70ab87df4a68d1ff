package mail

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"template-mailer/pkg/apperrors"

	"github.com/jmoiron/sqlx"
)

// ConnectionStore persists mail connections keyed by (owner, email).
type ConnectionStore struct {
	db *sqlx.DB
}

func NewConnectionStore(db *sqlx.DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// Upsert inserts the connection or, when the (owner, email) pair already
// exists, replaces its tokens in place.
func (s *ConnectionStore) Upsert(ctx context.Context, ownerID int64, email, refreshToken, accessToken string, expiresAt time.Time) (*Connection, error) {
	var conn Connection
	err := s.db.GetContext(ctx, &conn, `
		INSERT INTO mail_connections (owner_id, email, refresh_token, access_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (owner_id, email) DO UPDATE SET
			refresh_token = EXCLUDED.refresh_token,
			access_token = EXCLUDED.access_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING id, owner_id, email, refresh_token, access_token, expires_at, created_at, updated_at`,
		ownerID, email, refreshToken, accessToken, expiresAt)
	if err != nil {
		return nil, apperrors.NewTransient("Failed to save mail connection.", err)
	}
	return &conn, nil
}

// GetByOwnerAndEmail returns the connection or nil when absent.
func (s *ConnectionStore) GetByOwnerAndEmail(ctx context.Context, ownerID int64, email string) (*Connection, error) {
	var conn Connection
	err := s.db.GetContext(ctx, &conn, `
		SELECT id, owner_id, email, refresh_token, access_token, expires_at, created_at, updated_at
		FROM mail_connections
		WHERE owner_id = $1 AND email = $2`, ownerID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewTransient("Failed to fetch mail connection.", err)
	}
	return &conn, nil
}

// ListByOwner returns the owner's connections, oldest first.
func (s *ConnectionStore) ListByOwner(ctx context.Context, ownerID int64) ([]Connection, error) {
	connections := []Connection{}
	err := s.db.SelectContext(ctx, &connections, `
		SELECT id, owner_id, email, refresh_token, access_token, expires_at, created_at, updated_at
		FROM mail_connections
		WHERE owner_id = $1
		ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, apperrors.NewTransient("Failed to list mail connections.", err)
	}
	return connections, nil
}

// UpdateToken persists a refreshed access token and its expiry.
func (s *ConnectionStore) UpdateToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE mail_connections
		SET access_token = $2, expires_at = $3, updated_at = NOW()
		WHERE id = $1`, id, accessToken, expiresAt)
	if err != nil {
		return apperrors.NewTransient("Failed to persist refreshed token.", err)
	}
	return nil
}

// Delete removes the connection row.
func (s *ConnectionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM mail_connections WHERE id = $1", id)
	if err != nil {
		return apperrors.NewTransient("Failed to delete mail connection.", err)
	}
	return nil
}
