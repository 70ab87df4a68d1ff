package history

import (
	"context"
	"time"

	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
)

const listLimit = 50

// Store appends and reads the send history log.
type Store struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:  db,
		log: logger.Get().WithComponent("history_store"),
	}
}

// Append writes one history entry. The write retries briefly on transient
// failures; callers decide whether a final failure is fatal (the send
// pipeline swallows it).
func (s *Store) Append(ctx context.Context, entry Entry) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(1*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO email_history (
				owner_id, template_id, connection_id,
				to_recipients, cc_recipients, bcc_recipients,
				subject, content, status, message_id, error_message, sent_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())`,
			entry.OwnerID, entry.TemplateID, entry.ConnectionID,
			entry.To, entry.Cc, entry.Bcc,
			entry.Subject, entry.Content, entry.Status, entry.MessageID, entry.ErrorMessage)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return apperrors.NewTransient("Failed to record send history.", err)
	}
	return nil
}

// ListByOwner returns the caller's history, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]Entry, error) {
	entries := []Entry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, owner_id, template_id, connection_id,
			to_recipients, cc_recipients, bcc_recipients,
			subject, content, status, message_id, error_message, sent_at
		FROM email_history
		WHERE owner_id = $1
		ORDER BY sent_at DESC
		LIMIT $2`, ownerID, listLimit)
	if err != nil {
		return nil, apperrors.NewTransient("Failed to list history.", err)
	}
	return entries, nil
}

// DetachConnection nulls the connection reference on every history row
// pointing at it. History rows themselves are retained.
func (s *Store) DetachConnection(ctx context.Context, connectionID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE email_history SET connection_id = NULL WHERE connection_id = $1", connectionID)
	if err != nil {
		return apperrors.NewTransient("Failed to detach history from connection.", err)
	}
	return nil
}
