package template

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
)

const (
	listLimit    = 50
	listCacheTTL = 30 * time.Second

	retryBase     = 1 * time.Second
	retryAttempts = 2
)

// Store provides CRUD access to templates, scoped by owner. Reads of the
// list go through a short-lived per-owner cache; mutating operations
// (create excluded) run under a bounded retry that re-raises logical
// errors immediately and only retries on everything else.
type Store struct {
	db    *sqlx.DB
	cache *listCache
	log   logger.Logger
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:    db,
		cache: newListCache(listCacheTTL),
		log:   logger.Get().WithComponent("template_store"),
	}
}

// GetAll returns up to 50 templates for the owner, newest-updated first.
func (s *Store) GetAll(ctx context.Context, ownerID int64) ([]Template, error) {
	if cached, ok := s.cache.get(ownerID); ok {
		return cached, nil
	}

	templates := []Template{}
	err := s.db.SelectContext(ctx, &templates, `
		SELECT id, owner_id, name, content, variables, created_at, updated_at
		FROM templates
		WHERE owner_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`, ownerID, listLimit)
	if err != nil {
		return nil, apperrors.NewTransient("Failed to list templates.", err)
	}

	s.cache.set(ownerID, templates)
	return templates, nil
}

// GetByID returns the owner's template or nil when no row matches. A miss
// is a normal result, not an error.
func (s *Store) GetByID(ctx context.Context, id, ownerID int64) (*Template, error) {
	var t Template
	err := s.db.GetContext(ctx, &t, `
		SELECT id, owner_id, name, content, variables, created_at, updated_at
		FROM templates
		WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewTransient("Failed to fetch template.", err)
	}
	return &t, nil
}

// GetByName returns the owner's template by name or nil when absent.
func (s *Store) GetByName(ctx context.Context, name string, ownerID int64) (*Template, error) {
	var t Template
	err := s.db.GetContext(ctx, &t, `
		SELECT id, owner_id, name, content, variables, created_at, updated_at
		FROM templates
		WHERE name = $1 AND owner_id = $2`, name, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewTransient("Failed to fetch template.", err)
	}
	return &t, nil
}

// Count returns the owner's stored template count. The handler uses it for
// the per-owner cap before calling Create.
func (s *Store) Count(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM templates WHERE owner_id = $1", ownerID)
	if err != nil {
		return 0, apperrors.NewTransient("Failed to count templates.", err)
	}
	return count, nil
}

// Create inserts a new template. The owner is required; name uniqueness per
// owner is enforced by the database constraint.
func (s *Store) Create(ctx context.Context, ownerID int64, name, content string, vars map[string]string) (*Template, error) {
	if ownerID == 0 {
		return nil, apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Owner is required.")
	}

	var t Template
	err := s.db.GetContext(ctx, &t, `
		INSERT INTO templates (owner_id, name, content, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, owner_id, name, content, variables, created_at, updated_at`,
		ownerID, name, content, VariableMap(vars))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict(apperrors.ErrCodeResourceExists, "A template with this name already exists.")
		}
		return nil, apperrors.NewTransient("Failed to create template.", err)
	}

	s.cache.invalidate(ownerID)
	s.log.Info("Template created", logger.UserID(ownerID), logger.TemplateID(t.ID))
	return &t, nil
}

// Update merges the partial request onto the stored row and refreshes
// updated_at. NotFound when no (id, owner) row matches.
func (s *Store) Update(ctx context.Context, id, ownerID int64, req UpdateTemplateRequest) (*Template, error) {
	var vars *VariableMap
	if req.Variables != nil {
		vm := VariableMap(*req.Variables)
		vars = &vm
	}

	var t Template
	err := s.withRetry(ctx, "update", func(ctx context.Context) error {
		err := s.db.GetContext(ctx, &t, `
			UPDATE templates SET
				name = COALESCE($3, name),
				content = COALESCE($4, content),
				variables = COALESCE($5, variables),
				updated_at = NOW()
			WHERE id = $1 AND owner_id = $2
			RETURNING id, owner_id, name, content, variables, created_at, updated_at`,
			id, ownerID, req.Name, req.Content, vars)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFound(apperrors.ErrCodeTemplateNotFound, "Template not found.")
			}
			if isUniqueViolation(err) {
				return apperrors.NewConflict(apperrors.ErrCodeResourceExists, "A template with this name already exists.")
			}
			return apperrors.NewTransient("Failed to update template.", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.invalidate(ownerID)
	return &t, nil
}

// Delete removes the owner's template in a single unconditional statement;
// there is no existence pre-check to race against.
func (s *Store) Delete(ctx context.Context, id, ownerID int64) (DeleteResult, error) {
	var affected int64
	err := s.withRetry(ctx, "delete", func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1 AND owner_id = $2", id, ownerID)
		if err != nil {
			return apperrors.NewTransient("Failed to delete template.", err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return apperrors.NewTransient("Failed to delete template.", err)
		}
		if affected == 0 {
			return apperrors.NewNotFound(apperrors.ErrCodeTemplateNotFound, "Template not found.")
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.cache.invalidate(ownerID)
	return DeleteResult{Deleted: true, Count: int(affected)}, nil
}

// InvalidateCache drops the owner's cached list.
func (s *Store) InvalidateCache(ownerID int64) {
	s.cache.invalidate(ownerID)
}

// withRetry runs op under exponential backoff. Logical errors (validation,
// not-found) stop immediately; anything else is treated as transient.
func (s *Store) withRetry(ctx context.Context, operation string, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase))
	attempt := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if apperrors.IsLogical(err) {
			return err
		}
		s.log.Warn("Transient store failure, retrying",
			logger.Operation(operation),
			logger.Attempt(attempt),
			logger.Err(err),
		)
		return retry.RetryableError(err)
	})
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
