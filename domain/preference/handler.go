package preference

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"template-mailer/config"
	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetHandler handles GET /api/user/preferences. Owners without a stored
// row get the defaults.
func GetHandler(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	prefs, err := get(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prefs)
}

// UpdateHandler handles PATCH /api/user/preferences with an upsert.
func UpdateHandler(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	req := new(UpdatePreferencesRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}
	if req.HighlightColor == nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "highlight_color is required.")
	}
	if !IsValidColor(*req.HighlightColor) {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput,
			"highlight_color must be one of: blue, purple, pink, green, orange, red.")
	}

	var prefs Preferences
	err := config.DB.GetContext(c.Request().Context(), &prefs, `
		INSERT INTO user_preferences (owner_id, highlight_color, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (owner_id) DO UPDATE SET
			highlight_color = EXCLUDED.highlight_color,
			updated_at = NOW()
		RETURNING owner_id, highlight_color, created_at, updated_at`,
		ownerID, *req.HighlightColor)
	if err != nil {
		return apperrors.NewTransient("Failed to save preferences.", err)
	}

	return c.JSON(http.StatusOK, prefs)
}

func get(ctx context.Context, ownerID int64) (*Preferences, error) {
	var prefs Preferences
	err := config.DB.GetContext(ctx, &prefs, `
		SELECT owner_id, highlight_color, created_at, updated_at
		FROM user_preferences
		WHERE owner_id = $1`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Preferences{OwnerID: ownerID, HighlightColor: DefaultHighlightColor}, nil
		}
		return nil, apperrors.NewTransient("Failed to fetch preferences.", err)
	}
	return &prefs, nil
}

// HighlightColor resolves the owner's highlight color, falling back to the
// default when unset or when the lookup fails. Preview rendering should
// not break over a preferences read.
func HighlightColor(ctx context.Context, ownerID int64) string {
	prefs, err := get(ctx, ownerID)
	if err != nil {
		logger.Get().WithComponent("preference").Warn("Falling back to default highlight color",
			logger.UserID(ownerID), logger.Err(err))
		return DefaultHighlightColor
	}
	return prefs.HighlightColor
}
