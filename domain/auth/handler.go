package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"template-mailer/config"
	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/logger"
	"template-mailer/utils"

	"github.com/labstack/echo/v4"
)

// RegisterHandler creates a new user account.
func RegisterHandler(c echo.Context) error {
	log := logger.Get().WithComponent("auth").WithRequestID(logger.GetRequestIDFromContext(c))

	req := new(RegisterRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "A valid email is required.")
	}
	if len(req.Password) < 8 {
		return apperrors.NewBadRequest(apperrors.ErrCodeInvalidInput, "Password must be at least 8 characters.")
	}

	var exists bool
	if err := config.DB.Get(&exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email); err != nil {
		return apperrors.NewTransient("Failed to check existing user.", err)
	}
	if exists {
		return apperrors.NewConflict(apperrors.ErrCodeResourceExists, "An account with this email already exists.")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, "Failed to create account.", err)
	}

	var userID int64
	err = config.DB.QueryRow(`
		INSERT INTO users (email, password, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id`, req.Email, hashed).Scan(&userID)
	if err != nil {
		return apperrors.NewTransient("Failed to create account.", err)
	}

	log.Info("User registered", logger.UserID(userID), logger.Email(req.Email))

	token, err := utils.GenerateJWT(userID, req.Email)
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, "Failed to issue token.", err)
	}

	return apperrors.RespondWithCreated(c, LoginResponse{Token: token, Email: req.Email})
}

// LoginHandler authenticates a user and issues a JWT.
func LoginHandler(c echo.Context) error {
	log := logger.Get().WithComponent("auth").WithRequestID(logger.GetRequestIDFromContext(c))

	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user User
	err := config.DB.Get(&user, "SELECT id, email, password FROM users WHERE email = $1", req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewUnauthorized(apperrors.ErrCodeInvalidCredentials, "Invalid email or password.")
		}
		return apperrors.NewTransient("Failed to fetch user.", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		log.Warn("Failed login attempt", logger.Email(req.Email))
		return apperrors.NewUnauthorized(apperrors.ErrCodeInvalidCredentials, "Invalid email or password.")
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return apperrors.NewInternal(apperrors.ErrCodeUnexpectedError, "Failed to issue token.", err)
	}

	log.Info("User logged in", logger.UserID(user.ID))

	return c.JSON(http.StatusOK, LoginResponse{Token: token, Email: user.Email})
}

// MeHandler returns the authenticated user's profile.
func MeHandler(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	var user User
	err := config.DB.Get(&user, "SELECT id, email, created_at, updated_at FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound(apperrors.ErrCodeUserNotFound, "User not found.")
		}
		return apperrors.NewTransient("Failed to fetch user.", err)
	}

	return c.JSON(http.StatusOK, user)
}
