package mail

import (
	"context"
	"strconv"
	"time"

	"template-mailer/domain/history"
	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/gmailapi"
	"template-mailer/pkg/logger"

	"golang.org/x/oauth2"
)

// connectionStore is the persistence surface the pipeline needs.
type connectionStore interface {
	Upsert(ctx context.Context, ownerID int64, email, refreshToken, accessToken string, expiresAt time.Time) (*Connection, error)
	GetByOwnerAndEmail(ctx context.Context, ownerID int64, email string) (*Connection, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Connection, error)
	UpdateToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

// historyStore records send outcomes.
type historyStore interface {
	Append(ctx context.Context, entry history.Entry) error
	DetachConnection(ctx context.Context, connectionID int64) error
}

// gmailClient is the external mail API surface.
type gmailClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	FetchEmail(ctx context.Context, token *oauth2.Token) (string, error)
	Send(ctx context.Context, accessToken, raw string) (string, error)
}

// Service manages OAuth-linked mail connections and the send pipeline.
//
// Known gap: two concurrent sends over the same connection can race a token
// refresh and both hit the refresh endpoint; the last write wins. This is
// deliberate and unguarded.
type Service struct {
	connections connectionStore
	history     historyStore
	gmail       gmailClient
	log         logger.Logger
	now         func() time.Time
}

func NewService(connections connectionStore, hist historyStore, gmail gmailClient) *Service {
	return &Service{
		connections: connections,
		history:     hist,
		gmail:       gmail,
		log:         logger.Get().WithComponent("mail_service"),
		now:         time.Now,
	}
}

// AuthURL builds the authorization URL with the owner id riding along as
// the opaque state parameter.
func (s *Service) AuthURL(ownerID int64) string {
	return s.gmail.AuthURL(strconv.FormatInt(ownerID, 10))
}

// HandleCallback exchanges the authorization code, resolves the authorized
// mailbox address and upserts the connection. A missing refresh token is
// surfaced as its own error code since it is the most common OAuth
// misconfiguration.
func (s *Service) HandleCallback(ctx context.Context, code string, ownerID int64) (string, error) {
	token, err := s.gmail.Exchange(ctx, code)
	if err != nil {
		if err == gmailapi.ErrNoRefreshToken {
			return "", apperrors.NewExternal(apperrors.ErrCodeNoRefreshToken,
				"Authorization did not return a refresh token. Remove the app's access in your Google account and connect again.", err)
		}
		return "", apperrors.NewExternal(apperrors.ErrCodeOAuthExchangeFailed,
			"Failed to exchange the authorization code.", err)
	}

	email, err := s.gmail.FetchEmail(ctx, token)
	if err != nil {
		return "", apperrors.NewExternal(apperrors.ErrCodeUserInfoFailed,
			"Failed to resolve the authorized account's email address.", err)
	}

	if _, err := s.connections.Upsert(ctx, ownerID, email, token.RefreshToken, token.AccessToken, token.Expiry); err != nil {
		return "", err
	}

	s.log.Info("Mail connection linked", logger.UserID(ownerID), logger.Email(email))
	return email, nil
}

// Connections lists the owner's linked mailboxes.
func (s *Service) Connections(ctx context.Context, ownerID int64) ([]Connection, error) {
	return s.connections.ListByOwner(ctx, ownerID)
}

// Disconnect detaches history rows from the connection, then deletes it.
// Returns false when no connection matches; that is not an error.
func (s *Service) Disconnect(ctx context.Context, ownerID int64, email string) (bool, error) {
	conn, err := s.connections.GetByOwnerAndEmail(ctx, ownerID, email)
	if err != nil {
		return false, err
	}
	if conn == nil {
		return false, nil
	}

	// History rows are retained; only their foreign reference is nulled.
	if err := s.history.DetachConnection(ctx, conn.ID); err != nil {
		return false, err
	}
	if err := s.connections.Delete(ctx, conn.ID); err != nil {
		return false, err
	}

	s.log.Info("Mail connection removed", logger.UserID(ownerID), logger.Email(email))
	return true, nil
}

// Send delivers one rendered message through the owner's connection for
// fromEmail. The outcome is always recorded to history before returning;
// a history write failure is logged, never propagated.
func (s *Service) Send(ctx context.Context, ownerID int64, input SendInput) (string, error) {
	conn, err := s.connections.GetByOwnerAndEmail(ctx, ownerID, input.From)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", apperrors.NewNotFound(apperrors.ErrCodeConnectionNotFound,
			"No mail connection found for "+input.From+".")
	}

	accessToken := conn.AccessToken
	if conn.Expired(s.now()) {
		token, err := s.gmail.Refresh(ctx, conn.RefreshToken)
		if err != nil {
			sendErr := apperrors.NewExternal(apperrors.ErrCodeTokenRefreshFailed,
				"Failed to refresh the mail access token. Reconnect the account if this persists.", err)
			s.recordOutcome(ctx, ownerID, conn.ID, input, history.StatusFailed, "", sendErr.Message)
			return "", sendErr
		}

		// Persist before constructing the message so the stored credentials
		// always reflect what was last used.
		if err := s.connections.UpdateToken(ctx, conn.ID, token.AccessToken, token.Expiry); err != nil {
			s.recordOutcome(ctx, ownerID, conn.ID, input, history.StatusFailed, "",
				"Failed to persist the refreshed access token.")
			return "", err
		}
		accessToken = token.AccessToken
		s.log.Info("Access token refreshed", logger.UserID(ownerID), logger.ConnectionID(conn.ID))
	}

	raw := gmailapi.EncodeRaw(gmailapi.BuildMIME(gmailapi.Message{
		From:     input.From,
		To:       input.To,
		Cc:       input.Cc,
		Bcc:      input.Bcc,
		Subject:  input.Subject,
		TextBody: input.TextBody,
		HTMLBody: input.HTMLBody,
	}, gmailapi.NewBoundary()))

	messageID, err := s.gmail.Send(ctx, accessToken, raw)
	if err != nil {
		sendErr := apperrors.NewExternal(apperrors.ErrCodeMailSendFailed, err.Error(), err)
		s.recordOutcome(ctx, ownerID, conn.ID, input, history.StatusFailed, "", sendErr.Message)
		return "", sendErr
	}

	s.recordOutcome(ctx, ownerID, conn.ID, input, history.StatusSent, messageID, "")
	s.log.Info("Email sent",
		logger.UserID(ownerID),
		logger.ConnectionID(conn.ID),
		logger.MessageID(messageID),
		logger.Count(len(input.To)),
	)
	return messageID, nil
}

func (s *Service) recordOutcome(ctx context.Context, ownerID, connectionID int64, input SendInput, status, messageID, errMessage string) {
	entry := history.Entry{
		OwnerID:      ownerID,
		TemplateID:   input.TemplateID,
		ConnectionID: &connectionID,
		To:           input.To,
		Cc:           input.Cc,
		Bcc:          input.Bcc,
		Subject:      input.Subject,
		Content:      input.HTMLBody,
		Status:       status,
	}
	if entry.Content == "" {
		entry.Content = input.TextBody
	}
	if messageID != "" {
		entry.MessageID = &messageID
	}
	if errMessage != "" {
		entry.ErrorMessage = &errMessage
	}

	if err := s.history.Append(ctx, entry); err != nil {
		s.log.Error("Failed to record send history", err,
			logger.UserID(ownerID), logger.ConnectionID(connectionID))
	}
}
