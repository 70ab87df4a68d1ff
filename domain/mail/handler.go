package mail

import (
	"net/http"
	"net/url"
	"strconv"

	"template-mailer/domain/preference"
	"template-mailer/domain/template"
	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/gmailapi"
	"template-mailer/pkg/logger"
	"template-mailer/pkg/markup"
	"template-mailer/pkg/variables"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
)

// Handler serves the Gmail connection and send endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Connect handles POST /api/gmail/connect.
func (h *Handler) Connect(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)
	return c.JSON(http.StatusOK, ConnectResponse{AuthURL: h.service.AuthURL(ownerID)})
}

// Callback handles GET /api/gmail/callback. Google redirects the browser
// here, so the outcome travels back to the UI as query parameters instead
// of a JSON body.
func (h *Handler) Callback(c echo.Context) error {
	log := logger.Get().WithComponent("mail").WithRequestID(logger.GetRequestIDFromContext(c))

	if errParam := c.QueryParam("error"); errParam != "" {
		log.Warn("OAuth callback returned an error", logger.String("oauth_error", errParam))
		return redirectWithResult(c, "error", errParam)
	}

	code := c.QueryParam("code")
	if code == "" {
		return redirectWithResult(c, "error", "missing_code")
	}

	ownerID, err := strconv.ParseInt(c.QueryParam("state"), 10, 64)
	if err != nil || ownerID == 0 {
		return redirectWithResult(c, "error", "invalid_state")
	}

	email, err := h.service.HandleCallback(c.Request().Context(), code, ownerID)
	if err != nil {
		log.Error("Gmail callback failed", err, logger.UserID(ownerID))
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeNoRefreshToken {
			return redirectWithResult(c, "error", "no_refresh_token")
		}
		return redirectWithResult(c, "error", "connection_failed")
	}

	return redirectWithResult(c, "gmail_connected", email)
}

// Connections handles GET /api/gmail/connections.
func (h *Handler) Connections(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	connections, err := h.service.Connections(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, connections)
}

// Disconnect handles DELETE /api/gmail/connections.
func (h *Handler) Disconnect(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	req := new(DisconnectRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}
	if req.Email == "" {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Email is required.")
	}

	removed, err := h.service.Disconnect(c.Request().Context(), ownerID, req.Email)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewNotFound(apperrors.ErrCodeConnectionNotFound,
			"No mail connection found for "+req.Email+".")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Send handles POST /api/gmail/send. The template is substituted and
// formatted through the same render path the preview uses, then handed to
// the delivery pipeline.
func (h *Handler) Send(c echo.Context) error {
	ownerID := c.Get("user_id").(int64)

	req := new(SendRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.NewBadRequest(apperrors.ErrCodeValidationFailed, "Invalid request payload.")
	}
	if len(req.To) == 0 {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "At least one recipient is required.")
	}
	if req.From == "" {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Sender address is required.")
	}
	if req.Subject == "" {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Subject is required.")
	}
	if req.Template == "" {
		return apperrors.NewBadRequest(apperrors.ErrCodeMissingField, "Template content is required.")
	}

	color := preference.HighlightColor(c.Request().Context(), ownerID)

	// Stored templates may carry their subject as a content prefix; the
	// request subject is authoritative, the prefix just never leaks into
	// the delivered body.
	_, body := template.SplitSubject(req.Template)

	substituted := variables.Replace(body, req.Variables)

	messageID, err := h.service.Send(c.Request().Context(), ownerID, SendInput{
		From:       req.From,
		To:         req.To,
		Cc:         req.Cc,
		Bcc:        req.Bcc,
		Subject:    variables.Replace(req.Subject, req.Variables),
		TextBody:   markup.ToPlainText(substituted),
		HTMLBody:   markup.ToHTML(substituted, color),
		TemplateID: req.TemplateID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SendResponse{Success: true, MessageID: messageID})
}

// NewGmailClient wires the package's default client from viper-managed
// OAuth settings.
func NewGmailClient() *gmailapi.Client {
	return gmailapi.NewClient(gmailapi.OAuthConfigFromEnv())
}

func redirectWithResult(c echo.Context, key, value string) error {
	base := viper.GetString("FRONTEND_URL")
	if base == "" {
		base = "/"
	}
	return c.Redirect(http.StatusTemporaryRedirect, base+"?"+key+"="+url.QueryEscape(value))
}
