package mail

import "time"

// Connection links an owner to one external mailbox via stored OAuth2
// credentials. Tokens never leave the server.
type Connection struct {
	ID           int64     `db:"id" json:"id"`
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	Email        string    `db:"email" json:"email"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	AccessToken  string    `db:"access_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the access token needs a refresh at the given
// instant.
func (c *Connection) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// SendRequest is the POST /api/gmail/send payload.
type SendRequest struct {
	To         []string          `json:"to"`
	Cc         []string          `json:"cc"`
	Bcc        []string          `json:"bcc"`
	From       string            `json:"from"`
	Subject    string            `json:"subject"`
	Template   string            `json:"template"`
	Variables  map[string]string `json:"variables"`
	TemplateID *int64            `json:"templateId"`
}

// SendInput is the rendered message handed to the send pipeline.
type SendInput struct {
	From       string
	To         []string
	Cc         []string
	Bcc        []string
	Subject    string
	TextBody   string
	HTMLBody   string
	TemplateID *int64
}

// SendResponse is the structured send outcome returned to the client.
type SendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
}

type ConnectResponse struct {
	AuthURL string `json:"authUrl"`
}

type DisconnectRequest struct {
	Email string `json:"email"`
}
