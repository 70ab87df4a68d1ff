// Package gmailapi talks to the Gmail REST API with OAuth2 credentials.
// The client carries no per-user token state: every call takes explicit
// credentials so concurrent requests never share mutable client state.
package gmailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultSendURL     = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// ScopeSend allows sending mail on the user's behalf; ScopeEmail lets
	// us resolve which mailbox was authorized.
	ScopeSend  = "https://www.googleapis.com/auth/gmail.send"
	ScopeEmail = "https://www.googleapis.com/auth/userinfo.email"
)

// ErrNoRefreshToken signals that the OAuth exchange completed without a
// refresh token. This is a common misconfiguration (missing offline access
// or a prior consent without prompt=consent), so it gets its own error.
var ErrNoRefreshToken = errors.New("authorization response contained no refresh token")

// OAuthConfig builds the oauth2 config for the Gmail flow.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{ScopeSend, ScopeEmail},
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfigFromEnv builds the oauth2 config from viper-managed settings.
func OAuthConfigFromEnv() *oauth2.Config {
	return OAuthConfig(
		viper.GetString("GOOGLE_CLIENT_ID"),
		viper.GetString("GOOGLE_CLIENT_SECRET"),
		viper.GetString("GOOGLE_REDIRECT_URI"),
	)
}

// Client performs Gmail API calls. It holds endpoints and an HTTP client
// only; credentials are passed per call.
type Client struct {
	httpClient  *http.Client
	sendURL     string
	userInfoURL string
	oauth       *oauth2.Config
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSendURL overrides the messages.send endpoint (tests).
func WithSendURL(url string) Option {
	return func(c *Client) { c.sendURL = url }
}

// WithUserInfoURL overrides the userinfo endpoint (tests).
func WithUserInfoURL(url string) Option {
	return func(c *Client) { c.userInfoURL = url }
}

// NewClient creates a Gmail API client around the given OAuth config.
func NewClient(oauthCfg *oauth2.Config, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		sendURL:     defaultSendURL,
		userInfoURL: defaultUserInfoURL,
		oauth:       oauthCfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthURL builds the authorization URL. Offline access plus prompt=consent
// guarantees a refresh token is issued even when the account re-authorizes.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the authorization code for tokens. A response without a
// refresh token returns ErrNoRefreshToken.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = c.contextWithHTTPClient(ctx)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return token, nil
}

// Refresh obtains a fresh access token from the stored refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx = c.contextWithHTTPClient(ctx)
	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh access token: %w", err)
	}
	return token, nil
}

// FetchEmail resolves the email address of the authorized account.
func (c *Client) FetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	ctx = c.contextWithHTTPClient(ctx)
	client := c.oauth.Client(ctx, token)

	resp, err := client.Get(c.userInfoURL)
	if err != nil {
		return "", fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("userinfo request failed: status=%d body=%s", resp.StatusCode, body)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("userinfo response contained no email")
	}
	return info.Email, nil
}

// Send submits a base64url-encoded RFC 2822 message and returns the Gmail
// message id. accessToken is the only credential used; the call mutates no
// client state.
func (c *Client) Send(ctx context.Context, accessToken, raw string) (string, error) {
	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return "", fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read send response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gmail send failed: status=%d body=%s", resp.StatusCode, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	return result.ID, nil
}

func (c *Client) contextWithHTTPClient(ctx context.Context) context.Context {
	if c.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return ctx
}
