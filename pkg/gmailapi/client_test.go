package gmailapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"template-mailer/pkg/gmailapi"
)

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/api/gmail/callback",
		Scopes:       []string{gmailapi.ScopeSend, gmailapi.ScopeEmail},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: tokenURL,
		},
	}
}

func TestAuthURL(t *testing.T) {
	t.Parallel()

	client := gmailapi.NewClient(testOAuthConfig("https://oauth2.googleapis.com/token"))
	url := client.AuthURL("42")

	require.Contains(t, url, "access_type=offline")
	require.Contains(t, url, "prompt=consent")
	require.Contains(t, url, "state=42")
	require.Contains(t, url, "gmail.send")
}

func TestExchange(t *testing.T) {
	t.Parallel()

	t.Run("missing refresh token is a named error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "at",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))
		defer srv.Close()

		client := gmailapi.NewClient(testOAuthConfig(srv.URL), gmailapi.WithHTTPClient(srv.Client()))
		_, err := client.Exchange(context.Background(), "code")
		require.ErrorIs(t, err, gmailapi.ErrNoRefreshToken)
	})

	t.Run("returns tokens on success", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at",
				"refresh_token": "rt",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		}))
		defer srv.Close()

		client := gmailapi.NewClient(testOAuthConfig(srv.URL), gmailapi.WithHTTPClient(srv.Client()))
		token, err := client.Exchange(context.Background(), "code")
		require.NoError(t, err)
		require.Equal(t, "at", token.AccessToken)
		require.Equal(t, "rt", token.RefreshToken)
	})
}

func TestSend(t *testing.T) {
	t.Parallel()

	t.Run("posts raw payload with bearer token", func(t *testing.T) {
		t.Parallel()
		var gotAuth string
		var gotBody map[string]string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(map[string]string{"id": "msg-123"})
		}))
		defer srv.Close()

		client := gmailapi.NewClient(
			testOAuthConfig("https://oauth2.googleapis.com/token"),
			gmailapi.WithSendURL(srv.URL),
			gmailapi.WithHTTPClient(srv.Client()),
		)

		id, err := client.Send(context.Background(), "access-token", "ZW5jb2RlZA")
		require.NoError(t, err)
		require.Equal(t, "msg-123", id)
		require.Equal(t, "Bearer access-token", gotAuth)
		require.Equal(t, "ZW5jb2RlZA", gotBody["raw"])
	})

	t.Run("non-2xx surfaces status and body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"invalid grant"}}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := gmailapi.NewClient(
			testOAuthConfig("https://oauth2.googleapis.com/token"),
			gmailapi.WithSendURL(srv.URL),
			gmailapi.WithHTTPClient(srv.Client()),
		)

		_, err := client.Send(context.Background(), "access-token", "raw")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status=401")
	})
}

func TestFetchEmail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"email": "user@gmail.com", "verified_email": true})
	}))
	defer srv.Close()

	client := gmailapi.NewClient(
		testOAuthConfig("https://oauth2.googleapis.com/token"),
		gmailapi.WithUserInfoURL(srv.URL),
		gmailapi.WithHTTPClient(srv.Client()),
	)

	email, err := client.FetchEmail(context.Background(), &oauth2.Token{AccessToken: "at"})
	require.NoError(t, err)
	require.Equal(t, "user@gmail.com", email)
}
