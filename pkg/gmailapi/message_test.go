package gmailapi_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"template-mailer/pkg/gmailapi"
)

func TestBuildMIME(t *testing.T) {
	t.Parallel()

	t.Run("plain text only", func(t *testing.T) {
		t.Parallel()
		msg := gmailapi.Message{
			From:     "me@example.com",
			To:       []string{"you@example.com"},
			Subject:  "Hello",
			TextBody: "plain body",
		}

		mime := gmailapi.BuildMIME(msg, "unused")
		require.Contains(t, mime, "From: me@example.com\r\n")
		require.Contains(t, mime, "To: you@example.com\r\n")
		require.Contains(t, mime, "Subject: Hello\r\n")
		require.Contains(t, mime, "MIME-Version: 1.0\r\n")
		require.Contains(t, mime, `Content-Type: text/plain; charset="UTF-8"`)
		require.NotContains(t, mime, "multipart/alternative")
		require.NotContains(t, mime, "Cc:")
		require.NotContains(t, mime, "Bcc:")
		require.True(t, strings.HasSuffix(mime, "plain body"))
	})

	t.Run("html yields multipart alternative with plain part first", func(t *testing.T) {
		t.Parallel()
		msg := gmailapi.Message{
			From:     "me@example.com",
			To:       []string{"a@example.com", "b@example.com"},
			Cc:       []string{"c@example.com"},
			Bcc:      []string{"d@example.com"},
			Subject:  "Hi",
			TextBody: "text part",
			HTMLBody: "<p>html part</p>",
		}

		mime := gmailapi.BuildMIME(msg, "BOUNDARY")
		require.Contains(t, mime, "To: a@example.com, b@example.com\r\n")
		require.Contains(t, mime, "Cc: c@example.com\r\n")
		require.Contains(t, mime, "Bcc: d@example.com\r\n")
		require.Contains(t, mime, `Content-Type: multipart/alternative; boundary="BOUNDARY"`)

		textIdx := strings.Index(mime, "text part")
		htmlIdx := strings.Index(mime, "html part")
		require.Greater(t, htmlIdx, textIdx, "plain part must precede html part")

		require.True(t, strings.HasSuffix(mime, "--BOUNDARY--"))
		require.Equal(t, 3, strings.Count(mime, "--BOUNDARY"))
	})
}

func TestNewBoundary(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		b := gmailapi.NewBoundary()
		_, dup := seen[b]
		require.False(t, dup, "boundary %q repeated", b)
		seen[b] = struct{}{}
	}
}

func TestEncodeRaw(t *testing.T) {
	t.Parallel()

	t.Run("url safe without padding", func(t *testing.T) {
		t.Parallel()
		// 0xfb 0xff forces '+' and '/' in standard base64.
		raw := gmailapi.EncodeRaw("\xfb\xff\xfe body")
		require.NotContains(t, raw, "+")
		require.NotContains(t, raw, "/")
		require.NotContains(t, raw, "=")
	})

	t.Run("decodes back to the message", func(t *testing.T) {
		t.Parallel()
		mime := gmailapi.BuildMIME(gmailapi.Message{
			From:     "me@example.com",
			To:       []string{"you@example.com"},
			Subject:  "round trip",
			TextBody: "body",
		}, "")

		decoded, err := base64.RawURLEncoding.DecodeString(gmailapi.EncodeRaw(mime))
		require.NoError(t, err)
		require.Equal(t, mime, string(decoded))
	})
}
