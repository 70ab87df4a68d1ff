package gmailapi

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message holds the addressing and body parts of one outbound email.
// HTMLBody is optional; when present the wire message is a
// multipart/alternative with the plain part first.
type Message struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// NewBoundary returns a MIME boundary token unique per message:
// timestamp plus a random suffix.
func NewBoundary() string {
	return fmt.Sprintf("mail_%d_%s", time.Now().UnixNano(), strings.Split(uuid.NewString(), "-")[0])
}

// BuildMIME assembles the RFC 2822 message for msg using the given
// boundary. The boundary is only used when an HTML body is present.
func BuildMIME(msg Message, boundary string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	if len(msg.Cc) > 0 {
		b.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(msg.Cc, ", ")))
	}
	if len(msg.Bcc) > 0 {
		b.WriteString(fmt.Sprintf("Bcc: %s\r\n", strings.Join(msg.Bcc, ", ")))
	}
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.TextBody)
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n\r\n")

	b.WriteString(fmt.Sprintf("--%s--", boundary))

	return b.String()
}

// EncodeRaw encodes the full message the way the Gmail API expects:
// standard base64 with '+' -> '-', '/' -> '_' and trailing '=' stripped.
func EncodeRaw(mime string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(mime))
}
