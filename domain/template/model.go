package template

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// MaxPerOwner is the policy cap on stored templates per owner. It is
// enforced by the HTTP handler before Create is invoked, not inside the
// store itself.
const MaxPerOwner = 10

// Template is one stored template. Content keeps the historical
// "Subject: ...\n\n" prefix convention: subject and body travel as a single
// string.
type Template struct {
	ID        int64       `db:"id" json:"id"`
	OwnerID   int64       `db:"owner_id" json:"owner_id"`
	Name      string      `db:"name" json:"name"`
	Content   string      `db:"content" json:"content"`
	Variables VariableMap `db:"variables" json:"variables"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

const subjectPrefix = "Subject: "

// SplitSubject splits content stored under the subject-prefix convention
// into its subject line and body. Content without the prefix (or without
// the blank line terminating it) comes back unchanged with an empty
// subject. The convention is known to be fragile for bodies that
// legitimately start with the literal prefix; it is kept for
// compatibility with existing stored templates.
func SplitSubject(content string) (subject, body string) {
	if !strings.HasPrefix(content, subjectPrefix) {
		return "", content
	}
	rest := content[len(subjectPrefix):]
	idx := strings.Index(rest, "\n\n")
	if idx < 0 {
		return "", content
	}
	return strings.TrimSpace(rest[:idx]), rest[idx+2:]
}

// VariableMap stores the template's variable name/value pairs as JSONB.
type VariableMap map[string]string

func (m VariableMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *VariableMap) Scan(src interface{}) error {
	if src == nil {
		*m = VariableMap{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.New("variables column is not a byte slice")
	}
	return json.Unmarshal(data, m)
}

type CreateTemplateRequest struct {
	Name      string            `json:"name"`
	Content   string            `json:"content"`
	Variables map[string]string `json:"variables"`
}

// UpdateTemplateRequest carries a partial update; nil fields keep the
// stored value.
type UpdateTemplateRequest struct {
	Name      *string            `json:"name"`
	Content   *string            `json:"content"`
	Variables *map[string]string `json:"variables"`
}

// DeleteResult reports the outcome of a delete operation.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
	Count   int  `json:"count"`
}

type PreviewRequest struct {
	Content   string            `json:"content"`
	Variables map[string]string `json:"variables"`
}

type PreviewResponse struct {
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Text       string   `json:"text"`
	Unresolved []string `json:"unresolved"`
}

type ImportRequest struct {
	Data string `json:"data"`
}
