package history

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Send outcome statuses. Entries are append-only; the only later mutation
// is nulling connection_id when a mail connection is deleted.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Entry records one send attempt's outcome.
type Entry struct {
	ID           int64      `db:"id" json:"id"`
	OwnerID      int64      `db:"owner_id" json:"owner_id"`
	TemplateID   *int64     `db:"template_id" json:"template_id,omitempty"`
	ConnectionID *int64     `db:"connection_id" json:"connection_id,omitempty"`
	To           StringList `db:"to_recipients" json:"to"`
	Cc           StringList `db:"cc_recipients" json:"cc,omitempty"`
	Bcc          StringList `db:"bcc_recipients" json:"bcc,omitempty"`
	Subject      string     `db:"subject" json:"subject"`
	Content      string     `db:"content" json:"content"`
	Status       string     `db:"status" json:"status"`
	MessageID    *string    `db:"message_id" json:"message_id,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	SentAt       time.Time  `db:"sent_at" json:"sent_at"`
}

// StringList stores a recipient list as JSONB.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.New("recipient column is not a byte slice")
	}
	return json.Unmarshal(data, l)
}
