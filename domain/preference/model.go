package preference

import "time"

// DefaultHighlightColor is used until the owner picks one.
const DefaultHighlightColor = "blue"

// validColors is the fixed highlight color enum.
var validColors = map[string]struct{}{
	"blue":   {},
	"purple": {},
	"pink":   {},
	"green":  {},
	"orange": {},
	"red":    {},
}

// IsValidColor reports whether the value is part of the highlight enum.
func IsValidColor(color string) bool {
	_, ok := validColors[color]
	return ok
}

// Preferences is the single per-user settings row, upserted in place.
type Preferences struct {
	OwnerID        int64     `db:"owner_id" json:"owner_id"`
	HighlightColor string    `db:"highlight_color" json:"highlight_color"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type UpdatePreferencesRequest struct {
	HighlightColor *string `json:"highlight_color"`
}
