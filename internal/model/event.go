package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventQuotaAdmitted = "quota_admitted"
	EventQuotaDenied   = "quota_denied"
	EventBonusChanged  = "bonus_changed"
)

// Event is pushed to connected ops clients over the websocket feed.
type Event struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	UserID int64     `json:"user_id"`
	Used   int       `json:"used,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Delta  int       `json:"delta,omitempty"`
	At     time.Time `json:"at"`
}
