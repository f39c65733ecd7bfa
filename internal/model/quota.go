package model

import (
	"time"

	"github.com/google/uuid"
)

type Referral struct {
	InvitedID  int64
	ReferrerID int64
	CreatedAt  time.Time
}

type AdmitResult struct {
	Allowed bool
	Used    int
	Limit   int
}

type QuotaStatus struct {
	UserID        int64
	BaseLimit     int
	ReferralCount int
	ReferralBonus int
	BonusMessages int
	TotalLimit    int
	Used          int
	Remaining     int
}

// BonusChange is one admin mutation of a user's bonus balance,
// recorded in the audit table.
type BonusChange struct {
	ID             uuid.UUID
	UserID         int64
	Delta          int
	ResultingBonus int
	ActorID        int64
	CreatedAt      time.Time
}

type UserUsage struct {
	UserID        int64
	UsedToday     int
	BonusMessages int
}
