package service

import (
	"context"
	"errors"
	"time"

	"lenabot/internal/model"
)

var (
	ErrSelfReferral   = errors.New("user cannot refer themselves")
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

type Service struct {
	*QuotaService
	*ReferralService
	*AdminService
}

func NewService(quota *QuotaService, referral *ReferralService, admin *AdminService) *Service {
	return &Service{
		QuotaService:    quota,
		ReferralService: referral,
		AdminService:    admin,
	}
}

type QuotaServiceI interface {
	Admit(ctx context.Context, userID int64, now time.Time) (*model.AdmitResult, error)
	Status(ctx context.Context, userID int64, now time.Time) (*model.QuotaStatus, error)
}

type ReferralServiceI interface {
	Register(ctx context.Context, invitedID, referrerID int64, now time.Time) (bool, error)
	Count(ctx context.Context, referrerID int64) (int, error)
}

type AdminServiceI interface {
	Grant(ctx context.Context, targetID int64, amount int, actorID int64, now time.Time) (*model.BonusChange, int, error)
	Revoke(ctx context.Context, targetID int64, amount int, actorID int64, now time.Time) (*model.BonusChange, int, error)
}

type QuotaRepository interface {
	GetReferralCount(ctx context.Context, referrerID int64) (int, error)
	GetBonusCount(ctx context.Context, userID int64) (int, error)
	GetDailyCount(ctx context.Context, userID int64, day string) (int, error)
	ConsumeDailyQuota(ctx context.Context, userID int64, day string, limit int) (int, bool, error)
	DeleteCountersBefore(ctx context.Context, cutoff string) (int64, error)
}

type ReferralRepository interface {
	CreateReferral(ctx context.Context, invitedID, referrerID int64, createdAt time.Time) (bool, error)
	GetReferralCount(ctx context.Context, referrerID int64) (int, error)
}

type BonusRepository interface {
	AdjustBonus(ctx context.Context, userID int64, delta int, actorID int64, now time.Time) (*model.BonusChange, error)
	GetReferralCount(ctx context.Context, referrerID int64) (int, error)
}

// EventPublisher receives quota and bonus events for the ops feed.
type EventPublisher interface {
	Publish(event model.Event)
}
