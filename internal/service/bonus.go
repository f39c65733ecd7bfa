package service

import (
	"context"
	"time"

	"lenabot/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService mutates bonus balances on behalf of the developer flow.
// Bonus messages are permanent per user; only daily counters expire.
type AdminService struct {
	repo   BonusRepository
	events EventPublisher
	log    *zap.Logger
}

func NewAdminService(repo BonusRepository, events EventPublisher, log *zap.Logger) *AdminService {
	return &AdminService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// Grant adds amount bonus messages to the target and returns the change
// plus the recomputed total daily limit.
func (s *AdminService) Grant(ctx context.Context, targetID int64, amount int, actorID int64, now time.Time) (*model.BonusChange, int, error) {
	if amount < 0 {
		return nil, 0, ErrNegativeAmount
	}
	return s.adjust(ctx, targetID, amount, actorID, now)
}

// Revoke removes up to amount bonus messages; the balance never goes
// below zero.
func (s *AdminService) Revoke(ctx context.Context, targetID int64, amount int, actorID int64, now time.Time) (*model.BonusChange, int, error) {
	if amount < 0 {
		return nil, 0, ErrNegativeAmount
	}
	return s.adjust(ctx, targetID, -amount, actorID, now)
}

func (s *AdminService) adjust(ctx context.Context, targetID int64, delta int, actorID int64, now time.Time) (*model.BonusChange, int, error) {
	change, err := s.repo.AdjustBonus(ctx, targetID, delta, actorID, now)
	if err != nil {
		s.log.Error("failed to adjust bonus",
			zap.Int64("target_id", targetID),
			zap.Int("delta", delta),
			zap.Error(err))
		return nil, 0, err
	}

	referrals, err := s.repo.GetReferralCount(ctx, targetID)
	if err != nil {
		return nil, 0, err
	}

	total := BaseLimit + ReferralBonusPerInvite*referrals + change.ResultingBonus

	s.log.Info("bonus balance changed",
		zap.Int64("target_id", targetID),
		zap.Int64("actor_id", actorID),
		zap.Int("delta", delta),
		zap.Int("resulting_bonus", change.ResultingBonus))

	if s.events != nil {
		s.events.Publish(model.Event{
			ID:     uuid.New(),
			Type:   model.EventBonusChanged,
			UserID: targetID,
			Delta:  delta,
			Limit:  total,
			At:     now,
		})
	}

	return change, total, nil
}
