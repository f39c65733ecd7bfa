package service

import (
	"context"
	"sync"
	"time"

	"lenabot/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	BaseLimit              = 35
	ReferralBonusPerInvite = 3

	// DayFormat keys daily counters; a new key implicitly resets usage.
	DayFormat = "2006-01-02"

	sweepInterval = 30 * time.Minute
)

type QuotaService struct {
	repo   QuotaRepository
	events EventPublisher
	log    *zap.Logger

	mu        sync.Mutex
	lastSweep time.Time
}

func NewQuotaService(repo QuotaRepository, events EventPublisher, log *zap.Logger) *QuotaService {
	return &QuotaService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// Admit checks the user's daily quota and consumes one unit when allowed.
// The check and increment happen in a single repository transaction.
// Store failures deny the message (fail closed) and surface the error so
// the router can tell the user to retry.
func (s *QuotaService) Admit(ctx context.Context, userID int64, now time.Time) (*model.AdmitResult, error) {
	s.maybeSweep(ctx, now)

	limit, err := s.limit(ctx, userID)
	if err != nil {
		s.log.Error("failed to compute limit, denying", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	used, allowed, err := s.repo.ConsumeDailyQuota(ctx, userID, now.UTC().Format(DayFormat), limit)
	if err != nil {
		s.log.Error("failed to consume quota, denying", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.publish(userID, used, limit, allowed, now)

	return &model.AdmitResult{
		Allowed: allowed,
		Used:    used,
		Limit:   limit,
	}, nil
}

// Status recomputes the full breakdown; nothing is cached.
func (s *QuotaService) Status(ctx context.Context, userID int64, now time.Time) (*model.QuotaStatus, error) {
	referrals, err := s.repo.GetReferralCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	bonus, err := s.repo.GetBonusCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.repo.GetDailyCount(ctx, userID, now.UTC().Format(DayFormat))
	if err != nil {
		return nil, err
	}

	total := BaseLimit + ReferralBonusPerInvite*referrals + bonus
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}

	return &model.QuotaStatus{
		UserID:        userID,
		BaseLimit:     BaseLimit,
		ReferralCount: referrals,
		ReferralBonus: ReferralBonusPerInvite * referrals,
		BonusMessages: bonus,
		TotalLimit:    total,
		Used:          used,
		Remaining:     remaining,
	}, nil
}

func (s *QuotaService) limit(ctx context.Context, userID int64) (int, error) {
	referrals, err := s.repo.GetReferralCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	bonus, err := s.repo.GetBonusCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	return BaseLimit + ReferralBonusPerInvite*referrals + bonus, nil
}

// maybeSweep deletes counter rows older than yesterday, at most once per
// sweepInterval. Sweep failures are logged and ignored: counters are
// addressed by exact day key, so stale rows never affect admits.
func (s *QuotaService) maybeSweep(ctx context.Context, now time.Time) {
	s.mu.Lock()
	if now.Sub(s.lastSweep) < sweepInterval {
		s.mu.Unlock()
		return
	}
	s.lastSweep = now
	s.mu.Unlock()

	cutoff := now.UTC().AddDate(0, 0, -1).Format(DayFormat)
	deleted, err := s.repo.DeleteCountersBefore(ctx, cutoff)
	if err != nil {
		s.log.Warn("counter sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("swept old daily counters", zap.Int64("deleted", deleted), zap.String("cutoff", cutoff))
	}
}

func (s *QuotaService) publish(userID int64, used, limit int, allowed bool, now time.Time) {
	if s.events == nil {
		return
	}
	eventType := model.EventQuotaAdmitted
	if !allowed {
		eventType = model.EventQuotaDenied
	}
	s.events.Publish(model.Event{
		ID:     uuid.New(),
		Type:   eventType,
		UserID: userID,
		Used:   used,
		Limit:  limit,
		At:     now,
	})
}
