package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ReferralService struct {
	repo ReferralRepository
	log  *zap.Logger
}

func NewReferralService(repo ReferralRepository, log *zap.Logger) *ReferralService {
	return &ReferralService{
		repo: repo,
		log:  log,
	}
}

// Register stores the referral edge for a newly invited user. Irreflexive,
// and the first referrer wins: repeated calls return false without
// touching the stored edge.
func (s *ReferralService) Register(ctx context.Context, invitedID, referrerID int64, now time.Time) (bool, error) {
	if invitedID == referrerID {
		return false, ErrSelfReferral
	}

	created, err := s.repo.CreateReferral(ctx, invitedID, referrerID, now)
	if err != nil {
		return false, err
	}

	if created {
		s.log.Info("new referral",
			zap.Int64("invited_id", invitedID),
			zap.Int64("referrer_id", referrerID))
	}

	return created, nil
}

func (s *ReferralService) Count(ctx context.Context, referrerID int64) (int, error) {
	return s.repo.GetReferralCount(ctx, referrerID)
}
