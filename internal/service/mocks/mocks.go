package mocks

import (
	"context"
	"time"

	"lenabot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockQuotaRepository struct {
	mock.Mock
}

func (m *MockQuotaRepository) GetReferralCount(ctx context.Context, referrerID int64) (int, error) {
	args := m.Called(ctx, referrerID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotaRepository) GetBonusCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotaRepository) GetDailyCount(ctx context.Context, userID int64, day string) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotaRepository) ConsumeDailyQuota(ctx context.Context, userID int64, day string, limit int) (int, bool, error) {
	args := m.Called(ctx, userID, day, limit)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockQuotaRepository) DeleteCountersBefore(ctx context.Context, cutoff string) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) CreateReferral(ctx context.Context, invitedID, referrerID int64, createdAt time.Time) (bool, error) {
	args := m.Called(ctx, invitedID, referrerID, createdAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferralRepository) GetReferralCount(ctx context.Context, referrerID int64) (int, error) {
	args := m.Called(ctx, referrerID)
	return args.Int(0), args.Error(1)
}

type MockBonusRepository struct {
	mock.Mock
}

func (m *MockBonusRepository) AdjustBonus(ctx context.Context, userID int64, delta int, actorID int64, now time.Time) (*model.BonusChange, error) {
	args := m.Called(ctx, userID, delta, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BonusChange), args.Error(1)
}

func (m *MockBonusRepository) GetReferralCount(ctx context.Context, referrerID int64) (int, error) {
	args := m.Called(ctx, referrerID)
	return args.Int(0), args.Error(1)
}
