package service

import (
	"context"
	"testing"
	"time"

	"lenabot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestQuotaService_Admit(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	day := "2025-06-10"

	tests := []struct {
		name          string
		userID        int64
		mockSetup     func(repo *mocks.MockQuotaRepository)
		expectAllowed bool
		expectUsed    int
		expectLimit   int
		expectError   bool
	}{
		{
			name:   "base limit only",
			userID: 100,
			mockSetup: func(repo *mocks.MockQuotaRepository) {
				repo.On("GetReferralCount", mock.Anything, int64(100)).Return(0, nil)
				repo.On("GetBonusCount", mock.Anything, int64(100)).Return(0, nil)
				repo.On("ConsumeDailyQuota", mock.Anything, int64(100), day, 35).
					Return(1, true, nil)
			},
			expectAllowed: true,
			expectUsed:    1,
			expectLimit:   35,
		},
		{
			name:   "referrals and bonus raise the limit",
			userID: 101,
			mockSetup: func(repo *mocks.MockQuotaRepository) {
				repo.On("GetReferralCount", mock.Anything, int64(101)).Return(2, nil)
				repo.On("GetBonusCount", mock.Anything, int64(101)).Return(5, nil)
				repo.On("ConsumeDailyQuota", mock.Anything, int64(101), day, 35+3*2+5).
					Return(12, true, nil)
			},
			expectAllowed: true,
			expectUsed:    12,
			expectLimit:   46,
		},
		{
			name:   "denied at limit",
			userID: 102,
			mockSetup: func(repo *mocks.MockQuotaRepository) {
				repo.On("GetReferralCount", mock.Anything, int64(102)).Return(0, nil)
				repo.On("GetBonusCount", mock.Anything, int64(102)).Return(0, nil)
				repo.On("ConsumeDailyQuota", mock.Anything, int64(102), day, 35).
					Return(35, false, nil)
			},
			expectAllowed: false,
			expectUsed:    35,
			expectLimit:   35,
		},
		{
			name:   "store failure denies",
			userID: 103,
			mockSetup: func(repo *mocks.MockQuotaRepository) {
				repo.On("GetReferralCount", mock.Anything, int64(103)).Return(0, nil)
				repo.On("GetBonusCount", mock.Anything, int64(103)).Return(0, nil)
				repo.On("ConsumeDailyQuota", mock.Anything, int64(103), day, 35).
					Return(0, false, assert.AnError)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockQuotaRepository{}
			tt.mockSetup(repo)

			s := NewQuotaService(repo, nil, zap.NewNop())
			s.lastSweep = now // keep the opportunistic sweep out of these cases

			result, err := s.Admit(context.Background(), tt.userID, now)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectAllowed, result.Allowed)
			assert.Equal(t, tt.expectUsed, result.Used)
			assert.Equal(t, tt.expectLimit, result.Limit)

			repo.AssertExpectations(t)
		})
	}
}

func TestQuotaService_AdmitSweepsOncePerInterval(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	repo := &mocks.MockQuotaRepository{}
	repo.On("GetReferralCount", mock.Anything, int64(1)).Return(0, nil)
	repo.On("GetBonusCount", mock.Anything, int64(1)).Return(0, nil)
	repo.On("ConsumeDailyQuota", mock.Anything, int64(1), "2025-06-10", 35).
		Return(1, true, nil)
	repo.On("DeleteCountersBefore", mock.Anything, "2025-06-09").
		Return(int64(3), nil).Once()

	s := NewQuotaService(repo, nil, zap.NewNop())

	_, err := s.Admit(context.Background(), 1, now)
	assert.NoError(t, err)

	// Second admit inside the interval must not sweep again.
	_, err = s.Admit(context.Background(), 1, now.Add(time.Minute))
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestQuotaService_Status(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	repo := &mocks.MockQuotaRepository{}
	repo.On("GetReferralCount", mock.Anything, int64(7)).Return(3, nil)
	repo.On("GetBonusCount", mock.Anything, int64(7)).Return(10, nil)
	repo.On("GetDailyCount", mock.Anything, int64(7), "2025-06-10").Return(20, nil)

	s := NewQuotaService(repo, nil, zap.NewNop())

	status, err := s.Status(context.Background(), 7, now)
	assert.NoError(t, err)
	assert.Equal(t, 35, status.BaseLimit)
	assert.Equal(t, 3, status.ReferralCount)
	assert.Equal(t, 9, status.ReferralBonus)
	assert.Equal(t, 10, status.BonusMessages)
	assert.Equal(t, 54, status.TotalLimit)
	assert.Equal(t, 20, status.Used)
	assert.Equal(t, 34, status.Remaining)
}

func TestQuotaService_StatusRemainingFloorsAtZero(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	repo := &mocks.MockQuotaRepository{}
	repo.On("GetReferralCount", mock.Anything, int64(8)).Return(0, nil)
	repo.On("GetBonusCount", mock.Anything, int64(8)).Return(0, nil)
	repo.On("GetDailyCount", mock.Anything, int64(8), "2025-06-10").Return(40, nil)

	s := NewQuotaService(repo, nil, zap.NewNop())

	status, err := s.Status(context.Background(), 8, now)
	assert.NoError(t, err)
	assert.Equal(t, 0, status.Remaining)
}
