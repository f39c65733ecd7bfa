package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lenabot/internal/repository"
	"lenabot/internal/service"
	"lenabot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type statsRoutes struct {
	repo *repository.Repository
}

func NewStatsRoutes(handler *gin.RouterGroup, repo *repository.Repository) {
	r := &statsRoutes{repo: repo}
	h := handler.Group("/stats")
	{
		h.GET("/quota", r.GetQuotaUsage)
		h.GET("/referral", r.GetReferral)
	}
}

type QuotaUsageResponse struct {
	Day   string       `json:"day"`
	Users []UsageEntry `json:"users"`
}

type UsageEntry struct {
	UserID        int64 `json:"user_id"`
	UsedToday     int   `json:"used_today"`
	BonusMessages int   `json:"bonus_messages"`
}

// GetQuotaUsage returns today's usage and bonus balance for the requested
// user ids, e.g. GET /stats/quota?ids=1,2,3.
func (r *statsRoutes) GetQuotaUsage(c *gin.Context) {
	log := logger.Logger()

	raw := c.Query("ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be integers"})
			return
		}
		ids = append(ids, id)
	}

	day := time.Now().UTC().Format(service.DayFormat)
	usages, err := r.repo.GetUserUsage(c.Request.Context(), ids, day)
	if err != nil {
		log.Error("failed to load quota usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load quota usage"})
		return
	}

	out := QuotaUsageResponse{Day: day, Users: make([]UsageEntry, len(usages))}
	for i, u := range usages {
		out.Users[i] = UsageEntry{
			UserID:        u.UserID,
			UsedToday:     u.UsedToday,
			BonusMessages: u.BonusMessages,
		}
	}

	c.JSON(http.StatusOK, out)
}

type ReferralResponse struct {
	InvitedID  int64     `json:"invited_id"`
	ReferrerID int64     `json:"referrer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// GetReferral looks up who invited a user, e.g.
// GET /stats/referral?invited_id=42.
func (r *statsRoutes) GetReferral(c *gin.Context) {
	invitedID, err := strconv.ParseInt(c.Query("invited_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invited_id must be an integer"})
		return
	}

	ref, err := r.repo.GetReferral(c.Request.Context(), invitedID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no referral recorded"})
			return
		}
		logger.Logger().Error("failed to load referral", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load referral"})
		return
	}

	c.JSON(http.StatusOK, ReferralResponse{
		InvitedID:  ref.InvitedID,
		ReferrerID: ref.ReferrerID,
		CreatedAt:  ref.CreatedAt,
	})
}
