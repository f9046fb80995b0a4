package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/engagement"
	"github.com/cppla/questhub/store"
	"github.com/cppla/questhub/utils"
)

// RewardController serves reward totals, reward history and referrals.
type RewardController struct {
	rewards *store.RewardStore
	users   *store.UserStore
}

// NewRewardController creates a RewardController.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{rewards: store.NewRewardStore(db), users: store.NewUserStore(db)}
}

func rewardCacheKey(address string) string {
	return "cache:rewards:" + address
}

// Summary returns the caller's totals per role with two decimals.
func (r *RewardController) Summary(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	metrics := utils.AppMetrics()
	key := rewardCacheKey(address)
	if b, ok := utils.CacheGetBytes(key); ok {
		metrics.ObserveRewardSummary(true)
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	metrics.ObserveRewardSummary(false)

	records, err := r.rewards.FindByAddress(ctx.Request.Context(), address)
	if err != nil {
		utils.Sugar.Errorw("load reward records", "address", address, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load rewards")
		return
	}
	payload := engagement.Aggregate(address, records).Formatted()

	ttl := time.Duration(config.Get().RewardCacheTTLSeconds) * time.Second
	utils.CacheSetJSON(key, utils.SuccessEnvelope(payload), ttl)
	utils.Success(ctx, payload)
}

// Records pages every distribution that mentions the caller.
func (r *RewardController) Records(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx)
	rows, total, err := r.rewards.ListByAddress(ctx.Request.Context(), address, page, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to retrieve reward records")
		return
	}
	utils.Success(ctx, gin.H{
		"items":      rows,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// Referrals lists the accounts the caller invited directly.
func (r *RewardController) Referrals(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx)
	users, total, err := r.users.Invitees(ctx.Request.Context(), address, page, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to retrieve referrals")
		return
	}
	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"address":    u.Address,
			"nickname":   u.Nickname,
			"created_at": u.CreatedAt,
		})
	}
	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
