package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/engagement"
	"github.com/cppla/questhub/models"
	"github.com/cppla/questhub/store"
	"github.com/cppla/questhub/utils"
)

// CheckInController handles daily check-in and make-up endpoints.
type CheckInController struct {
	db       *gorm.DB
	checkins *store.CheckInStore
	now      func() time.Time
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB) *CheckInController {
	return &CheckInController{db: db, checkins: store.NewCheckInStore(db), now: time.Now}
}

type checkInOp func(state *engagement.CheckInState, now time.Time) (engagement.CheckInState, error)

// Status returns the streak, level and what the caller may do next.
func (c *CheckInController) Status(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	state, _, err := c.checkins.Find(ctx.Request.Context(), address)
	if err != nil {
		utils.Sugar.Errorw("load check-in status", "address", address, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load check-in status")
		return
	}
	utils.Success(ctx, engagement.StatusOf(state, c.now()))
}

// Daily records a normal check-in.
func (c *CheckInController) Daily(ctx *gin.Context) {
	c.apply(ctx, models.CheckInKindDaily, engagement.CheckIn)
}

// Makeup credits the days missed since the last check-in.
func (c *CheckInController) Makeup(ctx *gin.Context) {
	c.apply(ctx, models.CheckInKindMakeup, engagement.MakeUpCheckIn)
}

// History lists recent check-ins, newest first.
func (c *CheckInController) History(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	logs, err := c.checkins.Logs(ctx.Request.Context(), address, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load check-in history")
		return
	}
	utils.Success(ctx, gin.H{"items": logs})
}

// apply runs op between a versioned read and a conditional write inside one transaction.
func (c *CheckInController) apply(ctx *gin.Context, kind string, op checkInOp) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	rctx := ctx.Request.Context()
	now := c.now()
	points := config.Get().CheckinRewardPoints

	var next engagement.CheckInState
	var credited int
	err := c.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		checkins := c.checkins.WithTx(tx)
		prev, version, err := checkins.Find(rctx, address)
		if err != nil {
			return err
		}
		before := 0
		if prev != nil {
			before = prev.ConsecutiveDays
		}

		next, err = op(prev, now)
		if err != nil {
			return err
		}
		next.Address = address
		credited = next.ConsecutiveDays - before

		if err := checkins.Save(rctx, next, version); err != nil {
			return err
		}
		entry := &models.CheckInLog{
			Address:      address,
			Kind:         kind,
			DaysCredited: credited,
			StreakAfter:  next.ConsecutiveDays,
			LevelAfter:   next.Level.String(),
			Points:       points,
			CheckedAt:    now,
		}
		if err := checkins.AppendLog(rctx, entry); err != nil {
			return err
		}
		return store.NewUserStore(tx).AddPoints(rctx, address, points)
	})

	metrics := utils.AppMetrics()
	if err != nil {
		var window *engagement.MakeupWindowError
		switch {
		case errors.As(err, &window):
			metrics.ObserveCheckIn(kind, "window_expired")
			utils.ErrorWithData(ctx, http.StatusBadRequest, 40032, err.Error(), gin.H{
				"level":   window.Level.String(),
				"allowed": window.Allowed,
				"elapsed": window.Elapsed,
			})
		case errors.Is(err, engagement.ErrAlreadyCheckedIn):
			metrics.ObserveCheckIn(kind, "already_checked_in")
			utils.Error(ctx, http.StatusBadRequest, 40030, err.Error())
		case errors.Is(err, engagement.ErrNoPriorCheckIn):
			metrics.ObserveCheckIn(kind, "no_prior_check_in")
			utils.Error(ctx, http.StatusBadRequest, 40031, err.Error())
		case errors.Is(err, store.ErrConflict):
			metrics.ObserveCheckIn(kind, "conflict")
			utils.Error(ctx, http.StatusConflict, 40930, "check-in already in progress, retry")
		default:
			metrics.ObserveCheckIn(kind, "error")
			utils.Sugar.Errorw("check-in failed", "address", address, "kind", kind, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to record check-in")
		}
		return
	}

	metrics.ObserveCheckIn(kind, "ok")
	utils.Sugar.Infow("check-in recorded", "address", address, "kind", kind, "days", credited, "streak", next.ConsecutiveDays)
	utils.Success(ctx, gin.H{
		"days_credited":  credited,
		"points_awarded": points,
		"status":         engagement.StatusOf(&next, now),
	})
}
