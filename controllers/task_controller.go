package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/models"
	"github.com/cppla/questhub/store"
	"github.com/cppla/questhub/utils"
)

var (
	errSubmissionReviewed = errors.New("submission already reviewed")
	errTaskFull           = errors.New("task has no completions left")
)

// TaskController handles bounty tasks, submissions and their review.
type TaskController struct {
	db *gorm.DB
}

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{db: db}
}

// CreateTask publishes a bounty.
func (t *TaskController) CreateTask(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		Title          string `json:"title" binding:"required"`
		Description    string `json:"description"`
		Reward         string `json:"reward" binding:"required"`
		MaxCompletions int    `json:"max_completions"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(req.Title)
	if l := len([]rune(title)); l == 0 || l > 255 {
		utils.Error(ctx, http.StatusBadRequest, 40061, "title must be 1-255 characters")
		return
	}
	reward, err := decimal.NewFromString(strings.TrimSpace(req.Reward))
	if err != nil || !reward.IsPositive() {
		utils.Error(ctx, http.StatusBadRequest, 40062, "reward must be a positive decimal")
		return
	}
	if req.MaxCompletions < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40063, "max_completions must not be negative")
		return
	}

	task := models.Task{
		Publisher:      address,
		Title:          title,
		Description:    utils.Sanitize(req.Description),
		Reward:         reward.Round(6),
		MaxCompletions: req.MaxCompletions,
		Status:         models.TaskStatusOpen,
	}
	if err := t.db.WithContext(ctx.Request.Context()).Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to create task")
		return
	}
	utils.Success(ctx, task)
}

// ListTasks returns tasks newest first, optionally filtered by status or publisher.
func (t *TaskController) ListTasks(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	status := strings.TrimSpace(ctx.Query("status"))
	publisher := strings.TrimSpace(ctx.Query("publisher"))

	query := func() *gorm.DB {
		q := t.db.WithContext(ctx.Request.Context()).Model(&models.Task{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if publisher != "" {
			if addr, err := utils.NormalizeAddress(publisher); err == nil {
				publisher = addr
			}
			q = q.Where("publisher = ?", publisher)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to count tasks")
		return
	}
	var tasks []models.Task
	if err := query().Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to retrieve tasks")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      tasks,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// GetTask returns one task.
func (t *TaskController) GetTask(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid task id")
		return
	}
	var task models.Task
	if err := t.db.WithContext(ctx.Request.Context()).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "task not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load task")
		return
	}
	utils.Success(ctx, task)
}

// SubmitTask records the caller's completion claim. One submission per task and address.
func (t *TaskController) SubmitTask(ctx *gin.Context) {
	address, ok := getAddress(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid task id")
		return
	}
	var req struct {
		Proof string `json:"proof"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40065, "invalid request payload")
		return
	}

	db := t.db.WithContext(ctx.Request.Context())
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "task not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load task")
		return
	}
	if task.Status != models.TaskStatusOpen {
		utils.Error(ctx, http.StatusBadRequest, 40066, "task is closed")
		return
	}
	if task.Publisher == address {
		utils.Error(ctx, http.StatusBadRequest, 40067, "cannot submit to your own task")
		return
	}

	var existing int64
	if err := db.Model(&models.Submission{}).Where("task_id = ? AND address = ?", id, address).Count(&existing).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to check submissions")
		return
	}
	if existing > 0 {
		utils.Error(ctx, http.StatusConflict, 40960, "already submitted")
		return
	}

	sub := models.Submission{
		TaskID:  id,
		Address: address,
		Proof:   utils.Sanitize(req.Proof),
		Status:  models.SubmissionPending,
	}
	if err := db.Omit("Task").Create(&sub).Error; err != nil {
		utils.Error(ctx, http.StatusConflict, 40960, "already submitted")
		return
	}
	utils.Success(ctx, sub)
}

// ListSubmissions returns submissions for review, filtered by status (default pending).
func (t *TaskController) ListSubmissions(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	status := strings.TrimSpace(ctx.DefaultQuery("status", models.SubmissionPending))

	query := func() *gorm.DB {
		return t.db.WithContext(ctx.Request.Context()).Model(&models.Submission{}).Where("status = ?", status)
	}
	var total int64
	if err := query().Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to count submissions")
		return
	}
	var subs []models.Submission
	if err := query().Preload("Task").Order("created_at ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&subs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to retrieve submissions")
		return
	}
	utils.Success(ctx, gin.H{
		"items":      subs,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// ApproveSubmission accepts a pending submission, writes the reward distribution for the
// participant and their inviters, and credits balances.
func (t *TaskController) ApproveSubmission(ctx *gin.Context) {
	reviewer, _ := getAddress(ctx)
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40068, "invalid submission id")
		return
	}

	rctx := ctx.Request.Context()
	cfg := config.Get()
	now := time.Now()

	var dist models.RewardDistribution
	err := t.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Submission
		if err := tx.Preload("Task").First(&sub, id).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", sub.ID, models.SubmissionPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionApproved,
				"reviewed_by": reviewer,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSubmissionReviewed
		}

		res = tx.Model(&models.Task{}).
			Where("id = ? AND (max_completions = 0 OR completed < max_completions)", sub.TaskID).
			Update("completed", gorm.Expr("completed + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errTaskFull
		}
		if sub.Task.MaxCompletions > 0 && sub.Task.Completed+1 >= sub.Task.MaxCompletions {
			if err := tx.Model(&models.Task{}).Where("id = ?", sub.TaskID).Update("status", models.TaskStatusClosed).Error; err != nil {
				return err
			}
		}

		users := store.NewUserStore(tx)
		direct, indirect, err := users.ResolveInviters(rctx, sub.Address)
		if err != nil {
			return err
		}
		dist = splitReward(sub, direct, indirect, cfg.DirectReferralPercent, cfg.IndirectReferralPercent)
		if err := store.NewRewardStore(tx).Create(rctx, &dist); err != nil {
			return err
		}

		if err := users.Credit(rctx, dist.ParticipantAddress, dist.UserReward); err != nil {
			return err
		}
		if err := users.Credit(rctx, dist.DirectInviterAddress, dist.DirectInviterReward); err != nil {
			return err
		}
		return users.Credit(rctx, dist.IndirectInviterAddress, dist.IndirectInviterReward)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40461, "submission not found")
		case errors.Is(err, errSubmissionReviewed):
			utils.Error(ctx, http.StatusConflict, 40961, err.Error())
		case errors.Is(err, errTaskFull):
			utils.Error(ctx, http.StatusConflict, 40962, err.Error())
		default:
			utils.Sugar.Errorw("approve submission failed", "submission", id, "err", err)
			utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to approve submission")
		}
		return
	}

	utils.CacheDelete(rewardCacheKeys(dist)...)
	utils.AppMetrics().ObserveApproval()
	utils.Sugar.Infow("submission approved", "submission", id, "participant", dist.ParticipantAddress, "reviewer", reviewer)
	utils.Success(ctx, dist)
}

// RejectSubmission marks a pending submission rejected.
func (t *TaskController) RejectSubmission(ctx *gin.Context) {
	reviewer, _ := getAddress(ctx)
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40068, "invalid submission id")
		return
	}
	res := t.db.WithContext(ctx.Request.Context()).Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, models.SubmissionPending).
		Updates(map[string]interface{}{
			"status":      models.SubmissionRejected,
			"reviewed_by": reviewer,
			"reviewed_at": time.Now(),
		})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to reject submission")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusConflict, 40961, errSubmissionReviewed.Error())
		return
	}
	utils.Success(ctx, gin.H{"id": id, "status": models.SubmissionRejected})
}

// splitReward builds the distribution row. Inviter shares are percentages of the task reward.
func splitReward(sub models.Submission, direct, indirect string, directPct, indirectPct int) models.RewardDistribution {
	reward := sub.Task.Reward
	hundred := decimal.NewFromInt(100)
	dist := models.RewardDistribution{
		TaskID:                sub.TaskID,
		SubmissionID:          sub.ID,
		ParticipantAddress:    sub.Address,
		UserReward:            reward,
		DirectInviterReward:   decimal.Zero,
		IndirectInviterReward: decimal.Zero,
	}
	if direct != "" {
		dist.DirectInviterAddress = direct
		dist.DirectInviterReward = reward.Mul(decimal.NewFromInt(int64(directPct))).Div(hundred).Round(6)
	}
	if indirect != "" {
		dist.IndirectInviterAddress = indirect
		dist.IndirectInviterReward = reward.Mul(decimal.NewFromInt(int64(indirectPct))).Div(hundred).Round(6)
	}
	return dist
}

func rewardCacheKeys(d models.RewardDistribution) []string {
	keys := []string{rewardCacheKey(d.ParticipantAddress)}
	if d.DirectInviterAddress != "" {
		keys = append(keys, rewardCacheKey(d.DirectInviterAddress))
	}
	if d.IndirectInviterAddress != "" {
		keys = append(keys, rewardCacheKey(d.IndirectInviterAddress))
	}
	return keys
}
