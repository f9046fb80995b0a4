package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TaskStatusOpen   = "open"
	TaskStatusClosed = "closed"

	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Task is a bounty published by a user.
type Task struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Publisher      string          `gorm:"size:42;index;not null" json:"publisher"`
	Title          string          `gorm:"size:255;not null" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	Reward         decimal.Decimal `gorm:"type:decimal(36,6);not null" json:"reward"`
	MaxCompletions int             `gorm:"default:0" json:"max_completions"` // 0 = unlimited
	Completed      int             `gorm:"default:0" json:"completed"`
	Status         string          `gorm:"size:16;index;default:'open'" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Submission is a participant's claim of having completed a task.
type Submission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TaskID     uint       `gorm:"uniqueIndex:idx_submission_task_addr;not null" json:"task_id"`
	Address    string     `gorm:"size:42;uniqueIndex:idx_submission_task_addr;not null" json:"address"`
	Proof      string     `gorm:"type:text" json:"proof"`
	Status     string     `gorm:"size:16;index;default:'pending'" json:"status"`
	ReviewedBy string     `gorm:"size:42" json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Task       Task       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"task"`
}
