package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cppla/questhub/engagement"
)

// RewardDistribution is written once when a submission is approved and never updated.
type RewardDistribution struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	TaskID                 uint            `gorm:"index;not null" json:"task_id"`
	SubmissionID           uint            `gorm:"uniqueIndex;not null" json:"submission_id"`
	ParticipantAddress     string          `gorm:"size:42;index;not null" json:"participant_address"`
	DirectInviterAddress   string          `gorm:"size:42;index" json:"direct_inviter_address"`
	IndirectInviterAddress string          `gorm:"size:42;index" json:"indirect_inviter_address"`
	UserReward             decimal.Decimal `gorm:"type:decimal(36,6);not null" json:"user_reward"`
	DirectInviterReward    decimal.Decimal `gorm:"type:decimal(36,6);not null" json:"direct_inviter_reward"`
	IndirectInviterReward  decimal.Decimal `gorm:"type:decimal(36,6);not null" json:"indirect_inviter_reward"`
	CreatedAt              time.Time       `json:"created_at"`
}

// Record converts the row for aggregation.
func (r RewardDistribution) Record() engagement.RewardRecord {
	return engagement.RewardRecord{
		TaskID:                 strconv.FormatUint(uint64(r.TaskID), 10),
		ParticipantAddress:     r.ParticipantAddress,
		DirectInviterAddress:   r.DirectInviterAddress,
		IndirectInviterAddress: r.IndirectInviterAddress,
		UserReward:             r.UserReward,
		DirectInviterReward:    r.DirectInviterReward,
		IndirectInviterReward:  r.IndirectInviterReward,
	}
}

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{&User{}, &CheckIn{}, &CheckInLog{}, &Task{}, &Submission{}, &RewardDistribution{}}
}
