package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/cppla/questhub/engagement"
)

// CheckIn is the single streak row per wallet. Version guards concurrent updates.
type CheckIn struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Address         string     `gorm:"size:42;uniqueIndex;not null" json:"address"`
	ConsecutiveDays int        `gorm:"not null;default:0" json:"consecutive_days"`
	Level           string     `gorm:"size:16;index;not null;default:'Initiate'" json:"level"`
	LastCheckIn     *time.Time `json:"last_check_in"`
	Version         int64      `gorm:"not null;default:1" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BeforeSave keeps Level consistent with ConsecutiveDays on every write path.
func (c *CheckIn) BeforeSave(tx *gorm.DB) error {
	c.Level = engagement.LevelFor(c.ConsecutiveDays).String()
	return nil
}

// State converts the row into the engagement representation.
func (c *CheckIn) State() *engagement.CheckInState {
	return &engagement.CheckInState{
		Address:         c.Address,
		ConsecutiveDays: c.ConsecutiveDays,
		LastCheckIn:     c.LastCheckIn,
		Level:           engagement.LevelFor(c.ConsecutiveDays),
	}
}

// CheckInLog stores one row per successful check-in or make-up.
type CheckInLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Address      string    `gorm:"size:42;index;not null" json:"address"`
	Kind         string    `gorm:"size:16;not null" json:"kind"`
	DaysCredited int       `json:"days_credited"`
	StreakAfter  int       `json:"streak_after"`
	LevelAfter   string    `gorm:"size:16" json:"level_after"`
	Points       int       `json:"points"`
	CheckedAt    time.Time `gorm:"index;not null" json:"checked_at"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	CheckInKindDaily  = "daily"
	CheckInKindMakeup = "makeup"
)
