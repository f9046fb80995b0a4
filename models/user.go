package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is a wallet-identified account. Address is stored in EIP-55 checksum form.
type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Address        string          `gorm:"size:42;uniqueIndex;not null" json:"address"`
	InviterAddress string          `gorm:"size:42;index" json:"inviter_address"`
	Nickname       string          `gorm:"size:64" json:"nickname"`
	Points         int             `gorm:"default:0" json:"points"`
	Balance        decimal.Decimal `gorm:"type:decimal(36,6);not null;default:0" json:"balance"`
	LastLoginAt    *time.Time      `json:"last_login_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
