// Package store persists engagement state with gorm. Reads and conditional writes are
// separated so the caller can run the pure engagement rules in between.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/questhub/engagement"
	"github.com/cppla/questhub/models"
)

var (
	// ErrConflict is returned when the row changed between read and write.
	ErrConflict = errors.New("check-in state changed concurrently")
)

// CheckInStore reads and writes the per-address streak row.
type CheckInStore struct {
	db *gorm.DB
}

// NewCheckInStore wraps db.
func NewCheckInStore(db *gorm.DB) *CheckInStore {
	return &CheckInStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *CheckInStore) WithTx(tx *gorm.DB) *CheckInStore {
	return &CheckInStore{db: tx}
}

// Find returns the stored state and its version. A missing row yields (nil, 0, nil).
func (s *CheckInStore) Find(ctx context.Context, address string) (*engagement.CheckInState, int64, error) {
	var row models.CheckIn
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load check-in %s: %w", address, err)
	}
	return row.State(), row.Version, nil
}

// Save persists next. prevVersion 0 inserts a new row; otherwise the update only
// applies when the stored version still equals prevVersion.
func (s *CheckInStore) Save(ctx context.Context, next engagement.CheckInState, prevVersion int64) error {
	db := s.db.WithContext(ctx)
	level := engagement.LevelFor(next.ConsecutiveDays).String()

	if prevVersion == 0 {
		row := models.CheckIn{
			Address:         next.Address,
			ConsecutiveDays: next.ConsecutiveDays,
			Level:           level,
			LastCheckIn:     next.LastCheckIn,
			Version:         1,
		}
		if err := db.Create(&row).Error; err != nil {
			var n int64
			if cerr := db.Model(&models.CheckIn{}).Where("address = ?", next.Address).Count(&n).Error; cerr == nil && n > 0 {
				return ErrConflict
			}
			return fmt.Errorf("create check-in %s: %w", next.Address, err)
		}
		return nil
	}

	res := db.Model(&models.CheckIn{}).
		Where("address = ? AND version = ?", next.Address, prevVersion).
		Updates(map[string]interface{}{
			"consecutive_days": next.ConsecutiveDays,
			"level":            level,
			"last_check_in":    next.LastCheckIn,
			"version":          prevVersion + 1,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update check-in %s: %w", next.Address, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// AppendLog records a successful check-in.
func (s *CheckInStore) AppendLog(ctx context.Context, entry *models.CheckInLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append check-in log: %w", err)
	}
	return nil
}

// Logs returns the newest check-in history entries for address.
func (s *CheckInStore) Logs(ctx context.Context, address string, limit int) ([]models.CheckInLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var out []models.CheckInLog
	err := s.db.WithContext(ctx).Where("address = ?", address).Order("checked_at DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list check-in logs: %w", err)
	}
	return out, nil
}
