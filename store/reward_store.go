package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/questhub/engagement"
	"github.com/cppla/questhub/models"
)

// RewardStore persists reward distributions.
type RewardStore struct {
	db *gorm.DB
}

// NewRewardStore wraps db.
func NewRewardStore(db *gorm.DB) *RewardStore {
	return &RewardStore{db: db}
}

// WithTx returns a store bound to tx.
func (s *RewardStore) WithTx(tx *gorm.DB) *RewardStore {
	return &RewardStore{db: tx}
}

// Create inserts a distribution. Rows are never updated afterwards.
func (s *RewardStore) Create(ctx context.Context, rec *models.RewardDistribution) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create reward distribution: %w", err)
	}
	return nil
}

func (s *RewardStore) byAddress(address string) *gorm.DB {
	return s.db.Model(&models.RewardDistribution{}).
		Where("participant_address = ? OR direct_inviter_address = ? OR indirect_inviter_address = ?", address, address, address)
}

// FindByAddress returns every distribution referencing address in any role.
func (s *RewardStore) FindByAddress(ctx context.Context, address string) ([]engagement.RewardRecord, error) {
	var rows []models.RewardDistribution
	if err := s.byAddress(address).WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find rewards for %s: %w", address, err)
	}
	out := make([]engagement.RewardRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out, nil
}

// ListByAddress pages distributions newest first.
func (s *RewardStore) ListByAddress(ctx context.Context, address string, page, pageSize int) ([]models.RewardDistribution, int64, error) {
	var total int64
	if err := s.byAddress(address).WithContext(ctx).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count rewards for %s: %w", address, err)
	}
	var rows []models.RewardDistribution
	err := s.byAddress(address).WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list rewards for %s: %w", address, err)
	}
	return rows, total, nil
}
