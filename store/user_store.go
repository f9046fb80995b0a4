package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cppla/questhub/models"
)

var (
	ErrInviterNotFound = errors.New("inviter not found")
	ErrSelfInvite      = errors.New("cannot invite yourself")
)

// UserStore manages wallet accounts and the referral chain.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) WithTx(tx *gorm.DB) *UserStore {
	return &UserStore{db: tx}
}

// Find returns the user by address or gorm.ErrRecordNotFound.
func (s *UserStore) Find(ctx context.Context, address string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Login upserts the user and stamps the login time. The inviter is only bound
// when the account is created.
func (s *UserStore) Login(ctx context.Context, address, inviter string, now time.Time) (*models.User, bool, error) {
	u, err := s.Find(ctx, address)
	if err == nil {
		if uerr := s.db.WithContext(ctx).Model(u).Update("last_login_at", now).Error; uerr != nil {
			return nil, false, fmt.Errorf("stamp login: %w", uerr)
		}
		u.LastLoginAt = &now
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("load user: %w", err)
	}

	if inviter != "" {
		if inviter == address {
			return nil, false, ErrSelfInvite
		}
		if _, ierr := s.Find(ctx, inviter); ierr != nil {
			if errors.Is(ierr, gorm.ErrRecordNotFound) {
				return nil, false, ErrInviterNotFound
			}
			return nil, false, fmt.Errorf("load inviter: %w", ierr)
		}
	}

	u = &models.User{Address: address, InviterAddress: inviter, Balance: decimal.Zero, LastLoginAt: &now}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

// ResolveInviters returns the direct and indirect inviter of address. Missing links are "".
func (s *UserStore) ResolveInviters(ctx context.Context, address string) (string, string, error) {
	u, err := s.Find(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	direct := u.InviterAddress
	if direct == "" {
		return "", "", nil
	}
	parent, err := s.Find(ctx, direct)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return direct, "", nil
		}
		return "", "", err
	}
	indirect := parent.InviterAddress
	if indirect == address {
		indirect = ""
	}
	return direct, indirect, nil
}

// Invitees lists users directly invited by address.
func (s *UserStore) Invitees(ctx context.Context, address string, page, pageSize int) ([]models.User, int64, error) {
	q := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).Where("inviter_address = ?", address)
	}
	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count invitees: %w", err)
	}
	var users []models.User
	if err := q().Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list invitees: %w", err)
	}
	return users, total, nil
}

// AddPoints increments check-in points.
func (s *UserStore) AddPoints(ctx context.Context, address string, points int) error {
	if points == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("address = ?", address).
		Update("points", gorm.Expr("points + ?", points)).Error
}

// Credit adds amount to the user's balance.
func (s *UserStore) Credit(ctx context.Context, address string, amount decimal.Decimal) error {
	if address == "" || amount.IsZero() {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("address = ?", address).
		Update("balance", gorm.Expr("balance + CAST(? AS DECIMAL(36,6))", amount.String()))
	if res.Error != nil {
		return fmt.Errorf("credit %s: %w", address, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("credit %s: %w", address, gorm.ErrRecordNotFound)
	}
	return nil
}
