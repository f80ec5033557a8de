package auth

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/canxing/crm-admin/pkg/model"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore 基于gorm的凭据库
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Preload("Department").
		Where("user_name = ?", userName).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) GetByID(ctx context.Context, userID uint64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Preload("Department").
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) UpdateLastLogin(ctx context.Context, userID uint64, ip string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_ip": ip,
			"last_login_at": at,
		}).Error
}
