package stats

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/canxing/crm-admin/pkg/model"
)

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ActiveTarget(ctx context.Context, userID uint64, year int, targetType string, number int) (*model.EmployeeTarget, error) {
	q := s.db.WithContext(ctx).Model(&model.EmployeeTarget{}).
		Where("user_id = ? AND year = ? AND target_type = ? AND status = ?",
			userID, year, targetType, model.TargetStatusActive)
	if targetType == model.TargetTypeWeek {
		q = q.Where("week = ?", number)
	} else {
		q = q.Where("month = ?", number)
	}

	var target model.EmployeeTarget
	if err := q.First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &target, nil
}

func (s *gormStore) StatusCounts(ctx context.Context, userID uint64, w Window) (map[string]int64, error) {
	var rows []struct {
		Status string
		Cnt    int64
	}
	err := s.db.WithContext(ctx).Model(&model.Customer{}).
		Select("status, COUNT(*) AS cnt").
		Where("responsible_person_id = ? AND updated_at BETWEEN ? AND ?", userID, w.Start, w.End).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Cnt
	}
	return counts, nil
}
