package customer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/canxing/crm-admin/pkg/comm"
	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/model"
)

// ListReq 客户列表查询
type ListReq struct {
	Name                string `form:"name"`
	Phone               string `form:"phone"`
	Status              string `form:"status"`
	ResponsiblePersonID uint64 `form:"responsiblePersonId"`
	comm.BasePageReq
}

// Service 客户查询与状态流转。状态更新会刷新updatedAt，
// 统计聚合就是按这个时间戳落窗计数的。
type Service interface {
	List(ctx context.Context, req *ListReq) (*comm.Page, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (*model.Customer, error)
}

type service struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewService(db *gorm.DB, l *logrus.Logger) Service {
	return &service{
		db:  db,
		log: l.WithField("service", "customer"),
	}
}

func (s *service) List(ctx context.Context, req *ListReq) (*comm.Page, error) {
	req.Normalize()

	query := s.db.WithContext(ctx).Model(&model.Customer{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Phone != "" {
		query = query.Where("phone = ?", req.Phone)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.ResponsiblePersonID != 0 {
		query = query.Where("responsible_person_id = ?", req.ResponsiblePersonID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		s.log.Errorf("failed to count customers: %v", err)
		return nil, errs.Translate(err)
	}

	var list []model.Customer
	if err := query.Order("updated_at DESC").
		Offset(req.Offset()).Limit(req.Size).
		Find(&list).Error; err != nil {
		s.log.Errorf("failed to list customers: %v", err)
		return nil, errs.Translate(err)
	}

	return comm.NewPage(list, req.Current, req.Size, total), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint64, status string) (*model.Customer, error) {
	if !model.ValidCustomerStatus(status) {
		return nil, errs.Newf(errs.KindValidation, "invalid customer status: %s", status)
	}

	var cust model.Customer
	if err := s.db.WithContext(ctx).First(&cust, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.KindNotFound, "customer not found")
		}
		s.log.Errorf("failed to load customer: %d, error: %v", id, err)
		return nil, errs.Translate(err)
	}

	// Update走钩子，autoUpdateTime会把updated_at推进到当前时刻
	if err := s.db.WithContext(ctx).Model(&cust).Update("status", status).Error; err != nil {
		s.log.Errorf("failed to update customer status: %d, error: %v", id, err)
		return nil, errs.Translate(err)
	}
	return &cust, nil
}
