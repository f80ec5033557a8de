package model

import (
	"time"

	"gorm.io/gorm"
)

// 目标周期类型
const (
	TargetTypeMonth = "month"
	TargetTypeWeek  = "week"
)

// 目标状态
const (
	TargetStatusInactive int8 = 0
	TargetStatusActive   int8 = 1
)

// EmployeeTarget 员工周期目标：按 年+月 或 年+周 设置四类数量目标
type EmployeeTarget struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID         uint64         `gorm:"column:user_id;not null;index" json:"userId"`
	Year           int            `gorm:"column:year;not null" json:"year"`
	Month          int            `gorm:"column:month" json:"month"` // targetType=month时有效
	Week           int            `gorm:"column:week" json:"week"`   // targetType=week时有效
	TargetType     string         `gorm:"column:target_type;not null;size:8" json:"targetType"`
	ConsultTarget  int            `gorm:"column:consult_target;not null;default:0" json:"consultTarget"`
	FollowUpTarget int            `gorm:"column:follow_up_target;not null;default:0" json:"followUpTarget"`
	DevelopTarget  int            `gorm:"column:develop_target;not null;default:0" json:"developTarget"`
	RegisterTarget int            `gorm:"column:register_target;not null;default:0" json:"registerTarget"`
	Status         int8           `gorm:"column:status;not null;default:1" json:"status"`
	CreateTime     time.Time      `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
	UpdateTime     time.Time      `gorm:"column:update_time;not null;autoUpdateTime" json:"updateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at" json:"-"`
}

func (t *EmployeeTarget) TableName() string {
	return "crm_employee_target"
}
