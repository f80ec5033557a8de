package model

import (
	"time"

	"gorm.io/gorm"
)

// 客户状态枚举，统计口径只认 consult/effective_visit/new_develop/registered 四种
const (
	CustomerStatusConsult        = "consult"
	CustomerStatusEffectiveVisit = "effective_visit"
	CustomerStatusNewDevelop     = "new_develop"
	CustomerStatusRegistered     = "registered"
	CustomerStatusArrived        = "arrived"
	CustomerStatusRejected       = "rejected"
	CustomerStatusVip            = "vip"
	CustomerStatusWechatAdded    = "wechat_added"
	CustomerStatusNotArrived     = "not_arrived"
	CustomerStatusEarly25        = "early_25"
)

// CustomerStatuses 全部合法状态，顺序与前端下拉一致
var CustomerStatuses = []string{
	CustomerStatusConsult,
	CustomerStatusEffectiveVisit,
	CustomerStatusNewDevelop,
	CustomerStatusRegistered,
	CustomerStatusArrived,
	CustomerStatusRejected,
	CustomerStatusVip,
	CustomerStatusWechatAdded,
	CustomerStatusNotArrived,
	CustomerStatusEarly25,
}

// ValidCustomerStatus 校验状态取值
func ValidCustomerStatus(status string) bool {
	for _, s := range CustomerStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Customer 客户模型。只存当前状态 + 最后修改时间，不存状态流转历史，
// 统计按 updated_at 落窗计数（跨期的重复/漏计已知且接受）。
type Customer struct {
	ID                  uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name                string         `gorm:"column:name;not null;size:64" json:"name"`
	Phone               string         `gorm:"column:phone;size:20;index" json:"phone"`
	Status              string         `gorm:"column:status;not null;size:32;default:'consult';index" json:"status"`
	Source              string         `gorm:"column:source;size:32" json:"source"`
	Remark              string         `gorm:"column:remark;size:255" json:"remark"`
	ResponsiblePersonID uint64         `gorm:"column:responsible_person_id;not null;index" json:"responsiblePersonId"`
	CreatedAt           time.Time      `gorm:"column:created_at;not null;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;not null;autoUpdateTime;index" json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"column:deleted_at" json:"-"`
}

func (c *Customer) TableName() string {
	return "crm_customer"
}
