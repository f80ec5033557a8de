package model

import (
	"time"

	"gorm.io/gorm"
)

// 角色类型：permission控制访问，position只是组织头衔，两套互不相干
const (
	RoleTypePermission = "permission"
	RoleTypePosition   = "position"
)

// Role 角色模型
type Role struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code       string         `gorm:"column:code;unique;not null;size:32" json:"code"`
	Name       string         `gorm:"column:name;not null;size:32" json:"name"`
	RoleType   string         `gorm:"column:role_type;not null;size:16;default:'permission'" json:"roleType"`
	Remark     string         `gorm:"column:remark;size:255" json:"remark"`
	CreateTime time.Time      `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
	UpdateTime time.Time      `gorm:"column:update_time;not null;autoUpdateTime" json:"updateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at" json:"-"`

	Permissions []Permission `gorm:"many2many:role_permission;" json:"permissions,omitempty"`
}

func (r *Role) TableName() string {
	return "crm_role"
}

// Permission 权限模型，Code为原子能力串，如 customer:list
type Permission struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code       string         `gorm:"column:code;unique;not null;size:64" json:"code"`
	Name       string         `gorm:"column:name;not null;size:64" json:"name"`
	Remark     string         `gorm:"column:remark;size:255" json:"remark"`
	CreateTime time.Time      `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at" json:"-"`
}

func (p *Permission) TableName() string {
	return "crm_permission"
}

// UserRole 用户-角色绑定模型
type UserRole struct {
	UserID     uint64    `gorm:"column:user_id;primaryKey" json:"userId"`
	RoleID     uint64    `gorm:"column:role_id;primaryKey" json:"roleId"`
	CreateTime time.Time `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
}

func (u *UserRole) TableName() string {
	return "user_role"
}

// RolePermission 角色-权限绑定模型
type RolePermission struct {
	RoleID       uint64    `gorm:"column:role_id;primaryKey" json:"roleId"`
	PermissionID uint64    `gorm:"column:permission_id;primaryKey" json:"permissionId"`
	CreateTime   time.Time `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
}

func (r *RolePermission) TableName() string {
	return "role_permission"
}
