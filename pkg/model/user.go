package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户状态
const (
	UserStatusEnabled  = "ENABLED"
	UserStatusDisabled = "DISABLED"
)

// User CRM系统用户模型
type User struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserName    string         `gorm:"column:user_name;unique;not null;size:32" json:"userName"`
	Password    string         `gorm:"column:password;not null;size:128" json:"-"` // 隐藏密码
	NickName    string         `gorm:"column:nick_name;size:32" json:"nickName"`
	Phone       string         `gorm:"column:phone;size:20" json:"phone"`
	Email       string         `gorm:"column:email;size:64" json:"email"`
	Gender      string         `gorm:"column:gender;size:8" json:"gender"`
	Position    string         `gorm:"column:position;size:32" json:"position"`
	Avatar      string         `gorm:"column:avatar;size:255" json:"avatar"`
	Status      string         `gorm:"column:status;not null;size:16;default:'ENABLED'" json:"status"`
	DeptID      uint64         `gorm:"column:dept_id;index" json:"deptId"`
	LastLoginIP string         `gorm:"column:last_login_ip;size:64" json:"lastLoginIp"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt"`
	CreateTime  time.Time      `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
	UpdateTime  time.Time      `gorm:"column:update_time;not null;autoUpdateTime" json:"updateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at" json:"-"` // 逻辑删除

	Department *Department `gorm:"foreignKey:DeptID" json:"department,omitempty"`
	Roles      []Role      `gorm:"many2many:user_role;" json:"roles,omitempty"`
}

func (u *User) TableName() string {
	return "crm_user"
}

// Enabled 账号是否可用
func (u *User) Enabled() bool {
	return u.Status == UserStatusEnabled
}

// RoleCodes 用户持有的全部角色编码（含权限角色与岗位角色）
func (u *User) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		codes = append(codes, r.Code)
	}
	return codes
}

// PermissionCodes 用户权限集合，按角色->权限连接表展开后去重
func (u *User) PermissionCodes() []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0)
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Code]; ok {
				continue
			}
			seen[p.Code] = struct{}{}
			codes = append(codes, p.Code)
		}
	}
	return codes
}

// Session 构建会话投影。缓存里只放这份紧凑视图，权威数据始终在库里。
func (u *User) Session() *UserSession {
	return &UserSession{
		ID:          u.ID,
		UserName:    u.UserName,
		NickName:    u.NickName,
		Roles:       u.RoleCodes(),
		Permissions: u.PermissionCodes(),
	}
}

// Department 部门模型
type Department struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string         `gorm:"column:name;not null;size:64" json:"name"`
	Remark     string         `gorm:"column:remark;size:255" json:"remark"`
	CreateTime time.Time      `gorm:"column:create_time;not null;autoCreateTime" json:"createTime"`
	UpdateTime time.Time      `gorm:"column:update_time;not null;autoUpdateTime" json:"updateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at" json:"-"`
}

func (d *Department) TableName() string {
	return "crm_department"
}
