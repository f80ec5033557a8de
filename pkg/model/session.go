package model

// UserSession 会话投影，缓存键 user:{id}，TTL受配置约束。
// 该视图必须永远可以从库里重建，缓存只是加速，不是权威。
type UserSession struct {
	ID          uint64   `json:"id"`
	UserName    string   `json:"userName"`
	NickName    string   `json:"nickName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasPermission 精确匹配权限串，无通配/层级语义
func (s *UserSession) HasPermission(code string) bool {
	for _, p := range s.Permissions {
		if p == code {
			return true
		}
	}
	return false
}
