package auth

// UserInfo 给前端的用户视图。Buttons与Permissions内容相同，
// 前端按钮级控制读buttons别名。
type UserInfo struct {
	ID          uint64   `json:"id"`
	UserName    string   `json:"userName"`
	NickName    string   `json:"nickName"`
	Avatar      string   `json:"avatar"`
	DeptName    string   `json:"deptName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Buttons     []string `json:"buttons"`
}

// LoginResp 登录响应，ExpiresAt为访问令牌绝对过期时间（epoch毫秒）
type LoginResp struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    int64     `json:"expiresAt"`
	UserInfo     *UserInfo `json:"userInfo"`
}

// RefreshResp 刷新响应，只发新的访问令牌，刷新令牌不轮换
type RefreshResp struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// CaptchaResp 验证码响应，图片为PNG data URI
type CaptchaResp struct {
	CaptchaID    string `json:"captchaId"`
	CaptchaImage string `json:"captchaImage"`
}
