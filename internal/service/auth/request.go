package auth

// LoginReq 登录请求。IP由handler从连接上取，不信任请求体。
// 带了captchaId就必须通过验证码校验。
type LoginReq struct {
	UserName    string `json:"userName" binding:"required,min=3,max=32"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captchaId"`
	CaptchaCode string `json:"captchaCode"`
	IP          string `json:"-"`
}

// RefreshReq 刷新请求，刷新令牌走请求体不走Authorization头
type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
