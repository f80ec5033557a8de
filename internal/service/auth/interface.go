package auth

import (
	"context"
	"time"

	"github.com/canxing/crm-admin/pkg/model"
)

// Service 认证核心：登录、登出、刷新、当前用户、验证码、会话解析
type Service interface {
	Login(ctx context.Context, req *LoginReq) (*LoginResp, error)
	Logout(ctx context.Context, authHeader string, sess *model.UserSession)
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshResp, error)
	CurrentUser(ctx context.Context, userID uint64) (*UserInfo, error)
	GenerateCaptcha(ctx context.Context) (*CaptchaResp, error)
	VerifyCaptcha(ctx context.Context, id, code string) bool
	ResolveSession(ctx context.Context, userID uint64) (*model.UserSession, error)
}

// Store 凭据库访问
type Store interface {
	// GetByUserName 带角色->权限图与部门的完整用户
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
	// GetByID 同上，按ID
	GetByID(ctx context.Context, userID uint64) (*model.User, error)
	// UpdateLastLogin 更新最近登录IP与时间
	UpdateLastLogin(ctx context.Context, userID uint64, ip string, at time.Time) error
}

// Cache 认证用到的缓存原语，由internal/cache提供
type Cache interface {
	SetUserSession(ctx context.Context, sess *model.UserSession, ttl time.Duration) error
	GetUserSession(ctx context.Context, userID uint64) (*model.UserSession, error)
	DelUserSession(ctx context.Context, userID uint64) error
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	SetCaptcha(ctx context.Context, id, code string, ttl time.Duration) error
	TakeCaptcha(ctx context.Context, id string) (string, error)
}
