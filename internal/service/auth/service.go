package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/middleware"
	"github.com/canxing/crm-admin/pkg/model"
	"github.com/canxing/crm-admin/pkg/utils"
)

// 登录失败一律用同一句话，避免被用来探测用户名是否存在
const msgBadCredentials = "invalid username or password"

// Config 认证侧TTL配置
type Config struct {
	SessionTTL time.Duration // 会话投影TTL，默认1800s
	CaptchaTTL time.Duration // 验证码TTL，默认300s
}

type service struct {
	store Store
	cache Cache
	tm    *utils.TokenManager
	cfg   Config
	log   *logrus.Entry
}

func NewService(store Store, cache Cache, tm *utils.TokenManager, cfg Config, l *logrus.Logger) Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1800 * time.Second
	}
	if cfg.CaptchaTTL <= 0 {
		cfg.CaptchaTTL = 300 * time.Second
	}
	return &service{
		store: store,
		cache: cache,
		tm:    tm,
		cfg:   cfg,
		log:   l.WithField("service", "auth"),
	}
}

func (s *service) Login(ctx context.Context, req *LoginReq) (*LoginResp, error) {
	if req.CaptchaID != "" && !s.VerifyCaptcha(ctx, req.CaptchaID, req.CaptchaCode) {
		return nil, errs.New(errs.KindValidation, "captcha incorrect")
	}

	user, err := s.store.GetByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warnf("login failed, unknown user: %s", req.UserName)
			return nil, errs.New(errs.KindAuthentication, msgBadCredentials)
		}
		s.log.Errorf("failed to load user: %s, error: %v", req.UserName, err)
		return nil, errs.Translate(err)
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		s.log.Warnf("login failed, wrong password, user: %s", req.UserName)
		return nil, errs.New(errs.KindAuthentication, msgBadCredentials)
	}

	if !user.Enabled() {
		s.log.Warnf("login rejected, account disabled, user: %s", req.UserName)
		return nil, errs.New(errs.KindAuthentication, "account disabled")
	}

	accessToken, expireAt, err := s.tm.GenerateAccessToken(user.ID, user.UserName)
	if err != nil {
		s.log.Errorf("failed to generate access token, user: %s, error: %v", req.UserName, err)
		return nil, errs.Wrap(errs.KindSystem, "failed to issue token", err)
	}
	refreshToken, _, err := s.tm.GenerateRefreshToken(user.ID)
	if err != nil {
		s.log.Errorf("failed to generate refresh token, user: %s, error: %v", req.UserName, err)
		return nil, errs.Wrap(errs.KindSystem, "failed to issue token", err)
	}

	// 登录成功与否只由口令校验决定，下面两步失败都不反悔
	if err := s.cache.SetUserSession(ctx, user.Session(), s.cfg.SessionTTL); err != nil {
		s.log.Errorf("failed to cache session, user: %d, error: %v", user.ID, err)
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID, req.IP, time.Now()); err != nil {
		s.log.Errorf("failed to update last login, user: %d, error: %v", user.ID, err)
	}

	return &LoginResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expireAt.UnixMilli(),
		UserInfo:     buildUserInfo(user),
	}, nil
}

// Logout 尽力而为：拉黑剩余寿命内的令牌，清掉会话缓存，从不报错。
// 没令牌、令牌解不开、重复登出都是安全的空操作。
func (s *service) Logout(ctx context.Context, authHeader string, sess *model.UserSession) {
	token := middleware.ExtractBearer(authHeader)
	if token != "" {
		if remaining := s.tm.RemainingLifetime(token); remaining > 0 {
			if err := s.cache.Blacklist(ctx, token, remaining); err != nil {
				s.log.Errorf("failed to blacklist token: %v", err)
			}
		}
	}
	if sess != nil {
		if err := s.cache.DelUserSession(ctx, sess.ID); err != nil {
			s.log.Errorf("failed to clear session, user: %d, error: %v", sess.ID, err)
		}
	}
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResp, error) {
	claims, err := s.tm.ParseRefreshToken(refreshToken)
	if err != nil {
		// 过期是可恢复的（重新登录即可），篡改/伪造不是，文案分开
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, errs.New(errs.KindAuthentication, "refresh token expired")
		}
		return nil, errs.New(errs.KindAuthentication, "refresh token invalid")
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.KindAuthentication, "account unavailable")
		}
		s.log.Errorf("failed to load user: %d, error: %v", claims.UserID, err)
		return nil, errs.Translate(err)
	}
	if !user.Enabled() {
		return nil, errs.New(errs.KindAuthentication, "account unavailable")
	}

	accessToken, expireAt, err := s.tm.GenerateAccessToken(user.ID, user.UserName)
	if err != nil {
		s.log.Errorf("failed to generate access token, user: %d, error: %v", user.ID, err)
		return nil, errs.Wrap(errs.KindSystem, "failed to issue token", err)
	}

	return &RefreshResp{
		AccessToken: accessToken,
		ExpiresAt:   expireAt.UnixMilli(),
	}, nil
}

// CurrentUser 绕过缓存直读库，保证这个端点拿到的永远是新鲜数据。
// 被删号但令牌还没到期的用户，会在这里被拒掉。
func (s *service) CurrentUser(ctx context.Context, userID uint64) (*UserInfo, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.KindNotFound, "user not found")
		}
		s.log.Errorf("failed to load user: %d, error: %v", userID, err)
		return nil, errs.Translate(err)
	}

	// 顺手刷新缓存里的投影
	if err := s.cache.SetUserSession(ctx, user.Session(), s.cfg.SessionTTL); err != nil {
		s.log.Errorf("failed to refresh session cache, user: %d, error: %v", userID, err)
	}

	return buildUserInfo(user), nil
}

func (s *service) GenerateCaptcha(ctx context.Context) (*CaptchaResp, error) {
	id, code, image, err := utils.GenerateCaptcha()
	if err != nil {
		s.log.Errorf("failed to render captcha: %v", err)
		return nil, errs.Wrap(errs.KindSystem, "failed to generate captcha", err)
	}
	if err := s.cache.SetCaptcha(ctx, id, code, s.cfg.CaptchaTTL); err != nil {
		s.log.Errorf("failed to store captcha: %v", err)
		return nil, errs.Wrap(errs.KindSystem, "failed to generate captcha", err)
	}
	return &CaptchaResp{CaptchaID: id, CaptchaImage: image}, nil
}

// VerifyCaptcha 一次性消费：不管对错，取出即删。大小写不敏感。
func (s *service) VerifyCaptcha(ctx context.Context, id, code string) bool {
	if id == "" || code == "" {
		return false
	}
	stored, err := s.cache.TakeCaptcha(ctx, id)
	if err != nil {
		s.log.Errorf("failed to take captcha: %v", err)
		return false
	}
	if stored == "" {
		return false
	}
	return strings.EqualFold(stored, code)
}

// ResolveSession cache-aside：缓存命中直接用，未命中回源重建并回填
func (s *service) ResolveSession(ctx context.Context, userID uint64) (*model.UserSession, error) {
	sess, err := s.cache.GetUserSession(ctx, userID)
	if err != nil {
		s.log.Errorf("session cache read failed, user: %d, error: %v", userID, err)
	} else if sess != nil {
		return sess, nil
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.KindNotFound, "user not found")
		}
		return nil, errs.Translate(err)
	}

	sess = user.Session()
	if err := s.cache.SetUserSession(ctx, sess, s.cfg.SessionTTL); err != nil {
		s.log.Errorf("failed to repopulate session, user: %d, error: %v", userID, err)
	}
	return sess, nil
}

func buildUserInfo(user *model.User) *UserInfo {
	deptName := ""
	if user.Department != nil {
		deptName = user.Department.Name
	}
	perms := user.PermissionCodes()
	return &UserInfo{
		ID:          user.ID,
		UserName:    user.UserName,
		NickName:    user.NickName,
		Avatar:      user.Avatar,
		DeptName:    deptName,
		Roles:       user.RoleCodes(),
		Permissions: perms,
		Buttons:     perms,
	}
}
