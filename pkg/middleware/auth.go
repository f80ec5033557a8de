package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/canxing/crm-admin/pkg/comm"
	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/model"
	"github.com/canxing/crm-admin/pkg/utils"
)

const sessionKey = "crm/session"

// TokenBlacklist 登出拉黑检查
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// SessionResolver 会话解析：先查缓存，未命中回源重建（cache-aside）
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID uint64) (*model.UserSession, error)
}

// SessionFrom 取出本次请求已解析的会话，认证中间件之前调用返回nil
func SessionFrom(c *gin.Context) *model.UserSession {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*model.UserSession)
	return sess
}

// ExtractBearer 从Authorization头取出bearer令牌，格式不符返回空串
func ExtractBearer(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Auth 认证中间件：验签验期 -> 查黑名单 -> 解析会话挂到上下文。
// 过期与失效给前端不同的401文案，前端据此决定静默刷新还是强制重登。
func Auth(tm *utils.TokenManager, bl TokenBlacklist, sessions SessionResolver, l *logrus.Logger) gin.HandlerFunc {
	log := l.WithField("middleware", "auth")
	return func(c *gin.Context) {
		token := ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, errs.New(errs.KindAuthentication, "missing authentication token"))
			return
		}

		claims, err := tm.ParseAccessToken(token)
		if err != nil {
			msg := "token invalid"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "token expired"
			}
			abort(c, errs.New(errs.KindAuthentication, msg))
			return
		}

		// 黑名单优先于一切：签名再合法，登出过的令牌也不放行
		listed, err := bl.IsBlacklisted(c.Request.Context(), token)
		if err != nil {
			log.Errorf("blacklist lookup failed, user: %d, error: %v", claims.UserID, err)
			abort(c, errs.Wrap(errs.KindSystem, "internal server error", err))
			return
		}
		if listed {
			abort(c, errs.New(errs.KindAuthentication, "token invalid"))
			return
		}

		sess, err := sessions.ResolveSession(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Errorf("failed to resolve session, user: %d, error: %v", claims.UserID, err)
			abort(c, err)
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	comm.Fail(c, err)
	c.Abort()
}
