package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims 访问令牌载荷
type AccessClaims struct {
	UserID   uint64 `json:"userId"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

// RefreshClaims 刷新令牌载荷，只带用户ID
type RefreshClaims struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager 双密钥签发：访问令牌与刷新令牌各用一套secret和有效期
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        "crm-admin",
	}
}

// GenerateAccessToken 签发访问令牌，返回令牌与绝对过期时间
func (m *TokenManager) GenerateAccessToken(userID uint64, userName string) (string, time.Time, error) {
	now := time.Now()
	expireAt := now.Add(m.accessTTL)
	claims := AccessClaims{
		UserID:   userID,
		UserName: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	return token, expireAt, err
}

// GenerateRefreshToken 签发刷新令牌
func (m *TokenManager) GenerateRefreshToken(userID uint64) (string, time.Time, error) {
	now := time.Now()
	expireAt := now.Add(m.refreshTTL)
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	return token, expireAt, err
}

// ParseAccessToken 校验访问令牌。过期与其他失效需要区分：
// 过期客户端可以静默刷新，失效必须重新登录。
func (m *TokenManager) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.accessSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

// ParseRefreshToken 校验刷新令牌
func (m *TokenManager) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	var claims RefreshClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.refreshSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

// RemainingLifetime 不验签读取exp，算剩余寿命。登出拉黑用：
// 走到这里的令牌已经通过过认证，登出只需要知道还要封多久。
func (m *TokenManager) RemainingLifetime(tokenString string) time.Duration {
	var claims AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
