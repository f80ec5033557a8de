package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/canxing/crm-admin/pkg/model"
)

const (
	// 会话投影 Key: user:{id}
	KeyUserSession = "user:%d"
	// 令牌黑名单 Key: blacklist:{token}，TTL=登出时令牌剩余寿命
	KeyBlacklist = "blacklist:%s"
	// 验证码 Key: captcha:{id}，一次性
	KeyCaptcha = "captcha:%s"
)

// Service 会话缓存服务。所有键都带TTL，不需要显式清理。
type Service struct {
	rdb redis.Cmdable
	log *logrus.Entry
}

func NewService(rdb redis.Cmdable, l *logrus.Logger) *Service {
	return &Service{
		rdb: rdb,
		log: l.WithField("service", "cache"),
	}
}

// SetUserSession 写入会话投影
func (s *Service) SetUserSession(ctx context.Context, sess *model.UserSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fmt.Sprintf(KeyUserSession, sess.ID), data, ttl).Err()
}

// GetUserSession 读取会话投影，未命中返回 (nil, nil)
func (s *Service) GetUserSession(ctx context.Context, userID uint64) (*model.UserSession, error) {
	data, err := s.rdb.Get(ctx, fmt.Sprintf(KeyUserSession, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var sess model.UserSession
	if err := json.Unmarshal(data, &sess); err != nil {
		// 缓存内容损坏按未命中处理，调用方会回源重建
		s.log.Errorf("corrupt session entry for user %d: %v", userID, err)
		return nil, nil
	}
	return &sess, nil
}

// DelUserSession 删除会话投影
func (s *Service) DelUserSession(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, fmt.Sprintf(KeyUserSession, userID)).Err()
}

// Blacklist 拉黑令牌，ttl为令牌剩余寿命
func (s *Service) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, fmt.Sprintf(KeyBlacklist, token), "1", ttl).Err()
}

// IsBlacklisted 令牌是否在黑名单内
func (s *Service) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	cnt, err := s.rdb.Exists(ctx, fmt.Sprintf(KeyBlacklist, token)).Result()
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// SetCaptcha 存验证码明文
func (s *Service) SetCaptcha(ctx context.Context, id, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, fmt.Sprintf(KeyCaptcha, id), code, ttl).Err()
}

// TakeCaptcha 取出并删除验证码。GETDEL保证每个id只能被消费一次，
// 并发竞争的输家看到的是未命中，直接失败。未命中返回 ("", nil)。
func (s *Service) TakeCaptcha(ctx context.Context, id string) (string, error) {
	code, err := s.rdb.GetDel(ctx, fmt.Sprintf(KeyCaptcha, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return code, nil
}
