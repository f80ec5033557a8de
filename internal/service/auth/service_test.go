package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/model"
	"github.com/canxing/crm-admin/pkg/utils"
)

type fakeStore struct {
	users         map[string]*model.User
	usersByID     map[uint64]*model.User
	loadErr       error
	lastLoginIP   string
	lastLoginUser uint64
	lastLoginErr  error
}

func newFakeStore(users ...*model.User) *fakeStore {
	s := &fakeStore{
		users:     make(map[string]*model.User),
		usersByID: make(map[uint64]*model.User),
	}
	for _, u := range users {
		s.users[u.UserName] = u
		s.usersByID[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	u, ok := s.users[userName]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeStore) GetByID(ctx context.Context, userID uint64) (*model.User, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	u, ok := s.usersByID[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeStore) UpdateLastLogin(ctx context.Context, userID uint64, ip string, at time.Time) error {
	if s.lastLoginErr != nil {
		return s.lastLoginErr
	}
	s.lastLoginUser = userID
	s.lastLoginIP = ip
	return nil
}

type fakeCache struct {
	sessions    map[uint64]*model.UserSession
	blacklisted map[string]time.Duration
	captchas    map[string]string
	setErr      error
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		sessions:    make(map[uint64]*model.UserSession),
		blacklisted: make(map[string]time.Duration),
		captchas:    make(map[string]string),
	}
}

func (c *fakeCache) SetUserSession(ctx context.Context, sess *model.UserSession, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sessions[sess.ID] = sess
	return nil
}

func (c *fakeCache) GetUserSession(ctx context.Context, userID uint64) (*model.UserSession, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.sessions[userID], nil
}

func (c *fakeCache) DelUserSession(ctx context.Context, userID uint64) error {
	delete(c.sessions, userID)
	return nil
}

func (c *fakeCache) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.blacklisted[token] = ttl
	return nil
}

func (c *fakeCache) SetCaptcha(ctx context.Context, id, code string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.captchas[id] = code
	return nil
}

func (c *fakeCache) TakeCaptcha(ctx context.Context, id string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	code := c.captchas[id]
	delete(c.captchas, id)
	return code, nil
}

func testUser(t *testing.T) *model.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	return &model.User{
		ID:       1,
		UserName: "admin",
		NickName: "管理员",
		Password: hash,
		Status:   model.UserStatusEnabled,
		Roles: []model.Role{
			{Code: "super_admin", Permissions: []model.Permission{
				{Code: "customer:list"},
				{Code: "customer:update"},
			}},
		},
	}
}

func newTestService(store Store, cache Cache) Service {
	tm := utils.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewService(store, cache, tm, Config{}, l)
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t)
	store := newFakeStore(user)
	cache := newFakeCache()
	svc := newTestService(store, cache)

	resp, err := svc.Login(context.Background(), &LoginReq{
		UserName: "admin", Password: "secret123", IP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.ExpiresAt, time.Now().UnixMilli())
	assert.Equal(t, "admin", resp.UserInfo.UserName)
	assert.Equal(t, []string{"customer:list", "customer:update"}, resp.UserInfo.Permissions)
	assert.Equal(t, resp.UserInfo.Permissions, resp.UserInfo.Buttons)

	// 缓存里的会话投影要和模型导出的一致
	assert.Equal(t, user.Session(), cache.sessions[1])
	assert.Equal(t, "10.0.0.1", store.lastLoginIP)
	assert.Equal(t, uint64(1), store.lastLoginUser)
}

// 未知用户与密码错误的文案必须一字不差，否则会泄露用户名是否存在
func TestLoginEnumerationResistance(t *testing.T) {
	svc := newTestService(newFakeStore(testUser(t)), newFakeCache())

	_, errUnknown := svc.Login(context.Background(), &LoginReq{UserName: "nobody", Password: "x"})
	_, errWrongPw := svc.Login(context.Background(), &LoginReq{UserName: "admin", Password: "wrong"})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	assert.True(t, errs.Is(errUnknown, errs.KindAuthentication))
	assert.True(t, errs.Is(errWrongPw, errs.KindAuthentication))
}

func TestLoginDisabledAccount(t *testing.T) {
	user := testUser(t)
	user.Status = model.UserStatusDisabled
	svc := newTestService(newFakeStore(user), newFakeCache())

	_, err := svc.Login(context.Background(), &LoginReq{UserName: "admin", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, "account disabled", errs.From(err).Message)
}

func TestLoginSurvivesCacheFailure(t *testing.T) {
	cache := newFakeCache()
	cache.setErr = errors.New("redis down")
	svc := newTestService(newFakeStore(testUser(t)), cache)

	resp, err := svc.Login(context.Background(), &LoginReq{UserName: "admin", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginWithCaptcha(t *testing.T) {
	cache := newFakeCache()
	cache.captchas["cap-1"] = "1234"
	svc := newTestService(newFakeStore(testUser(t)), cache)

	_, err := svc.Login(context.Background(), &LoginReq{
		UserName: "admin", Password: "secret123",
		CaptchaID: "cap-1", CaptchaCode: "9999",
	})
	require.Error(t, err)
	assert.Equal(t, "captcha incorrect", errs.From(err).Message)

	// 错一次就被消费掉了，同一个ID再试正确答案也不行
	cacheMiss, err2 := svc.Login(context.Background(), &LoginReq{
		UserName: "admin", Password: "secret123",
		CaptchaID: "cap-1", CaptchaCode: "1234",
	})
	require.Error(t, err2)
	assert.Nil(t, cacheMiss)
}

func TestVerifyCaptchaSingleUse(t *testing.T) {
	cache := newFakeCache()
	cache.captchas["cap-1"] = "AbCd"
	svc := newTestService(newFakeStore(), cache)

	assert.False(t, svc.VerifyCaptcha(context.Background(), "", "AbCd"))
	assert.False(t, svc.VerifyCaptcha(context.Background(), "cap-1", ""))

	// 大小写不敏感
	assert.True(t, svc.VerifyCaptcha(context.Background(), "cap-1", "abcd"))
	// 取出即删
	assert.False(t, svc.VerifyCaptcha(context.Background(), "cap-1", "abcd"))
}

func TestLogout(t *testing.T) {
	user := testUser(t)
	cache := newFakeCache()
	cache.sessions[user.ID] = user.Session()
	svc := newTestService(newFakeStore(user), cache)

	tm := utils.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	token, _, err := tm.GenerateAccessToken(user.ID, user.UserName)
	require.NoError(t, err)

	svc.Logout(context.Background(), "Bearer "+token, user.Session())

	ttl, listed := cache.blacklisted[token]
	assert.True(t, listed)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.NotContains(t, cache.sessions, user.ID)

	// 重复登出、缺头、烂令牌都是安全空操作
	svc.Logout(context.Background(), "Bearer "+token, user.Session())
	svc.Logout(context.Background(), "", nil)
	svc.Logout(context.Background(), "Bearer not-a-jwt", nil)
}

func TestRefreshToken(t *testing.T) {
	user := testUser(t)
	svc := newTestService(newFakeStore(user), newFakeCache())

	tm := utils.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	refresh, _, err := tm.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.ExpiresAt, time.Now().UnixMilli())
}

func TestRefreshTokenRejections(t *testing.T) {
	user := testUser(t)
	store := newFakeStore(user)
	svc := newTestService(store, newFakeCache())

	_, err := svc.RefreshToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, "refresh token invalid", errs.From(err).Message)

	expiredTm := utils.NewTokenManager("access-secret", "refresh-secret", time.Hour, -time.Minute)
	expired, _, genErr := expiredTm.GenerateRefreshToken(user.ID)
	require.NoError(t, genErr)
	_, err = svc.RefreshToken(context.Background(), expired)
	require.Error(t, err)
	assert.Equal(t, "refresh token expired", errs.From(err).Message)

	// 刷新时账号被停用：令牌本身有效也不能续
	user.Status = model.UserStatusDisabled
	tm := utils.NewTokenManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	refresh, _, genErr := tm.GenerateRefreshToken(user.ID)
	require.NoError(t, genErr)
	_, err = svc.RefreshToken(context.Background(), refresh)
	require.Error(t, err)
	assert.Equal(t, "account unavailable", errs.From(err).Message)

	// 账号没了同理
	ghost, _, genErr := tm.GenerateRefreshToken(999)
	require.NoError(t, genErr)
	_, err = svc.RefreshToken(context.Background(), ghost)
	require.Error(t, err)
	assert.Equal(t, "account unavailable", errs.From(err).Message)
}

func TestCurrentUser(t *testing.T) {
	user := testUser(t)
	cache := newFakeCache()
	svc := newTestService(newFakeStore(user), cache)

	info, err := svc.CurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", info.UserName)
	// 顺手回填了缓存
	assert.Equal(t, user.Session(), cache.sessions[user.ID])

	_, err = svc.CurrentUser(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestResolveSessionCacheAside(t *testing.T) {
	user := testUser(t)
	cache := newFakeCache()
	store := newFakeStore(user)
	svc := newTestService(store, cache)

	// 未命中：回源重建并回填
	sess, err := svc.ResolveSession(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Session(), sess)
	assert.Equal(t, user.Session(), cache.sessions[user.ID])

	// 命中：库挂了也能返回
	store.loadErr = errors.New("mysql down")
	sess, err = svc.ResolveSession(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Session(), sess)

	// 缓存读失败降级为未命中，此时库也挂着，只能报错
	cache.getErr = errors.New("redis down")
	_, err = svc.ResolveSession(context.Background(), user.ID)
	require.Error(t, err)
}

func TestResolveSessionUnknownUser(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeCache())
	_, err := svc.ResolveSession(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestGenerateCaptcha(t *testing.T) {
	cache := newFakeCache()
	svc := newTestService(newFakeStore(), cache)

	resp, err := svc.GenerateCaptcha(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.CaptchaID)
	assert.Contains(t, resp.CaptchaImage, "data:image/png;base64,")

	code := cache.captchas[resp.CaptchaID]
	require.Len(t, code, 4)
	assert.True(t, svc.VerifyCaptcha(context.Background(), resp.CaptchaID, code))
}
