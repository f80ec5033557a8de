package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canxing/crm-admin/pkg/comm"
	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/model"
	"github.com/canxing/crm-admin/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	listed map[string]bool
	err    error
}

func (f *fakeBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.listed[token], nil
}

type fakeResolver struct {
	sess *model.UserSession
	err  error
}

func (f *fakeResolver) ResolveSession(ctx context.Context, userID uint64) (*model.UserSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sess, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newRouter(tm *utils.TokenManager, bl TokenBlacklist, res SessionResolver) *gin.Engine {
	r := gin.New()
	l := quietLogger()
	authed := r.Group("/", Auth(tm, bl, res, l))
	authed.GET("/whoami", func(c *gin.Context) {
		comm.OK(c, SessionFrom(c))
	})
	authed.GET("/customers", RequirePermission("customer:list", l), func(c *gin.Context) {
		comm.OK(c, []string{})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelopeOf(t *testing.T, w *httptest.ResponseRecorder) comm.Response {
	t.Helper()
	var resp comm.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMissingToken(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	r := newRouter(tm, &fakeBlacklist{}, &fakeResolver{})

	w := doGet(r, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Bearer大小写/格式不对也一样拒
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthExpiredVsInvalid(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	r := newRouter(tm, &fakeBlacklist{}, &fakeResolver{sess: &model.UserSession{ID: 1}})

	w := doGet(r, "/whoami", "garbage.token.here")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token invalid", envelopeOf(t, w).Message)

	expiredTm := utils.NewTokenManager("a", "r", -time.Minute, time.Hour)
	token, _, err := expiredTm.GenerateAccessToken(1, "u")
	require.NoError(t, err)

	w = doGet(r, "/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// 前端靠这个文案决定静默刷新还是强制重登
	assert.Equal(t, "token expired", envelopeOf(t, w).Message)
}

func TestAuthBlacklistedToken(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	token, _, err := tm.GenerateAccessToken(1, "u")
	require.NoError(t, err)

	// 签名有效期都没问题，但登出过：必须拒
	r := newRouter(tm, &fakeBlacklist{listed: map[string]bool{token: true}},
		&fakeResolver{sess: &model.UserSession{ID: 1}})

	w := doGet(r, "/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBlacklistLookupFailure(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	token, _, err := tm.GenerateAccessToken(1, "u")
	require.NoError(t, err)

	r := newRouter(tm, &fakeBlacklist{err: errors.New("redis down")},
		&fakeResolver{sess: &model.UserSession{ID: 1}})

	w := doGet(r, "/whoami", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthVanishedUser(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	token, _, err := tm.GenerateAccessToken(99, "ghost")
	require.NoError(t, err)

	r := newRouter(tm, &fakeBlacklist{}, &fakeResolver{err: errs.New(errs.KindNotFound, "user not found")})

	w := doGet(r, "/whoami", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthAttachesSession(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	token, _, err := tm.GenerateAccessToken(42, "admin")
	require.NoError(t, err)

	sess := &model.UserSession{ID: 42, UserName: "admin", Roles: []string{"super_admin"}}
	r := newRouter(tm, &fakeBlacklist{}, &fakeResolver{sess: sess})

	w := doGet(r, "/whoami", token)
	require.Equal(t, http.StatusOK, w.Code)

	resp := envelopeOf(t, w)
	assert.Equal(t, 0, resp.Code)
	data, _ := json.Marshal(resp.Data)
	var got model.UserSession
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, uint64(42), got.ID)
	assert.Equal(t, "admin", got.UserName)
}

// 权限闸三态：无令牌401、有令牌无权限403、有权限200
func TestPermissionGateScenario(t *testing.T) {
	tm := utils.NewTokenManager("a", "r", time.Hour, time.Hour)
	token, _, err := tm.GenerateAccessToken(1, "admin")
	require.NoError(t, err)

	withPerm := &model.UserSession{ID: 1, UserName: "admin",
		Roles: []string{"super_admin"}, Permissions: []string{"customer:list"}}
	withoutPerm := &model.UserSession{ID: 2, UserName: "viewer"}

	r := newRouter(tm, &fakeBlacklist{}, &fakeResolver{sess: withPerm})
	assert.Equal(t, http.StatusOK, doGet(r, "/customers", token).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/customers", "").Code)

	r = newRouter(tm, &fakeBlacklist{}, &fakeResolver{sess: withoutPerm})
	w := doGet(r, "/customers", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1003, envelopeOf(t, w).Code)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearer("Bearer abc"))
	assert.Equal(t, "", ExtractBearer(""))
	assert.Equal(t, "", ExtractBearer("abc"))
	assert.Equal(t, "", ExtractBearer("Basic abc"))
}
