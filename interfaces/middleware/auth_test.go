package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/infrastructure/utils"
	"ai-promoter/interfaces/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct{ users map[string]model.User }

func (f fakeUsers) GetById(_ context.Context, id int64) (model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, apperror.New(apperror.NotFound, "user.get", "no rows")
}

func (f fakeUsers) GetByUserName(_ context.Context, name string) (model.User, error) {
	if u, ok := f.users[name]; ok {
		return u, nil
	}
	return model.User{}, apperror.New(apperror.NotFound, "user.get_by_user_name", "no rows")
}

func (f fakeUsers) CreateUser(context.Context, model.User) (int64, error) { return 0, nil }

func newRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	users := fakeUsers{users: map[string]model.User{"alice": {ID: 42, UserName: "alice"}}}
	r := gin.New()
	r.GET("/api/me", middleware.Auth(users, secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	return r
}

func do(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := utils.GenerateToken(model.User{ID: 42, UserName: "alice"}, "secret", time.Hour)
	require.NoError(t, err)

	w := do(newRouter("secret"), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
}

func TestAuth_Rejects(t *testing.T) {
	good, err := utils.GenerateToken(model.User{ID: 42, UserName: "alice"}, "other-secret", time.Hour)
	require.NoError(t, err)
	expired, err := utils.GenerateToken(model.User{ID: 42, UserName: "alice"}, "secret", -time.Minute)
	require.NoError(t, err)
	stranger, err := utils.GenerateToken(model.User{ID: 7, UserName: "ghost"}, "secret", time.Hour)
	require.NoError(t, err)
	impostor, err := utils.GenerateToken(model.User{ID: 7, UserName: "alice"}, "secret", time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-jwt",
		"wrong secret":   "Bearer " + good,
		"expired":        "Bearer " + expired,
		"unknown user":   "Bearer " + stranger,
		"issuer spoofed": "Bearer " + impostor,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, do(newRouter("secret"), header).Code)
		})
	}
}
