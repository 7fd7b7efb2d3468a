package usecase

import (
	"context"
	"testing"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/dto"
	"ai-promoter/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &MockUsers{}
	users.On("GetByUserName", mock.Anything, "alice").Return(model.User{ID: 1, UserName: "alice", Password: string(hash)}, nil)
	users.On("GetByUserName", mock.Anything, "ghost").Return(model.User{}, apperror.New(apperror.NotFound, "user.get_by_user_name", "no rows"))
	uc := NewUserUsecase(users, "key")

	t.Run("success", func(t *testing.T) {
		res := uc.Login(context.Background(), model.ReqLogin{UserName: "alice", Password: "s3cret"})
		assert.Equal(t, "200", res.ResponseCode)
		login, ok := res.Data.(dto.ResLogin)
		require.True(t, ok)
		assert.NotEmpty(t, login.Token)
	})
	t.Run("wrong password", func(t *testing.T) {
		res := uc.Login(context.Background(), model.ReqLogin{UserName: "alice", Password: "nope"})
		assert.Equal(t, "401", res.ResponseCode)
	})
	t.Run("unknown user", func(t *testing.T) {
		res := uc.Login(context.Background(), model.ReqLogin{UserName: "ghost", Password: "x"})
		assert.Equal(t, "401", res.ResponseCode)
	})
}

func TestRegister(t *testing.T) {
	users := &MockUsers{}
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.UserName == "new" && bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw")) == nil && *u.SlackID == "U1"
	})).Return(int64(9), nil).Once()
	users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u model.User) bool { return u.UserName == "taken" })).
		Return(int64(0), apperror.New(apperror.Duplicate, "user.create", "exists")).Once()
	uc := NewUserUsecase(users, "key")

	res := uc.Register(context.Background(), model.ReqRegister{Name: "N", UserName: "new", Email: "n@example.com", Password: "pw", SlackID: strPtr(" U1 ")})
	assert.Equal(t, "200", res.ResponseCode)
	assert.Equal(t, map[string]int64{"id": 9}, res.Data)

	res = uc.Register(context.Background(), model.ReqRegister{Name: "T", UserName: "taken", Email: "t@example.com", Password: "pw"})
	assert.Equal(t, "409", res.ResponseCode)
}
