package usecase

import (
	"context"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/dto"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
	"ai-promoter/infrastructure/utils"

	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type UserUsecase struct {
	userRepository repository.IUser
	secretKey      string
}

func NewUserUsecase(userRepository repository.IUser, secretKey string) IUserUsecase {
	return &UserUsecase{userRepository: userRepository, secretKey: secretKey}
}

func (u *UserUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res
	user, err := u.userRepository.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("user_name", req.UserName).WithField("error", err).Info("Login failed")
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}
	token, err := utils.GenerateToken(user, u.secretKey, tokenTTL)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "Could not generate token"
		return res
	}
	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	res.Data = dto.ResLogin{Token: token}
	return res
}

func (u *UserUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		res.ResponseCode = "400"
		res.ResponseMessage = "Invalid password"
		return res
	}
	id, err := u.userRepository.CreateUser(ctx, model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Email:    req.Email,
		Password: string(hash),
		SlackID:  nonEmpty(req.SlackID),
	})
	if err != nil {
		logger.GetLogger().WithField("user_name", req.UserName).WithField("error", err).Error("Register failed")
		if apperror.Is(err, apperror.Duplicate) {
			res.ResponseCode = "409"
			res.ResponseMessage = "User already exists"
			return res
		}
		res.ResponseCode = "500"
		res.ResponseMessage = "Could not create user"
		return res
	}
	res.ResponseCode = "200"
	res.ResponseMessage = "Success"
	res.Data = map[string]int64{"id": id}
	return res
}
