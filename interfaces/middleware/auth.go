package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-promoter/domain/dto"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth validates the bearer token and stores the caller's id under "user_id".
func Auth(userRepository repository.IUser, secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}
		authorization := ctx.Request.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		userClaims, token, err := getClaim(strings.TrimPrefix(authorization, "Bearer "), secretKey)
		if err != nil || token == nil || !token.Valid {
			res.ResponseMessage = reason(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if !next(ctx, userRepository, userClaims) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
		}
	}
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}

func next(ctx *gin.Context, userRepository repository.IUser, userClaims model.UserClaims) bool {
	user, err := userRepository.GetByUserName(ctx.Request.Context(), userClaims.UserName)
	if err != nil {
		logger.GetLogger().WithField("user_name", userClaims.UserName).WithField("error", err).Warn("Token user not found")
		return false
	}
	if fmt.Sprint(user.ID) != userClaims.Issuer {
		logger.GetLogger().WithField("user_name", userClaims.UserName).Warn("Token issuer does not match user")
		return false
	}
	ctx.Set("user_id", userClaims.Issuer)
	ctx.Next()
	return true
}

func getClaim(raw, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		raw,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}
