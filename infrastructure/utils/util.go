package utils

import (
	"strconv"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs an HS256 token for user. The issuer claim carries the user id.
func GenerateToken(user model.User, secretKey string, ttl time.Duration) (string, error) {
	now := GetCurrentTime()
	claims := model.UserClaims{
		UserName: user.UserName,
		StandardClaims: jwt.StandardClaims{
			Issuer:    strconv.FormatInt(user.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
