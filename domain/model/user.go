package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	SlackID   *string   `json:"slack_id,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}

type ReqLogin struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ReqRegister struct {
	Name     string  `json:"name" binding:"required"`
	UserName string  `json:"user_name" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	SlackID  *string `json:"slack_id"`
}
