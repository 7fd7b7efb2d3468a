package repository

import (
	"context"
	"time"

	"ai-promoter/domain/model"
)

// ICredential persists UserPlatformCredential rows.
type ICredential interface {
	Get(ctx context.Context, userID int64, platform string) (*model.UserPlatformCredential, error)
	// UpsertAuthorization stores the result of a fresh OAuth code exchange.
	UpsertAuthorization(ctx context.Context, cred *model.UserPlatformCredential) error
	// SaveRefreshed stores a refreshed access token. A nil refreshToken keeps the stored one.
	SaveRefreshed(ctx context.Context, userID int64, platform, accessToken string, refreshToken *string, expiresAt time.Time, scope *string) error
	// ClearTokens nulls access_token, refresh_token, access_token_expires_at and scope and sets
	// authorized=false in one statement.
	ClearTokens(ctx context.Context, userID int64, platform string) error
	ListExpiring(ctx context.Context, platform string, before time.Time) ([]*model.UserPlatformCredential, error)
}

type IUser interface {
	GetById(ctx context.Context, id int64) (model.User, error)
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) (int64, error)
}
