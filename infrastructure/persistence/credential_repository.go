package persistence

import (
	"context"
	"database/sql"
	"time"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
)

const credentialColumns = `user_id, platform, platform_user_id, access_token, refresh_token, access_token_expires_at, scope, authorized, created_at, updated_at`

type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) repository.ICredential { return &CredentialRepository{db: db} }

func (r *CredentialRepository) Get(ctx context.Context, userID int64, platform string) (*model.UserPlatformCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM platform_credentials WHERE user_id=$1 AND platform=$2`, userID, platform)
	cred, err := scanCredential(row)
	if err != nil {
		return nil, storeError("credential.get", err)
	}
	return cred, nil
}

func (r *CredentialRepository) UpsertAuthorization(ctx context.Context, c *model.UserPlatformCredential) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	q := `INSERT INTO platform_credentials (user_id, platform, platform_user_id, access_token, refresh_token, access_token_expires_at, scope, authorized, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			platform_user_id=COALESCE(EXCLUDED.platform_user_id, platform_credentials.platform_user_id),
			access_token=EXCLUDED.access_token,
			refresh_token=COALESCE(EXCLUDED.refresh_token, platform_credentials.refresh_token),
			access_token_expires_at=EXCLUDED.access_token_expires_at,
			scope=EXCLUDED.scope,
			authorized=EXCLUDED.authorized,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, c.UserID, c.Platform, c.PlatformUserID, c.AccessToken, c.RefreshToken,
		c.AccessTokenExpiresAt, c.Scope, c.Authorized, c.CreatedAt, c.UpdatedAt)
	return storeError("credential.upsert", err)
}

func (r *CredentialRepository) SaveRefreshed(ctx context.Context, userID int64, platform, accessToken string, refreshToken *string, expiresAt time.Time, scope *string) error {
	q := `UPDATE platform_credentials SET
			access_token=$1,
			refresh_token=COALESCE($2, refresh_token),
			access_token_expires_at=$3,
			scope=COALESCE($4, scope),
			authorized=TRUE,
			updated_at=$5
		  WHERE user_id=$6 AND platform=$7`
	res, err := r.db.ExecContext(ctx, q, accessToken, refreshToken, expiresAt, scope, time.Now().UTC(), userID, platform)
	return affectedOne("credential.save_refreshed", res, err)
}

// ClearTokens is one UPDATE so a reader never sees a half-cleared row.
func (r *CredentialRepository) ClearTokens(ctx context.Context, userID int64, platform string) error {
	q := `UPDATE platform_credentials SET
			platform_user_id=NULL,
			access_token=NULL,
			refresh_token=NULL,
			access_token_expires_at=NULL,
			scope=NULL,
			authorized=FALSE,
			updated_at=$1
		  WHERE user_id=$2 AND platform=$3`
	_, err := r.db.ExecContext(ctx, q, time.Now().UTC(), userID, platform)
	return storeError("credential.clear", err)
}

// ListExpiring returns authorized credentials holding a refresh token whose access token expires before the cutoff.
func (r *CredentialRepository) ListExpiring(ctx context.Context, platform string, before time.Time) ([]*model.UserPlatformCredential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+credentialColumns+` FROM platform_credentials
		WHERE platform=$1 AND refresh_token IS NOT NULL AND access_token_expires_at IS NOT NULL AND access_token_expires_at < $2
		ORDER BY access_token_expires_at ASC`, platform, before)
	if err != nil {
		return nil, storeError("credential.list_expiring", err)
	}
	defer rows.Close()
	var list []*model.UserPlatformCredential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, storeError("credential.list_expiring", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("credential.list_expiring", err)
	}
	return list, nil
}

func scanCredential(s rowScanner) (*model.UserPlatformCredential, error) {
	c := &model.UserPlatformCredential{}
	var platformUserID, access, refresh, scope sql.NullString
	var exp sql.NullTime
	if err := s.Scan(&c.UserID, &c.Platform, &platformUserID, &access, &refresh, &exp, &scope, &c.Authorized, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.PlatformUserID = stringPtr(platformUserID)
	c.AccessToken = stringPtr(access)
	c.RefreshToken = stringPtr(refresh)
	c.AccessTokenExpiresAt = timePtr(exp)
	c.Scope = stringPtr(scope)
	return c, nil
}
