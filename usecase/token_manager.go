package usecase

import (
	"context"
	"errors"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
)

type ITokenManager interface {
	AuthCodeURL(state string) string
	CompleteAuthorization(ctx context.Context, userID int64, code string) (*model.UserPlatformCredential, error)
	Credential(ctx context.Context, userID int64) (*model.UserPlatformCredential, error)
	EnsureValidToken(ctx context.Context, userID int64) (string, error)
	ClearCredentials(ctx context.Context, userID int64) error
	Revoke(ctx context.Context, userID int64) error
	RefreshExpiring(ctx context.Context) (model.RefreshSweepResult, error)
}

type TokenManagerConfig struct {
	Platform    string
	RefreshSkew time.Duration
	SweepWindow time.Duration
	BaseURL     string
}

type TokenManager struct {
	creds    repository.ICredential
	oauth    repository.IOAuthProvider
	users    repository.IUser
	notifier repository.INotifier
	cfg      TokenManagerConfig
	now      func() time.Time
}

func NewTokenManager(creds repository.ICredential, oauth repository.IOAuthProvider, users repository.IUser, notifier repository.INotifier, cfg TokenManagerConfig) *TokenManager {
	if cfg.Platform == "" {
		cfg.Platform = model.PlatformLinkedIn
	}
	return &TokenManager{
		creds:    creds,
		oauth:    oauth,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *TokenManager) AuthCodeURL(state string) string { return m.oauth.AuthCodeURL(state) }

// CompleteAuthorization exchanges an authorization code and stores the resulting credential.
func (m *TokenManager) CompleteAuthorization(ctx context.Context, userID int64, code string) (*model.UserPlatformCredential, error) {
	grant, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Wrap(apperror.PlatformError, "token.exchange", err)
	}
	platformUserID, err := m.oauth.UserID(ctx, grant.AccessToken)
	if err != nil {
		return nil, apperror.Wrap(apperror.PlatformError, "token.userinfo", err)
	}
	expires := m.now().Add(grant.ExpiresIn)
	cred := &model.UserPlatformCredential{
		UserID:               userID,
		Platform:             m.cfg.Platform,
		PlatformUserID:       &platformUserID,
		AccessToken:          &grant.AccessToken,
		AccessTokenExpiresAt: &expires,
		Authorized:           true,
	}
	if grant.RefreshToken != "" {
		cred.RefreshToken = &grant.RefreshToken
	}
	if grant.Scope != "" {
		cred.Scope = &grant.Scope
	}
	if err := m.creds.UpsertAuthorization(ctx, cred); err != nil {
		return nil, err
	}
	logger.GetLogger().WithField("user_id", userID).WithField("platform", m.cfg.Platform).Info("Platform account connected")
	return cred, nil
}

// Credential returns the stored credential, or nil when the user never connected.
func (m *TokenManager) Credential(ctx context.Context, userID int64) (*model.UserPlatformCredential, error) {
	cred, err := m.creds.Get(ctx, userID, m.cfg.Platform)
	if apperror.Is(err, apperror.NotFound) {
		return nil, nil
	}
	return cred, err
}

// EnsureValidToken returns an access token valid beyond the refresh skew, refreshing it when needed.
func (m *TokenManager) EnsureValidToken(ctx context.Context, userID int64) (string, error) {
	cred, err := m.Credential(ctx, userID)
	if err != nil {
		return "", err
	}
	if cred.HasFreshAccessToken(m.now(), m.cfg.RefreshSkew) {
		return *cred.AccessToken, nil
	}
	return m.refresh(ctx, userID, cred)
}

func (m *TokenManager) refresh(ctx context.Context, userID int64, cred *model.UserPlatformCredential) (string, error) {
	const op = "token.refresh"
	if !cred.HasRefreshToken() {
		return "", apperror.New(apperror.ReauthenticationRequired, op, "no refresh token stored")
	}
	lg := logger.GetLogger().WithField("user_id", userID).WithField("platform", m.cfg.Platform)

	grant, err := m.oauth.Refresh(ctx, *cred.RefreshToken)
	if err != nil {
		var grantErr *model.OAuthGrantError
		if errors.As(err, &grantErr) && grantErr.InvalidGrant() {
			lg.WithField("error", err).Warn("Refresh token rejected, clearing credentials")
			if cErr := m.creds.ClearTokens(ctx, userID, m.cfg.Platform); cErr != nil {
				return "", cErr
			}
			return "", apperror.Wrap(apperror.ReauthenticationRequired, op, err)
		}
		lg.WithField("error", err).Error("Token refresh failed")
		return "", apperror.Wrap(apperror.TransientTokenError, op, err)
	}
	if grant.AccessToken == "" {
		return "", apperror.New(apperror.TransientTokenError, op, "token endpoint returned no access token")
	}

	var refreshToken, scope *string
	if grant.RefreshToken != "" {
		refreshToken = &grant.RefreshToken
	}
	if grant.Scope != "" {
		scope = &grant.Scope
	}
	expires := m.now().Add(grant.ExpiresIn)
	if err := m.creds.SaveRefreshed(ctx, userID, m.cfg.Platform, grant.AccessToken, refreshToken, expires, scope); err != nil {
		return "", err
	}
	lg.WithField("expires_at", expires).Info("Access token refreshed")
	return grant.AccessToken, nil
}

// ClearCredentials atomically nulls the stored tokens and marks the credential unauthorized.
func (m *TokenManager) ClearCredentials(ctx context.Context, userID int64) error {
	err := m.creds.ClearTokens(ctx, userID, m.cfg.Platform)
	if apperror.Is(err, apperror.NotFound) {
		return nil
	}
	return err
}

// Revoke asks the platform to revoke the access token and always clears local state afterwards.
func (m *TokenManager) Revoke(ctx context.Context, userID int64) error {
	cred, err := m.Credential(ctx, userID)
	if err != nil {
		return err
	}
	if cred == nil {
		return nil
	}
	if cred.AccessToken != nil && *cred.AccessToken != "" {
		if err := m.oauth.Revoke(ctx, *cred.AccessToken); err != nil {
			logger.GetLogger().WithField("user_id", userID).WithField("error", err).Warn("Remote token revocation failed, clearing locally")
		}
	}
	return m.ClearCredentials(ctx, userID)
}

// RefreshExpiring refreshes every credential whose token expires inside the sweep window. Users whose
// grant was revoked get a DM asking them to reconnect.
func (m *TokenManager) RefreshExpiring(ctx context.Context) (model.RefreshSweepResult, error) {
	var result model.RefreshSweepResult
	creds, err := m.creds.ListExpiring(ctx, m.cfg.Platform, m.now().Add(m.cfg.SweepWindow))
	if err != nil {
		return result, err
	}
	for _, cred := range creds {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := m.refresh(ctx, cred.UserID, cred)
		switch {
		case err == nil:
			result.Refreshed++
		case apperror.Is(err, apperror.ReauthenticationRequired):
			result.Failed++
			result.Reauthenticate++
			m.askToReconnect(ctx, cred.UserID, refreshReconnectMessage(m.cfg.BaseURL))
		default:
			result.Failed++
		}
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"refreshed":      result.Refreshed,
		"failed":         result.Failed,
		"reauthenticate": result.Reauthenticate,
	}).Info("Token refresh sweep finished")
	return result, nil
}

func (m *TokenManager) askToReconnect(ctx context.Context, userID int64, message string) {
	lg := logger.GetLogger().WithField("user_id", userID)
	if m.notifier == nil || m.users == nil {
		return
	}
	user, err := m.users.GetById(ctx, userID)
	if err != nil {
		lg.WithField("error", err).Error("Failed to load user for reconnect notice")
		return
	}
	if user.SlackID == nil || *user.SlackID == "" {
		lg.Warn("User needs to reconnect but has no Slack ID")
		return
	}
	if err := m.notifier.Notify(ctx, *user.SlackID, message); err != nil {
		lg.WithField("error", err).Error("Failed to send reconnect notice")
	}
}
