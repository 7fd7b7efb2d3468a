package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/configuration"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

// OAuthClient wraps the LinkedIn OAuth 2.0 endpoints.
type OAuthClient struct {
	config      *oauth2.Config
	httpClient  *http.Client
	revokeURL   string
	userInfoURL string
}

type revokeForm struct {
	Token        string `url:"token"`
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
}

type userInfo struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewOAuthClient(cfg configuration.LinkedIn, httpClient *http.Client) repository.IOAuthProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint := linkedin.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		httpClient:  httpClient,
		revokeURL:   cfg.RevokeURL,
		userInfoURL: cfg.APIBaseURL + "/userinfo",
	}
}

func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

func (c *OAuthClient) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	tok, err := c.config.Exchange(c.withClient(ctx), code)
	if err != nil {
		return nil, tokenError("linkedin.exchange", err)
	}
	return grantFrom(tok, ""), nil
}

// Refresh forces a refresh_token grant by handing oauth2 an already expired token.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	src := c.config.TokenSource(c.withClient(ctx), &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-1 * time.Minute),
	})
	tok, err := src.Token()
	if err != nil {
		return nil, tokenError("linkedin.refresh", err)
	}
	return grantFrom(tok, refreshToken), nil
}

func (c *OAuthClient) Revoke(ctx context.Context, accessToken string) error {
	form, err := query.Values(revokeForm{Token: accessToken, ClientID: c.config.ClientID, ClientSecret: c.config.ClientSecret})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.PlatformResponseError{Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &model.PlatformResponseError{StatusCode: resp.StatusCode, Detail: string(body)}
	}
	return nil
}

// UserID returns the OpenID subject of the token owner.
func (c *OAuthClient) UserID(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.PlatformError, "linkedin.userinfo", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperror.Wrap(apperror.PlatformError, "linkedin.userinfo",
			&model.PlatformResponseError{StatusCode: resp.StatusCode, Detail: string(body)})
	}
	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return "", apperror.Wrapf(apperror.PlatformError, "linkedin.userinfo", err, "decoding userinfo")
	}
	if info.Sub == "" {
		return "", apperror.New(apperror.PlatformError, "linkedin.userinfo", "userinfo response has no sub")
	}
	return info.Sub, nil
}

func (c *OAuthClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// grantFrom converts an oauth2 token. oauth2 copies the old refresh token forward when the
// server omits one, so an unchanged value is reported as "not returned".
func grantFrom(tok *oauth2.Token, previousRefresh string) *model.TokenGrant {
	g := &model.TokenGrant{AccessToken: tok.AccessToken}
	if tok.RefreshToken != "" && tok.RefreshToken != previousRefresh {
		g.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		g.ExpiresIn = time.Until(tok.Expiry).Round(time.Second)
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		g.Scope = scope
	}
	return g
}

// tokenError surfaces token endpoint failures as *model.OAuthGrantError.
func tokenError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		ge := &model.OAuthGrantError{Code: re.ErrorCode, Description: re.ErrorDescription, Err: err}
		if re.Response != nil {
			ge.StatusCode = re.Response.StatusCode
		}
		if ge.Code == "" && strings.Contains(string(re.Body), "invalid_grant") {
			ge.Code = "invalid_grant"
		}
		if ge.Description == "" {
			ge.Description = string(re.Body)
		}
		return ge
	}
	return fmt.Errorf("%s: %w", op, err)
}
