package model

import "fmt"

// PlatformResponseError carries a non-2xx platform response. StatusCode is 0 for transport failures.
type PlatformResponseError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *PlatformResponseError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("platform request failed: %s", e.Detail)
	}
	return fmt.Sprintf("platform responded %d: %s", e.StatusCode, e.Detail)
}

func (e *PlatformResponseError) Unwrap() error { return e.Err }

// OAuthGrantError is a token endpoint failure. Code holds the OAuth error code such as invalid_grant.
type OAuthGrantError struct {
	Code        string
	Description string
	StatusCode  int
	Err         error
}

func (e *OAuthGrantError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("token endpoint error (%d): %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("token endpoint error %s (%d): %s", e.Code, e.StatusCode, e.Description)
}

func (e *OAuthGrantError) Unwrap() error { return e.Err }

func (e *OAuthGrantError) InvalidGrant() bool { return e.Code == "invalid_grant" }
