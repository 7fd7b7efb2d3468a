package http

import (
	"net/http"
	"sync"
	"time"

	"ai-promoter/domain/dto"
	"ai-promoter/infrastructure/logger"
	"ai-promoter/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stateTTL = 10 * time.Minute

type ILinkedInOAuthHandler interface {
	GetAuthURL(c *gin.Context)
	Callback(c *gin.Context)
	Status(c *gin.Context)
	Disconnect(c *gin.Context)
}

type pendingState struct {
	userID  int64
	expires time.Time
}

type LinkedInOAuthHandler struct {
	tokens  usecase.ITokenManager
	baseURL string

	stateMu sync.Mutex
	states  map[string]pendingState
	now     func() time.Time
}

func NewLinkedInOAuthHandler(tokens usecase.ITokenManager, baseURL string) ILinkedInOAuthHandler {
	return &LinkedInOAuthHandler{
		tokens:  tokens,
		baseURL: baseURL,
		states:  map[string]pendingState{},
		now:     time.Now,
	}
}

// GetAuthURL issues a one-time state bound to the authenticated user.
func (h *LinkedInOAuthHandler) GetAuthURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	state := uuid.NewString()
	h.stateMu.Lock()
	h.pruneLocked()
	h.states[state] = pendingState{userID: userID, expires: h.now().Add(stateTTL)}
	h.stateMu.Unlock()

	writeOK(c, http.StatusOK, gin.H{"auth_url": h.tokens.AuthCodeURL(state), "state": state})
}

func (h *LinkedInOAuthHandler) Callback(c *gin.Context) {
	lg := logger.GetLogger()
	if e := c.Query("error"); e != "" {
		lg.WithField("error", e).WithField("description", c.Query("error_description")).Warn("LinkedIn authorization denied")
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "authorization denied: " + e})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "missing code"})
		return
	}
	userID, ok := h.consumeState(c.Query("state"))
	if !ok {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "invalid_state"})
		return
	}

	if _, err := h.tokens.CompleteAuthorization(c.Request.Context(), userID, code); err != nil {
		lg.WithField("user_id", userID).WithField("error", err).Error("LinkedIn code exchange failed")
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.baseURL+"/auth/profile?linkedin=connected")
}

func (h *LinkedInOAuthHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cred, err := h.tokens.Credential(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	status := gin.H{"connected": false}
	if cred != nil && cred.Authorized && cred.HasPlatformUserID() {
		status["connected"] = true
		status["platform_user_id"] = *cred.PlatformUserID
		status["expires_at"] = cred.AccessTokenExpiresAt
		status["can_refresh"] = cred.HasRefreshToken()
	}
	writeOK(c, http.StatusOK, status)
}

func (h *LinkedInOAuthHandler) Disconnect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.tokens.Revoke(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"connected": false})
}

func (h *LinkedInOAuthHandler) consumeState(state string) (int64, bool) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	pending, ok := h.states[state]
	if !ok {
		return 0, false
	}
	delete(h.states, state)
	if h.now().After(pending.expires) {
		return 0, false
	}
	return pending.userID, true
}

func (h *LinkedInOAuthHandler) pruneLocked() {
	now := h.now()
	for s, p := range h.states {
		if now.After(p.expires) {
			delete(h.states, s)
		}
	}
}
