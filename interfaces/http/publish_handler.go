package http

import (
	"net/http"

	"ai-promoter/domain/dto"
	"ai-promoter/infrastructure/logger"
	"ai-promoter/usecase"

	"github.com/gin-gonic/gin"
)

type IPublishHandler interface {
	Publish(c *gin.Context)
	Validate(c *gin.Context)
}

type PublishHandler struct {
	publisher usecase.IPublisher
}

func NewPublishHandler(publisher usecase.IPublisher) IPublishHandler {
	return &PublishHandler{publisher: publisher}
}

func (h *PublishHandler) Publish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.publisher.PublishContent(c.Request.Context(), userID, req.ContentID, req.Text)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"user_id":    userID,
			"content_id": req.ContentID,
			"error":      err,
		}).Warn("Publish failed")
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, res)
}

// Validate never touches the network.
func (h *PublishHandler) Validate(c *gin.Context) {
	var req dto.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	writeOK(c, http.StatusOK, h.publisher.Validate(req.Text))
}
