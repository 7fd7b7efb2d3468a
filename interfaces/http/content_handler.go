package http

import (
	"net/http"

	"ai-promoter/domain/dto"
	"ai-promoter/infrastructure/logger"
	"ai-promoter/usecase"

	"github.com/gin-gonic/gin"
)

type IContentHandler interface {
	Submit(c *gin.Context)
	Get(c *gin.Context)
	UpdateCopy(c *gin.Context)
	Delete(c *gin.Context)
	Shares(c *gin.Context)
	Rescrape(c *gin.Context)
}

type ContentHandler struct {
	contentUsecase usecase.IContentUsecase
	utmParams      string
}

func NewContentHandler(contentUsecase usecase.IContentUsecase, utmParams string) IContentHandler {
	return &ContentHandler{contentUsecase: contentUsecase, utmParams: utmParams}
}

func (h *ContentHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.SubmitContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.contentUsecase.Submit(c.Request.Context(), userID, req)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("url", req.URL).WithField("error", err).Warn("Content submission rejected")
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusCreated, item)
}

func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.contentUsecase.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, gin.H{"content": item, "campaign_url": usecase.CampaignURL(item, h.utmParams)})
}

func (h *ContentHandler) UpdateCopy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.contentUsecase.UpdateCopy(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, item)
}

func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.contentUsecase.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentHandler) Shares(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.contentUsecase.ShareStats(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, stats)
}

func (h *ContentHandler) Rescrape(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.contentUsecase.Rescrape(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusAccepted, job)
}
