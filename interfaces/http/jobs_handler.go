package http

import (
	"net/http"
	"strconv"

	"ai-promoter/domain/dto"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"
	"ai-promoter/usecase"

	"github.com/gin-gonic/gin"
)

type IJobsHandler interface {
	PollFeeds(c *gin.Context)
	ProcessScrapes(c *gin.Context)
	Healthz(c *gin.Context)
}

type JobsHandler struct {
	poller      usecase.IFeedPoller
	worker      usecase.IScrapeWorker
	jobs        repository.IScrapeJob
	batchSize   int
	concurrency int
}

func NewJobsHandler(poller usecase.IFeedPoller, worker usecase.IScrapeWorker, jobs repository.IScrapeJob, batchSize, concurrency int) IJobsHandler {
	return &JobsHandler{poller: poller, worker: worker, jobs: jobs, batchSize: batchSize, concurrency: concurrency}
}

func (h *JobsHandler) PollFeeds(c *gin.Context) {
	n, err := h.poller.Poll(c.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Manual feed poll failed")
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, dto.PollResult{NewItems: n})
}

func (h *JobsHandler) ProcessScrapes(c *gin.Context) {
	batch := h.batchSize
	if v := c.Query("batch"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			batch = n
		}
	}
	n, err := usecase.RunScrapeJobs(c.Request.Context(), h.worker, h.jobs, batch, h.concurrency)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, dto.ProcessResult{Processed: n})
}

// Healthz returns OK for health checks
func (h *JobsHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
