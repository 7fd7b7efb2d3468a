package realtime

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"ai-promoter/domain/model"

	"github.com/gin-gonic/gin"
)

// Hub maintains per-user subscribers listening for pipeline events.
type Hub struct {
	mu    sync.RWMutex
	users map[int64]map[chan model.PipelineEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{users: make(map[int64]map[chan model.PipelineEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID, err := strconv.ParseInt(c.GetString("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan model.PipelineEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *Hub) addSubscriber(userID int64, ch chan model.PipelineEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan model.PipelineEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID int64, ch chan model.PipelineEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// Broadcast delivers evt to the subscribers of its user. Events without a user are dropped.
func (h *Hub) Broadcast(evt model.PipelineEvent) {
	if evt.UserID == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[*evt.UserID] {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
}

func (h *Hub) subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
