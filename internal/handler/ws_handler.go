package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/genai"
	ws "github.com/roadready/permitprep-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams generation-job progress over WebSocket, backed by the
// job's Redis pub/sub channel.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// GenerationStream godoc
// WS /ws/v1/generations/:job_id
// Pushes a snapshot of the job, then forwards every job update until the
// job reaches a terminal state or the client disconnects.
func (h *WSHandler) GenerationStream(c *gin.Context) {
	jobID := c.Param("job_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	wsLog := h.log.With().Str("job_id", jobID).Logger()

	// Subscribe before the snapshot so no update can slip between them.
	sub := h.rdb.Subscribe(ctx, config.CacheKey.GenerationEventsChannel(jobID))
	defer sub.Close()

	job, err := genai.GetJob(ctx, h.rdb, jobID)
	if err != nil {
		if errors.Is(err, genai.ErrJobNotFound) {
			ws.WriteError(conn, "generation job not found")
		} else {
			wsLog.Error().Err(err).Msg("Failed to load job for stream")
			ws.WriteError(conn, "failed to load generation job")
		}
		return
	}

	if done := h.push(conn, job); done {
		return
	}
	wsLog.Info().Msg("Watcher connected")

	// Drain client frames so close handshakes are noticed; the stream
	// itself is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for msg := range sub.Channel() {
		var update genai.Job
		if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
			wsLog.Warn().Err(err).Msg("Dropped malformed job event")
			continue
		}
		if done := h.push(conn, &update); done {
			return
		}
	}
}

// push forwards one job state to the client and reports whether the
// stream is finished (terminal job or write failure).
func (h *WSHandler) push(conn *websocket.Conn, job *genai.Job) bool {
	event := ws.EventProgress
	switch job.State {
	case genai.JobCompleted:
		event = ws.EventCompleted
	case genai.JobFailed:
		event = ws.EventFailed
	}

	err := ws.WriteTyped(conn, ws.ProgressMessage{
		Event:        event,
		JobID:        job.ID,
		State:        string(job.State),
		BatchesDone:  job.BatchesDone,
		BatchesTotal: job.BatchesTotal,
		PoolID:       job.PoolID,
		PoolSize:     job.PoolSize,
		Error:        job.Error,
	})
	return err != nil || job.Done()
}
