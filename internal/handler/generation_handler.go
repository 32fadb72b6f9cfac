package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/genai"
	"github.com/roadready/permitprep-backend/internal/response"
)

// GenerationHandler handles the document-to-question-pool endpoints. The
// handler only parks the upload and enqueues a job; the worker does the
// extraction and the model calls.
type GenerationHandler struct {
	rdb     *redis.Client
	cfg     *config.Config
	enabled bool
	log     zerolog.Logger
}

// NewGenerationHandler creates a new GenerationHandler. enabled is false
// when no model API key is configured; the endpoints then answer 503.
func NewGenerationHandler(rdb *redis.Client, cfg *config.Config, enabled bool, log zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		rdb:     rdb,
		cfg:     cfg,
		enabled: enabled,
		log:     log.With().Str("component", "generation_handler").Logger(),
	}
}

// CreateGeneration godoc
// POST /api/v1/generations
// Accepts a PDF upload and queues a generation job. Returns 202 with the
// job record; progress is available via polling or the WebSocket stream.
func (h *GenerationHandler) CreateGeneration(c *gin.Context) {
	if !h.enabled {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrGenerationDisabled)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}
	if header.Size > h.cfg.MaxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return
	}

	path, err := h.saveUpload(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store upload")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	job, err := genai.Enqueue(c.Request.Context(), h.rdb, path, h.cfg.PoolTTL)
	if err != nil {
		os.Remove(path)
		h.log.Error().Err(err).Msg("Failed to enqueue generation job")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Msg("Generation job queued")
	response.Success(c, http.StatusAccepted, job)
}

// GetGeneration godoc
// GET /api/v1/generations/:job_id
// Returns the job record for polling clients.
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	if !h.enabled {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrGenerationDisabled)
		return
	}

	job, err := genai.GetJob(c.Request.Context(), h.rdb, c.Param("job_id"))
	if err != nil {
		if errors.Is(err, genai.ErrJobNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrJobNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Failed to load generation job")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, job)
}

// saveUpload parks the uploaded document under a random name so the
// worker can pick it up. The worker deletes it when the job finishes.
func (h *GenerationHandler) saveUpload(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(h.cfg.UploadDir, uuid.NewString()+".pdf")
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, h.cfg.MaxUploadBytes)); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
