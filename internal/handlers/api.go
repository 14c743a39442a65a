// Package handlers exposes the HTTP API: job submission for the three
// entry points, job record queries, quota checks and a websocket
// progress stream.
package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/jobstore"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/internal/queue"
)

// API wires the HTTP routes to the job queue and store.
type API struct {
	cfg    *config.Config
	store  jobstore.Store
	pool   *queue.WorkerPool
	hub    *Hub
	logger logger.Logger
}

func NewAPI(cfg *config.Config, store jobstore.Store, pool *queue.WorkerPool, hub *Hub, log logger.Logger) *API {
	return &API{cfg: cfg, store: store, pool: pool, hub: hub, logger: log}
}

// Register mounts all routes on the app.
func (a *API) Register(app *fiber.App) {
	app.Get("/health", a.Health)

	app.Post("/youtube", a.SubmitYouTube)
	app.Post("/upload", a.SubmitUpload)
	app.Post("/text", a.SubmitText)

	app.Get("/jobs", a.ListJobs)
	app.Get("/jobs/:id", a.GetJob)
	app.Delete("/jobs/:id", a.DeleteJob)
	app.Get("/quota/:user", a.GetQuota)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/progress/:id", websocket.New(a.hub.Handle))
}

// jobRequest is the JSON submission body shared by the youtube and text
// endpoints; the upload endpoint carries the same fields as form values.
type jobRequest struct {
	YouTubeURL  string   `json:"youtube_url"`
	TextContent string   `json:"text_content"`
	StartTime   *float64 `json:"start_time"`
	EndTime     *float64 `json:"end_time"`

	ChunkSizeMinutes int    `json:"chunk_size_minutes"`
	TargetLanguage   string `json:"target_language"`

	TranscriptionModel string `json:"transcription_model"`
	CorrectionModel    string `json:"correction_model"`
	SummarizationModel string `json:"summarization_model"`

	SummaryInstructions string `json:"summary_instructions"`
	SummaryWordLimit    int    `json:"summary_word_limit"`

	UserID string `json:"user_id"`
}

func (req *jobRequest) toInput(entry models.EntryPoint, cfg *config.Config) (*models.PipelineInput, error) {
	chunkSize := req.ChunkSizeMinutes
	if chunkSize == 0 {
		chunkSize = cfg.Pipeline.ChunkSizeMinutes
	}
	lang := req.TargetLanguage
	if lang == "" {
		lang = cfg.Pipeline.TargetLanguage
	}

	return models.NewPipelineInput(models.PipelineInput{
		EntryPoint:          entry,
		YouTubeURL:          req.YouTubeURL,
		TextContent:         req.TextContent,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		ChunkSizeMinutes:    chunkSize,
		TargetLanguage:      lang,
		TranscriptionModel:  req.TranscriptionModel,
		CorrectionModel:     req.CorrectionModel,
		SummarizationModel:  req.SummarizationModel,
		SummaryInstructions: req.SummaryInstructions,
		SummaryWordLimit:    req.SummaryWordLimit,
		UserID:              req.UserID,
	})
}

func (a *API) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"pending_jobs": a.pool.Pending(),
	})
}

func (a *API) SubmitYouTube(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", "ERR_BAD_BODY")
	}

	input, err := req.toInput(models.EntryYouTube, a.cfg)
	if err != nil {
		return badRequest(c, err.Error(), "ERR_INVALID_INPUT")
	}

	return a.accept(c, input)
}

func (a *API) SubmitText(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", "ERR_BAD_BODY")
	}

	input, err := req.toInput(models.EntryText, a.cfg)
	if err != nil {
		return badRequest(c, err.Error(), "ERR_INVALID_INPUT")
	}

	return a.accept(c, input)
}

func (a *API) SubmitUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "no file uploaded", "ERR_NO_FILE")
	}

	maxSize := int64(a.cfg.Limits.MaxFileSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return badRequest(c, fmt.Sprintf("file too large (max %dMB)", a.cfg.Limits.MaxFileSizeMB), "ERR_FILE_TOO_LARGE")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".mp3", ".wav", ".m4a", ".flac", ".ogg", ".opus", ".aac":
	default:
		return badRequest(c, fmt.Sprintf("unsupported audio format %q", ext), "ERR_INVALID_FORMAT")
	}

	tempPath := filepath.Join(a.cfg.Storage.TempDir, uuid.New().String()+ext)
	if err := c.SaveFile(file, tempPath); err != nil {
		a.logger.Error(c.UserContext(), "save uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	chunkSize := formInt(c, "chunk_size_minutes")
	if chunkSize == 0 {
		chunkSize = a.cfg.Pipeline.ChunkSizeMinutes
	}
	lang := c.FormValue("target_language")
	if lang == "" {
		lang = a.cfg.Pipeline.TargetLanguage
	}

	input, err := models.NewPipelineInput(models.PipelineInput{
		EntryPoint:          models.EntryAudioFile,
		AudioFilePath:       tempPath,
		ChunkSizeMinutes:    chunkSize,
		TargetLanguage:      lang,
		TranscriptionModel:  c.FormValue("transcription_model"),
		CorrectionModel:     c.FormValue("correction_model"),
		SummarizationModel:  c.FormValue("summarization_model"),
		SummaryInstructions: c.FormValue("summary_instructions"),
		SummaryWordLimit:    formInt(c, "summary_word_limit"),
		UserID:              c.FormValue("user_id"),
	})
	if err != nil {
		return badRequest(c, err.Error(), "ERR_INVALID_INPUT")
	}

	return a.accept(c, input)
}

// accept runs the quota gate, records the pending job and enqueues it.
func (a *API) accept(c *fiber.Ctx, input *models.PipelineInput) error {
	ctx := c.UserContext()

	if input.UserID != "" {
		quota, err := a.store.CheckQuota(ctx, input.UserID)
		if err != nil {
			a.logger.Warn(ctx, "quota check for %s: %v", input.UserID, err)
		} else if !quota.Allowed {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "credit quota exhausted",
				"code":  "ERR_QUOTA_EXHAUSTED",
				"quota": quota,
			})
		}
	}

	rec := models.NewPendingRecord(input)
	if err := a.store.Save(ctx, rec); err != nil {
		a.logger.Error(ctx, "save pending job %s: %v", input.JobID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record job",
			"code":  "ERR_STORE_FAILED",
		})
	}

	if err := a.pool.Enqueue(input); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_QUEUE_FULL",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": input.JobID,
		"status": models.StatusPending,
	})
}

func (a *API) GetJob(c *fiber.Ctx) error {
	rec, err := a.store.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, jobstore.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "job not found",
			"code":  "ERR_NOT_FOUND",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

func (a *API) ListJobs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	recs, err := a.store.List(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"jobs": recs, "count": len(recs)})
}

func (a *API) DeleteJob(c *fiber.Ctx) error {
	err := a.store.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, jobstore.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "job not found",
			"code":  "ERR_NOT_FOUND",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *API) GetQuota(c *fiber.Ctx) error {
	quota, err := a.store.CheckQuota(c.UserContext(), c.Params("user"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(quota)
}

func formInt(c *fiber.Ctx, name string) int {
	v, err := strconv.Atoi(c.FormValue(name))
	if err != nil {
		return 0
	}
	return v
}

func badRequest(c *fiber.Ctx, msg, code string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}
