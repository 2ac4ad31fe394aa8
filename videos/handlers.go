package videos

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/drewmudry/vibecast-api/models"
	"github.com/drewmudry/vibecast-api/pipeline"
	"github.com/drewmudry/vibecast-api/runs"
	"github.com/gin-gonic/gin"
)

// Runner executes the video pipeline for one run.
type Runner interface {
	Run(ctx context.Context, runID, input string) (*pipeline.Result, error)
}

// RunStore remembers completed runs. Lookup returns runs.ErrNotFound on a miss.
type RunStore interface {
	Lookup(ctx context.Context, runID string) (*models.Run, error)
	Save(ctx context.Context, run *models.Run) error
}

type Handler struct {
	Pipeline Runner
	Runs     RunStore
}

func NewHandler(runner Runner, store RunStore) *Handler {
	return &Handler{Pipeline: runner, Runs: store}
}

type VideoGenerationRequest struct {
	RunID string `json:"runId"`
	Text  string `json:"text"`
}

type VideoGenerationResponse struct {
	RunID    string `json:"runId"`
	VideoURL string `json:"videoUrl"`
	Status   string `json:"status"`
}

// CreateVideo handles POST /api/video-generation.
func (h *Handler) CreateVideo(c *gin.Context) {
	var req VideoGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	if req.RunID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "runId is required"})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	runID, text := req.RunID, req.Text

	ctx := c.Request.Context()

	if run, err := h.lookup(ctx, runID); err == nil {
		log.Printf("[videos] Run %s already completed, skipping pipeline", runID)
		c.JSON(http.StatusOK, VideoGenerationResponse{RunID: run.RunID, VideoURL: run.VideoURL, Status: models.RunStatusCompleted})
		return
	}

	log.Printf("[videos] Starting workflow for run %s", runID)
	result, err := h.Pipeline.Run(ctx, runID, text)
	if err != nil {
		log.Printf("[videos] Run %s failed: %v", runID, err)
		message := err.Error()
		if message == "" {
			message = "Video generation failed"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
		return
	}

	if h.Runs != nil {
		run := &models.Run{
			RunID:      runID,
			Transcript: text,
			VideoURL:   result.Output,
			Status:     models.RunStatusCompleted,
			Stages:     strings.Join(result.Stages, ","),
		}
		if err := h.Runs.Save(ctx, run); err != nil {
			log.Printf("[videos] Error saving run %s: %v", runID, err)
		}
	}

	log.Printf("[videos] Completed run %s", runID)
	c.JSON(http.StatusOK, VideoGenerationResponse{RunID: runID, VideoURL: result.Output, Status: models.RunStatusCompleted})
}

// GetVideo handles GET /api/video-generation/:runId.
func (h *Handler) GetVideo(c *gin.Context) {
	runID := c.Param("runId")

	run, err := h.lookup(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run"})
		return
	}

	c.JSON(http.StatusOK, VideoGenerationResponse{RunID: run.RunID, VideoURL: run.VideoURL, Status: run.Status})
}

// bindErrorMessage maps a wrongly typed field to that field's message.
func bindErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "runId":
			return "runId is required"
		case "text":
			return "text is required"
		}
	}
	return "Invalid JSON payload"
}

func (h *Handler) lookup(ctx context.Context, runID string) (*models.Run, error) {
	if h.Runs == nil {
		return nil, runs.ErrNotFound
	}
	run, err := h.Runs.Lookup(ctx, runID)
	if err != nil && !errors.Is(err, runs.ErrNotFound) {
		log.Printf("[videos] Run lookup failed for %s: %v", runID, err)
	}
	return run, err
}
