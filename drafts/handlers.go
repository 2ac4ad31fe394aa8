package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/drewmudry/vibecast-api/models"
	"github.com/drewmudry/vibecast-api/processing"
	"github.com/gin-gonic/gin"
)

// Generator produces a draft for a validated brief.
type Generator interface {
	Generate(ctx context.Context, brief models.Brief) (models.Draft, error)
}

type Handler struct {
	Generator Generator
}

func NewHandler(generator Generator) *Handler {
	return &Handler{Generator: generator}
}

// GenerateDraft handles POST /api/generate.
func (h *Handler) GenerateDraft(c *gin.Context) {
	var req processing.BriefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	brief, err := processing.ParseBrief(req)
	if err != nil {
		var vErr *processing.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft, err := h.Generator.Generate(c.Request.Context(), brief)
	if err != nil {
		log.Printf("[drafts] Generation failed for topic %q: %v", brief.Topic, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, draft)
}

// bindErrorMessage maps a wrongly typed topic to the topic message.
func bindErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "topic" {
		return processing.MessageTopicRequired
	}
	return "Invalid JSON payload."
}
