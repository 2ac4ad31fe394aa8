package processing

import (
	"context"
	"log"
	"strings"

	"github.com/drewmudry/vibecast-api/fal"
	"github.com/drewmudry/vibecast-api/models"
)

// MockDraftNote is attached to every draft produced without provider access.
const MockDraftNote = "FAL credentials are not configured. Returning a mock draft so you can continue building the experience."

// DraftProvider calls the generation model and returns its payload untouched.
type DraftProvider interface {
	GenerateDraft(ctx context.Context, modelID string, input map[string]any) (map[string]any, error)
}

// DraftGenerator produces drafts from briefs, live when a provider and model
// are configured and from the canned mock otherwise.
type DraftGenerator struct {
	Provider DraftProvider
	ModelID  string
}

func NewDraftGenerator(provider DraftProvider, modelID string) *DraftGenerator {
	return &DraftGenerator{Provider: provider, ModelID: modelID}
}

// Live reports whether Generate will call the provider.
func (g *DraftGenerator) Live() bool {
	return g.Provider != nil && g.ModelID != ""
}

// Generate returns a normalized draft, or a *ProviderError if the provider call fails.
func (g *DraftGenerator) Generate(ctx context.Context, brief models.Brief) (models.Draft, error) {
	if !g.Live() {
		return MockDraft(brief), nil
	}

	raw, err := g.Provider.GenerateDraft(ctx, g.ModelID, ProviderInput(brief))
	if err != nil {
		return models.Draft{}, newProviderError(err)
	}

	return NormalizeDraft(raw, brief, g.ModelID), nil
}

// ProviderInput is the request body sent to the draft model. Empty optional
// fields are left out.
func ProviderInput(brief models.Brief) map[string]any {
	input := map[string]any{
		"topic":            brief.Topic,
		"tone":             brief.Tone,
		"host_style":       brief.HostStyle,
		"duration_minutes": brief.Duration,
		"instructions":     BuildPrompt(brief),
	}
	if brief.Audience != "" {
		input["audience"] = brief.Audience
	}
	if brief.TalkingPoints != "" {
		input["talking_points"] = brief.TalkingPoints
	}
	if brief.CallToAction != "" {
		input["call_to_action"] = brief.CallToAction
	}
	return input
}

// MockDraft is the canned draft returned when no provider is configured.
func MockDraft(brief models.Brief) models.Draft {
	script := strings.Join([]string{
		"# Cold open\nWelcome to VibeCast — today we're diving into " + strings.ToLower(brief.Topic) + ".",
		"# Main act\nFrame the episode with three fast-moving segments, each ending on a forward-looking question.",
		"# Outro\nRecap the change listeners will feel and point them to the next touchpoint.",
	}, "\n\n")

	note := MockDraftNote
	return models.Draft{
		Script:       script,
		Segments:     FallbackSegments(),
		AudioURL:     nil,
		CallToAction: nonEmpty(brief.CallToAction),
		ModelID:      nil,
		Note:         &note,
	}
}

// FalDraftProvider runs the draft model through the fal queue.
type FalDraftProvider struct {
	Client *fal.Client
}

func (p *FalDraftProvider) GenerateDraft(ctx context.Context, modelID string, input map[string]any) (map[string]any, error) {
	result, err := p.Client.Subscribe(ctx, modelID, input, fal.SubscribeOptions{
		OnLog: func(message string) {
			log.Printf("[drafts] %s: %s", modelID, message)
		},
	})
	if err != nil {
		return nil, err
	}
	return result.Map(), nil
}
