package processing

import (
	"context"
	"log"
	"net/http"

	"github.com/drewmudry/vibecast-api/fal"
	"github.com/drewmudry/vibecast-api/internal/config"
	"github.com/drewmudry/vibecast-api/pipeline"
)

// Stage names, in execution order.
const (
	StageNarration = "narration"
	StageSpeech    = "speech"
	StageVideo     = "video"
	StageCompose   = "compose"
)

type Narrator interface {
	Narrate(ctx context.Context, transcript string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

type Renderer interface {
	Render(ctx context.Context, audioURL string) (string, error)
}

type VideoComposer interface {
	Compose(ctx context.Context, videoURL string) (string, error)
}

// VideoStages holds one implementation per stage. Composer is optional.
type VideoStages struct {
	Narrator Narrator
	Speech   Synthesizer
	Video    Renderer
	Composer VideoComposer
}

// NewVideoPipeline orders the stages: narration, speech, video, then compose
// when a composer is present.
func NewVideoPipeline(s VideoStages) *pipeline.Pipeline {
	stages := []pipeline.Stage{
		{Name: StageNarration, Kind: ErrGeneration, Run: s.Narrator.Narrate},
		{Name: StageSpeech, Kind: ErrSynthesis, Run: s.Speech.Synthesize},
		{Name: StageVideo, Kind: ErrRender, Run: s.Video.Render},
	}
	if s.Composer != nil {
		stages = append(stages, pipeline.Stage{Name: StageCompose, Kind: ErrComposition, Run: s.Composer.Compose})
	}
	return pipeline.New(stages...)
}

// NewVideoStages picks stage implementations from configuration. Without fal
// credentials every stage is mocked so the service still works end to end.
func NewVideoStages(cfg *config.Config, falClient *fal.Client, httpClient *http.Client) VideoStages {
	if falClient == nil {
		log.Println("[pipeline] FAL credentials are not configured, video pipeline runs with mock stages")
		return MockVideoStages()
	}

	stages := VideoStages{
		Speech: &SpeechSynthesizer{Client: falClient, Config: cfg.Speech},
		Video:  &VideoRenderer{Client: falClient, Config: cfg.Video},
	}

	if cfg.OpenAI.APIKey != "" {
		stages.Narrator = NewOpenAINarrator(cfg.OpenAI, cfg.Narration.TargetSeconds, httpClient)
	} else {
		stages.Narrator = &FalNarrator{
			Client:        falClient,
			Endpoint:      cfg.Narration.Model,
			LLM:           cfg.Narration.LLM,
			TargetSeconds: cfg.Narration.TargetSeconds,
		}
	}

	if cfg.ComposeEnabled() {
		stages.Composer = &Composer{Config: cfg.Compose, HTTPClient: httpClient}
	}

	return stages
}
