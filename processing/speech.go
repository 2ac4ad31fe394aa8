package processing

import (
	"context"
	"fmt"

	"github.com/drewmudry/vibecast-api/fal"
	"github.com/drewmudry/vibecast-api/internal/config"
)

// SpeechSynthesizer turns narration text into a hosted audio file.
type SpeechSynthesizer struct {
	Client *fal.Client
	Config config.SpeechConfig
}

func (s *SpeechSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	result, err := s.Client.Subscribe(ctx, s.Config.Model, map[string]any{
		"text":      text,
		"voice":     s.Config.Voice,
		"stability": s.Config.Stability,
		"speed":     s.Config.Speed,
	}, fal.SubscribeOptions{})
	if err != nil {
		return "", err
	}

	data, _ := result.Data.(map[string]any)
	url := stringAt(data, "audio", "url")
	if url == nil || *url == "" {
		return "", fmt.Errorf("%s response has no audio url", s.Config.Model)
	}
	return *url, nil
}
