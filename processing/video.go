package processing

import (
	"context"
	"fmt"
	"log"

	"github.com/drewmudry/vibecast-api/fal"
	"github.com/drewmudry/vibecast-api/internal/config"
)

// VideoRenderer animates the presenter image against the narration audio.
type VideoRenderer struct {
	Client *fal.Client
	Config config.VideoConfig
}

func (r *VideoRenderer) Render(ctx context.Context, audioURL string) (string, error) {
	var opts fal.SubscribeOptions
	if r.Config.StreamLogs {
		opts.OnLog = func(message string) {
			log.Printf("[video] %s", message)
		}
	}

	result, err := r.Client.Subscribe(ctx, r.Config.Model, map[string]any{
		"image_url":  r.Config.PresenterImageURL,
		"audio_url":  audioURL,
		"resolution": r.Config.Resolution,
	}, opts)
	if err != nil {
		return "", err
	}

	data, _ := result.Data.(map[string]any)
	url := stringAt(data, "video", "url")
	if url == nil || *url == "" {
		return "", fmt.Errorf("%s response has no video url", r.Config.Model)
	}
	return *url, nil
}
