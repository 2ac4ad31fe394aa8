package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/drewmudry/vibecast-api/internal/config"
)

// composeSourceField is the template element that receives the rendered video.
const composeSourceField = "Video.source"

// Composer submits the rendered video to a template-based render API.
type Composer struct {
	Config     config.ComposeConfig
	HTTPClient *http.Client
}

type composeRequest struct {
	TemplateID    string            `json:"template_id"`
	Modifications map[string]string `json:"modifications"`
}

func (c *Composer) Compose(ctx context.Context, videoURL string) (string, error) {
	body, err := json.Marshal(composeRequest{
		TemplateID:    c.Config.TemplateID,
		Modifications: map[string]string{composeSourceField: videoURL},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read compose response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("compose request returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to parse compose response: %w", err)
	}

	url := ComposedURL(decoded)
	if url == "" {
		return "", fmt.Errorf("compose response has no url")
	}
	return url, nil
}

// ComposedURL finds the output URL in a render response. Checked in order:
// top-level "url", top-level "video_url", then "url" of the first array
// element. Empty strings are skipped.
func ComposedURL(v any) string {
	switch body := v.(type) {
	case map[string]any:
		if s := firstString(nonEmptyAt(body, "url"), nonEmptyAt(body, "video_url")); s != nil {
			return *s
		}
	case []any:
		if len(body) > 0 {
			if first, ok := body[0].(map[string]any); ok {
				if s := nonEmptyAt(first, "url"); s != nil {
					return *s
				}
			}
		}
	}
	return ""
}

func nonEmptyAt(m map[string]any, key string) *string {
	if s := stringAt(m, key); s != nil {
		return nonEmpty(*s)
	}
	return nil
}
