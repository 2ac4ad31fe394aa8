package processing

import (
	"math"
	"strconv"
	"strings"

	"github.com/drewmudry/vibecast-api/models"
)

// Validation messages returned to clients.
const (
	MessageTopicRequired   = "A topic is required to generate an episode."
	MessageDurationInvalid = "Please provide a numeric duration (minutes)."
)

const (
	defaultTone      = "inspiring"
	defaultHostStyle = "storyteller"
	minDuration      = 3
)

// BriefRequest is the body of a draft request. Duration stays untyped because
// clients send either a number or a numeric string.
type BriefRequest struct {
	Topic         string `json:"topic"`
	Tone          string `json:"tone"`
	HostStyle     string `json:"hostStyle"`
	Audience      string `json:"audience"`
	Duration      any    `json:"duration"`
	TalkingPoints string `json:"talkingPoints"`
	CallToAction  string `json:"callToAction"`
}

// ParseBrief validates a request and applies defaults. It returns a
// *ValidationError when topic or duration is unusable.
func ParseBrief(req BriefRequest) (models.Brief, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return models.Brief{}, &ValidationError{Field: "topic", Message: MessageTopicRequired}
	}

	duration, ok := parseDuration(req.Duration)
	if !ok {
		return models.Brief{}, &ValidationError{Field: "duration", Message: MessageDurationInvalid}
	}

	brief := models.Brief{
		Topic:         topic,
		Tone:          req.Tone,
		HostStyle:     req.HostStyle,
		Audience:      strings.TrimSpace(req.Audience),
		Duration:      math.Max(minDuration, duration),
		TalkingPoints: req.TalkingPoints,
		CallToAction:  req.CallToAction,
	}
	if brief.Tone == "" {
		brief.Tone = defaultTone
	}
	if brief.HostStyle == "" {
		brief.HostStyle = defaultHostStyle
	}
	return brief, nil
}

// parseDuration accepts a JSON number or a numeric string. Zero counts as missing.
func parseDuration(v any) (float64, bool) {
	var d float64
	switch val := v.(type) {
	case float64:
		d = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		d = parsed
	default:
		return 0, false
	}
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
