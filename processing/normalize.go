package processing

import (
	"strings"

	"github.com/drewmudry/vibecast-api/models"
)

var fallbackSegments = []models.Segment{
	{
		Title:   "Hook your listeners",
		Summary: "Lead with a tension-building cold open that previews the transformation listeners will experience.",
	},
	{
		Title:   "Develop the narrative",
		Summary: "Layer research, guest voices, and host commentary while pacing out big reveals every few minutes.",
	},
	{
		Title:   "Close with momentum",
		Summary: "Summarize the emotional core, restate the key insight, and guide listeners to the next step.",
	},
}

// FallbackSegments returns a fresh copy of the canned Hook / Develop / Close segments.
func FallbackSegments() []models.Segment {
	return append([]models.Segment(nil), fallbackSegments...)
}

// NormalizeDraft turns an arbitrary provider payload into a Draft. Each field
// walks its own precedence chain and ends at a default; it never fails.
//
// The payload may wrap the model output in "data"; when it does, that object
// is the primary source and the top level is the secondary one.
func NormalizeDraft(raw map[string]any, brief models.Brief, modelID string) models.Draft {
	source := raw
	switch data := raw["data"].(type) {
	case map[string]any:
		source = data
	case []any:
		// An array under "data" has no named fields.
		source = map[string]any{}
	}

	draft := models.Draft{
		Script:   normalizeScript(source, raw, brief),
		Segments: normalizeSegments(source["segments"]),
		AudioURL: firstString(
			stringAt(source, "audioUrl"),
			stringAt(source, "audio", "url"),
			stringAt(raw, "audio", "url"),
		),
		CallToAction: firstString(
			stringAt(source, "callToAction"),
			nonEmpty(brief.CallToAction),
		),
		Note: firstString(
			stringAt(source, "note"),
			stringAt(raw, "note"),
		),
		ModelID: nonEmpty(modelID),
	}
	return draft
}

func normalizeScript(source, raw map[string]any, brief models.Brief) string {
	if s := firstString(
		stringAt(source, "script"),
		stringAt(source, "output"),
		stringAt(raw, "output"),
	); s != nil {
		return *s
	}
	return BuildPrompt(brief)
}

// normalizeSegments keeps well-formed entries of an array. Anything other than
// an array falls back to the canned segments; an array with no valid entries
// stays empty.
func normalizeSegments(v any) []models.Segment {
	items, ok := v.([]any)
	if !ok {
		return FallbackSegments()
	}

	segments := make([]models.Segment, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title, okTitle := obj["title"].(string)
		summary, okSummary := obj["summary"].(string)
		if !okTitle || !okSummary {
			continue
		}
		segments = append(segments, models.Segment{
			Title:   strings.TrimSpace(title),
			Summary: strings.TrimSpace(summary),
		})
	}
	return segments
}

// stringAt follows keys through nested objects and returns the string found
// at the end, or nil if any step is missing or of the wrong type.
func stringAt(m map[string]any, keys ...string) *string {
	var cur any = m
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	s, ok := cur.(string)
	if !ok {
		return nil
	}
	return &s
}

func firstString(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
