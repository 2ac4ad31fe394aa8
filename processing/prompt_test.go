package processing

import (
	"errors"
	"strings"
	"testing"

	"github.com/drewmudry/vibecast-api/models"
)

func TestBuildPrompt_AllFields(t *testing.T) {
	brief := models.Brief{
		Topic:         "Launch recap",
		Tone:          "playful",
		HostStyle:     "interviewer",
		Audience:      "sales team",
		Duration:      12.5,
		TalkingPoints: "pricing, roadmap",
		CallToAction:  "Book a demo",
	}

	want := strings.Join([]string{
		"You are VibeCast, an award-winning podcast showrunner.",
		"Craft a complete episode treatment with a concise cold open, three to five clearly titled segments, and a scripted outro.",
		"Topic: Launch recap",
		"Tone: playful",
		"Host style: interviewer",
		"Audience: sales team",
		"Talking points to incorporate: pricing, roadmap",
		"Keep the total runtime near 12.5 minutes.",
		"End with this call to action: Book a demo",
		"Return JSON with fields: script (markdown), segments (array of {title, summary}), and audioUrl (optional).",
	}, "\n")

	if got := BuildPrompt(brief); got != want {
		t.Errorf("BuildPrompt() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildPrompt_OmitsAbsentFields(t *testing.T) {
	brief := models.Brief{Topic: "Launch recap", Tone: "inspiring", HostStyle: "storyteller", Duration: 10}
	got := BuildPrompt(brief)

	for _, absent := range []string{"Audience:", "Talking points", "End with this call to action"} {
		if strings.Contains(got, absent) {
			t.Errorf("prompt contains %q for an absent field", absent)
		}
	}
	for _, present := range []string{
		"Topic: Launch recap",
		"Keep the total runtime near 10 minutes.",
		"End with a compelling invitation that keeps listeners engaged.",
	} {
		if !strings.Contains(got, present) {
			t.Errorf("prompt missing %q", present)
		}
	}
	if lines := strings.Split(got, "\n"); len(lines) != 8 {
		t.Errorf("got %d lines, want 8", len(lines))
	}
	if BuildPrompt(brief) != got {
		t.Error("BuildPrompt is not deterministic")
	}
}

func TestParseBrief(t *testing.T) {
	brief, err := ParseBrief(BriefRequest{
		Topic:    "  Launch recap ",
		Duration: float64(1),
		Audience: "  execs  ",
	})
	if err != nil {
		t.Fatalf("ParseBrief() error = %v", err)
	}

	if brief.Topic != "Launch recap" {
		t.Errorf("Topic = %q", brief.Topic)
	}
	if brief.Duration != 3 {
		t.Errorf("Duration = %v, want floor of 3", brief.Duration)
	}
	if brief.Tone != "inspiring" || brief.HostStyle != "storyteller" {
		t.Errorf("defaults not applied: %+v", brief)
	}
	if brief.Audience != "execs" {
		t.Errorf("Audience = %q", brief.Audience)
	}
}

func TestParseBrief_NumericString(t *testing.T) {
	brief, err := ParseBrief(BriefRequest{Topic: "x", Duration: "15"})
	if err != nil {
		t.Fatalf("ParseBrief() error = %v", err)
	}
	if brief.Duration != 15 {
		t.Errorf("Duration = %v, want 15", brief.Duration)
	}
}

func TestParseBrief_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		req   BriefRequest
		field string
	}{
		{"missing topic", BriefRequest{Duration: float64(10)}, "topic"},
		{"blank topic", BriefRequest{Topic: "   ", Duration: float64(10)}, "topic"},
		{"missing duration", BriefRequest{Topic: "x"}, "duration"},
		{"zero duration", BriefRequest{Topic: "x", Duration: float64(0)}, "duration"},
		{"word duration", BriefRequest{Topic: "x", Duration: "ten"}, "duration"},
		{"bool duration", BriefRequest{Topic: "x", Duration: true}, "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBrief(tt.req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}
