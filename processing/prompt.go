package processing

import (
	"fmt"
	"strings"

	"github.com/drewmudry/vibecast-api/models"
)

// BuildPrompt renders the showrunner instructions for a brief. Optional lines
// are left out when the brief field is empty.
func BuildPrompt(brief models.Brief) string {
	lines := []string{
		"You are VibeCast, an award-winning podcast showrunner.",
		"Craft a complete episode treatment with a concise cold open, three to five clearly titled segments, and a scripted outro.",
		fmt.Sprintf("Topic: %s", brief.Topic),
		fmt.Sprintf("Tone: %s", brief.Tone),
		fmt.Sprintf("Host style: %s", brief.HostStyle),
	}
	if brief.Audience != "" {
		lines = append(lines, fmt.Sprintf("Audience: %s", brief.Audience))
	}
	if brief.TalkingPoints != "" {
		lines = append(lines, fmt.Sprintf("Talking points to incorporate: %s", brief.TalkingPoints))
	}
	lines = append(lines, fmt.Sprintf("Keep the total runtime near %s minutes.", formatNumber(brief.Duration)))
	if brief.CallToAction != "" {
		lines = append(lines, fmt.Sprintf("End with this call to action: %s", brief.CallToAction))
	} else {
		lines = append(lines, "End with a compelling invitation that keeps listeners engaged.")
	}
	lines = append(lines, "Return JSON with fields: script (markdown), segments (array of {title, summary}), and audioUrl (optional).")

	return strings.Join(lines, "\n")
}
