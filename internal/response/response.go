// Package response reduces a deliberation cycle's thoughts to one reply.
package response

import (
	"strings"

	"github.com/rcliao/sentiment-agent/internal/model"
)

// Placeholder is the reply when there is nothing to say yet.
const Placeholder = "I'm still processing that... give me a moment to think."

// supportGate is the exclusive confidence floor for a supporting clause.
const supportGate = 0.7

// Respond builds the reply from the most confident thought, plus the first
// other thought above the support gate.
func Respond(thoughts []model.Thought) string {
	if len(thoughts) == 0 {
		return Placeholder
	}

	main := 0
	for i, t := range thoughts {
		if t.Confidence > thoughts[main].Confidence {
			main = i
		}
	}

	parts := []string{"From my perspective, " + strings.ToLower(thoughts[main].Content)}
	for i, t := range thoughts {
		if i == main || t.Confidence <= supportGate {
			continue
		}
		parts = append(parts, "I also consider that "+strings.ToLower(t.Content))
		break
	}
	return strings.Join(parts, " ")
}
