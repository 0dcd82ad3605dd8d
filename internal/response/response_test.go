package response

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/sentiment-agent/internal/model"
)

func th(content string, confidence float64) model.Thought {
	return model.Thought{Content: content, Confidence: confidence}
}

func TestRespond_Empty(t *testing.T) {
	assert.Equal(t, Placeholder, Respond(nil))
	assert.Equal(t, Placeholder, Respond([]model.Thought{}))
}

func TestRespond_MainAndSupport(t *testing.T) {
	got := Respond([]model.Thought{th("Alpha Thought", 0.9), th("Beta Thought", 0.75)})
	assert.Equal(t, "From my perspective, alpha thought I also consider that beta thought", got)
	assert.Less(t, strings.Index(got, "alpha thought"), strings.Index(got, "beta thought"))
}

func TestRespond_MainNotFirst(t *testing.T) {
	got := Respond([]model.Thought{th("Observe", 0.8), th("Inquire", 0.9), th("Meta", 0.7)})
	assert.Equal(t, "From my perspective, inquire I also consider that observe", got)
}

func TestRespond_TieFirstWins(t *testing.T) {
	got := Respond([]model.Thought{th("One", 0.8), th("Two", 0.8)})
	assert.Equal(t, "From my perspective, one I also consider that two", got)
}

func TestRespond_NoSupportAtGate(t *testing.T) {
	got := Respond([]model.Thought{th("Let me process", 0.7), th("Meta", 0.7), th("Wonder", 0.6)})
	assert.Equal(t, "From my perspective, let me process", got)
}

func TestRespond_DuplicateContentStillSupports(t *testing.T) {
	// support excludes the main thought by position, not by value
	got := Respond([]model.Thought{th("Same", 0.9), th("Same", 0.9)})
	assert.Equal(t, "From my perspective, same I also consider that same", got)
}
