package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"engagerag/internal/domain"
)

func TestIsGreeting(t *testing.T) {
	assert.True(t, IsGreeting("  Hi\n"))
	assert.True(t, IsGreeting("GREETINGS"))
	assert.False(t, IsGreeting("hi there"))
	assert.False(t, IsGreeting(""))
}

func TestTranscript(t *testing.T) {
	got := Transcript([]domain.Exchange{
		domain.UserSaid("q1"),
		domain.AssistantSaid("a1"),
		{Speaker: "system", Text: "ignored"},
		domain.UserSaid("q2"),
	})
	assert.Equal(t, "Human: q1\nAssistant: a1\nHuman: q2\n", got)
}

func TestBuildPrompt_Sections(t *testing.T) {
	snap := domain.NewSnapshot()
	snap.TotalPosts = 1
	snap.PostTypeDistribution[domain.PostTypeVideo] = 1

	retrieved := []domain.SearchResult{{Document: domain.Document{ID: "day_analysis", Text: "Sundays are strongest."}, Score: 0.4}}
	p := BuildPrompt(snap, retrieved, nil, "when to post?")

	ctx := strings.Index(p, "SOCIAL MEDIA ANALYTICS SUMMARY")
	sup := strings.Index(p, "SUPPORTING ANALYSIS:")
	q := strings.Index(p, "answer this question: when to post?")
	assert.True(t, ctx > 0 && sup > ctx && q > sup)
	assert.Contains(t, p, "Sundays are strongest.")
	assert.NotContains(t, p, "Previous conversation:")

	bare := BuildPrompt(snap, nil, nil, "x")
	assert.NotContains(t, bare, "SUPPORTING ANALYSIS:")
}
