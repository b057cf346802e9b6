package service

import (
	"strings"

	"engagerag/internal/docs"
	"engagerag/internal/domain"
)

// Fixed replies returned without consulting the model.
const (
	GreetingMessage    = "Hello! How can I help you analyze your social media engagement today?"
	UnavailableMessage = "Sorry, analytics data is currently unavailable. Please try again later or contact support."
	ErrorMessage       = "Sorry, an error occurred while processing your request. Please try again."
)

var greetings = map[string]struct{}{
	"hi":        {},
	"hello":     {},
	"hey":       {},
	"greetings": {},
}

// IsGreeting reports whether the whole query is a bare greeting.
func IsGreeting(query string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(query))]
	return ok
}

const systemInstruction = `You are a Social Media Analytics Expert specializing in post engagement analysis.

IMPORTANT GUIDELINES:
1. ONLY use figures shown in the data below. Never invent or estimate numbers.
2. When comparing post types:
   - compare every metric: likes, comments, shares, views and engagement rate
   - put them in one markdown table with aligned columns, one column per post type
   - name the better performer in the last column of every row
   - use 1 decimal for averages and 2 decimals for percentages
   - finish with a clear overall recommendation
3. If asked about something the data does not cover (for example hashtags or audience demographics), say that this information is not available.
4. Keep the answer factual. If the data contradicts expectations, trust the data.

Example comparison format:

| Metric          | Reel Posts | Image Posts | Better Performer |
|-----------------|------------|-------------|------------------|
| Likes           | X          | X           | [Type]           |
| Comments        | X          | X           | [Type]           |
| Shares          | X          | X           | [Type]           |
| Views           | X          | X           | [Type]           |
| Engagement Rate | X%         | X%          | [Type]           |

Overall recommendation: [clear statement based on the data]

Format your response in a clear, structured way using markdown.`

// Transcript renders prior turns oldest first as "Human:" and "Assistant:" lines.
func Transcript(history []domain.Exchange) string {
	var b strings.Builder
	for _, e := range history {
		switch e.Speaker {
		case domain.SpeakerUser:
			b.WriteString("Human: ")
		case domain.SpeakerAssistant:
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(e.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// BuildPrompt assembles the single prompt sent to the model.
func BuildPrompt(snap domain.Snapshot, retrieved []domain.SearchResult, history []domain.Exchange, question string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nHere is the current social media performance data:\n\n")
	b.WriteString(docs.ContextBlock(snap))

	if len(retrieved) > 0 {
		b.WriteString("\nSUPPORTING ANALYSIS:\n")
		for _, r := range retrieved {
			b.WriteString("\n")
			b.WriteString(strings.TrimSpace(r.Document.Text))
			b.WriteString("\n")
		}
	}

	if t := Transcript(history); t != "" {
		b.WriteString("\nPrevious conversation:\n")
		b.WriteString(t)
	}
	b.WriteString("\nBased on the above data, answer this question: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
