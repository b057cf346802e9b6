package domain

// Category tags what a retrievable document describes.
type Category string

const (
	CategoryStatistics       Category = "statistics"
	CategoryPostTypeAnalysis Category = "post_type_analysis"
	CategoryTimeAnalysis     Category = "time_analysis"
	CategoryDayAnalysis      Category = "day_analysis"
	CategoryRecommendations  Category = "recommendations"
	CategorySamplePost       Category = "sample_post"
)

// Document is a unit of retrievable text synthesized from data or statistics.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Category Category          `json:"category"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Speaker identifies who produced an exchange.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Exchange is one single-sided turn in a conversation.
type Exchange struct {
	Speaker Speaker `json:"role"`
	Text    string  `json:"content"`
}

// UserSaid builds a user exchange.
func UserSaid(text string) Exchange { return Exchange{Speaker: SpeakerUser, Text: text} }

// AssistantSaid builds an assistant exchange.
func AssistantSaid(text string) Exchange { return Exchange{Speaker: SpeakerAssistant, Text: text} }
