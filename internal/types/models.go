package types

// Timestamp layouts used in persisted records.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// CallbackTime is the fixed time slot offered for every callback.
const CallbackTime = "10:00 AM"

// StatusPending is the status every schedule starts with.
const StatusPending = "Pending"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Sentiment is the classifier output for a piece of text.
// Label is on the 5-point scale "1 star" .. "5 stars".
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Schedule is a persisted callback request.
type Schedule struct {
	ID        string   `json:"id"`
	Query     string   `json:"query"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Priority  Priority `json:"priority"`
	Status    string   `json:"status"`
	CreatedAt string   `json:"created_at"`
	Sentiment string   `json:"sentiment"`
	Notes     string   `json:"notes,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}
