package core

// NewsItem represents one article returned by a news provider. Items are
// transient: they live only in session state for the duration of one
// analysis flow and have no identity beyond their position in the result
// list that produced them.
type NewsItem struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"` // provider-formatted date string
	Provider    string `json:"provider"`
}

// DocumentChunk is one retrieved fragment of an uploaded document. Content
// may be empty but is never absent.
type DocumentChunk struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// AnalysisRequest is the user-selected context under which prompts are
// built. An empty Company signals "no specific company" mode, which switches
// the news prompt to first-person framing.
type AnalysisRequest struct {
	Company      string   `json:"company"`
	Technologies []string `json:"technologies"`
	Domains      []string `json:"domains"`
}

// PestQuadrants holds the four PEST category sentence lists.
type PestQuadrants struct {
	P []string `json:"P"`
	E []string `json:"E"`
	S []string `json:"S"`
	T []string `json:"T"`
}

// SwotQuadrants holds the four SWOT category sentence lists.
type SwotQuadrants struct {
	S []string `json:"S"`
	W []string `json:"W"`
	O []string `json:"O"`
	T []string `json:"T"`
}

// Proposals holds the three competing proposal categories plus execution
// KPIs from the combined analysis.
type Proposals struct {
	Benchmarking    []string `json:"benchmarking"`
	Cooperation     []string `json:"cooperation"`
	Differentiation []string `json:"differentiation"`
	ExecutionKPIs   []string `json:"execution_kpis"`
}

// FreshnessWindow maps a user-facing freshness label to a lookback in days.
type FreshnessWindow string

const (
	FreshnessDay   FreshnessWindow = "Day"
	FreshnessWeek  FreshnessWindow = "Week"
	FreshnessMonth FreshnessWindow = "Month"
)

// Days returns the lookback for the window, defaulting to a week.
func (f FreshnessWindow) Days() int {
	switch f {
	case FreshnessDay:
		return 1
	case FreshnessMonth:
		return 30
	default:
		return 7
	}
}
