package models

// SavedResearch is a deep-research result kept by the user. Recency is
// tracked by Timestamp.
type SavedResearch struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Query     string   `json:"query"`
	Results   string   `json:"results"`
	Citations []Source `json:"citations"`
	Timestamp int64    `json:"timestamp"`
}

func (r *SavedResearch) RecordID() string     { return r.ID }
func (r *SavedResearch) RecencyMillis() int64 { return r.Timestamp }

// ResearchDraft holds the latest research run before it is saved.
type ResearchDraft struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title"`
	Query          string   `json:"query"`
	OptimizedQuery string   `json:"optimizedQuery,omitempty"`
	Results        string   `json:"results"`
	Citations      []Source `json:"citations"`
}
