package models

// SavedDraft is a generated legal document kept by the user.
type SavedDraft struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Content      string `json:"content"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

func (d *SavedDraft) RecordID() string     { return d.ID }
func (d *SavedDraft) RecencyMillis() int64 { return d.UpdatedAt }

// DocumentDraft is the document currently open in the drafting view.
// ID is empty until the first save.
type DocumentDraft struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Content      string `json:"content"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
}
