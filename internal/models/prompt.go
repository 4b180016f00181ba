package models

// Prompt is a stored journal-writing suggestion.
type Prompt struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}
