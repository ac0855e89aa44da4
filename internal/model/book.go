package model

import "time"

// Book is a catalog record sourced from the external book search API.
// Books are reference data: upserted by ISBN on first sighting and
// never modified afterwards.
type Book struct {
	ID          int64     `json:"id"`
	ISBN        string    `json:"isbn"`
	Title       string    `json:"title"`
	Authors     []string  `json:"authors"`
	Publisher   string    `json:"publisher,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
}
