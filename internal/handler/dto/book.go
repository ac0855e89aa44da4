package dto

import "github.com/shelfmark/shelfmark/internal/model"

// SearchResponse is one page of catalog search results.
type SearchResponse struct {
	Data       []model.Book `json:"data"`
	Pagination Pagination   `json:"pagination"`
}
