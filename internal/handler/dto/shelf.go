package dto

import (
	"time"

	"github.com/shelfmark/shelfmark/internal/model"
)

// BookPayload carries the catalog data of the book being shelved, as
// previously returned by the search endpoint.
type BookPayload struct {
	ISBN        string   `json:"isbn" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Authors     []string `json:"authors" validate:"omitempty,max=10"`
	Publisher   string   `json:"publisher,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty" validate:"omitempty,url"`
	Description string   `json:"description,omitempty"`
}

// CreateReadRequest registers a book on the read shelf.
// Tag elements follow the (id, tag) patch convention; on creation
// every id must be 0.
type CreateReadRequest struct {
	Book     BookPayload      `json:"book" validate:"required"`
	ReadDate *time.Time       `json:"read_date"`
	Rating   *float64         `json:"rating"`
	Review   *string          `json:"review"`
	Tags     []model.TagPatch `json:"tags" validate:"omitempty,max=5"`
}

// UpdateReadRequest updates a read entry's annotation. The tag list is
// a sparse patch: ids the client wants to keep unchanged may simply be
// omitted.
type UpdateReadRequest struct {
	ReadDate *time.Time       `json:"read_date"`
	Rating   *float64         `json:"rating"`
	Review   *string          `json:"review"`
	Tags     []model.TagPatch `json:"tags" validate:"omitempty,max=5"`
}

// ShiftRequest carries the annotation for the read entry produced by
// shifting a wish entry.
type ShiftRequest struct {
	ReadDate *time.Time       `json:"read_date"`
	Rating   *float64         `json:"rating"`
	Review   *string          `json:"review"`
	Tags     []model.TagPatch `json:"tags" validate:"omitempty,max=5"`
}

// CreateWishRequest registers a book on the wish shelf.
type CreateWishRequest struct {
	Book   BookPayload `json:"book" validate:"required"`
	Reason *string     `json:"reason"`
}

// UpdateWishRequest updates a wish entry's reason text.
type UpdateWishRequest struct {
	Reason *string `json:"reason"`
}

// Pagination reports the page window and total match count.
type Pagination struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// ReadShelfResponse is one page of the read shelf.
type ReadShelfResponse struct {
	Data       []*model.ReadEntry `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// WishShelfResponse is one page of the wish shelf.
type WishShelfResponse struct {
	Data       []*model.WishEntry `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// ShelfStatusResponse reports the joint shelf state for one book.
type ShelfStatusResponse struct {
	BookID int64  `json:"book_id"`
	Status string `json:"status"`
}
