package model

import "time"

// ShelfKind identifies which of the two shelves an entry lives on.
type ShelfKind string

const (
	ShelfRead ShelfKind = "read"
	ShelfWish ShelfKind = "wish"
)

// ReadFilter selects the ordering of a read-shelf listing.
type ReadFilter int

const (
	FilterNewestFirst ReadFilter = 1
	FilterOldestFirst ReadFilter = 2
	FilterRatingDesc  ReadFilter = 3
	FilterRatingAsc   ReadFilter = 4
)

// IsValid checks if the filter is a known code.
func (f ReadFilter) IsValid() bool {
	return f >= FilterNewestFirst && f <= FilterRatingAsc
}

// ReadEntry is a user's annotated record of a finished book.
// A user has at most one ReadEntry per book.
type ReadEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    int64     `json:"book_id"`
	Book      *Book     `json:"book,omitempty"`
	ReadDate  time.Time `json:"read_date"`
	Rating    *float64  `json:"rating,omitempty"`
	Review    *string   `json:"review,omitempty"`
	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WishEntry is a book a user wants to read, with an optional motivation.
// A user has at most one WishEntry per book; a book may sit on both
// shelves until shifted.
type WishEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    int64     `json:"book_id"`
	Book      *Book     `json:"book,omitempty"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShelfStatus is the joint state of one (user, book) pair across
// both shelves.
type ShelfStatus int

const (
	ShelfNeither ShelfStatus = iota
	ShelfWishOnly
	ShelfReadOnly
	ShelfBoth
)

// StatusOf derives the shelf status from per-shelf existence.
func StatusOf(hasRead, hasWish bool) ShelfStatus {
	switch {
	case hasRead && hasWish:
		return ShelfBoth
	case hasRead:
		return ShelfReadOnly
	case hasWish:
		return ShelfWishOnly
	default:
		return ShelfNeither
	}
}

// CanShift reports whether a shift to the read shelf is legal from
// this status. Shift consumes the wish entry, so one must exist.
func (s ShelfStatus) CanShift() bool {
	return s == ShelfWishOnly || s == ShelfBoth
}

func (s ShelfStatus) String() string {
	switch s {
	case ShelfWishOnly:
		return "wish_only"
	case ShelfReadOnly:
		return "read_only"
	case ShelfBoth:
		return "both"
	default:
		return "neither"
	}
}
