// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark/internal/metrics"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// Service errors.
var (
	ErrMissingReadDate = errors.New("read date is required")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5 in half-point steps")
	ErrTooManyTags     = errors.New("a read entry can have at most 5 tags")
	ErrTagNotOwned     = errors.New("tag does not belong to this entry")
	ErrInvalidFilter   = errors.New("unknown bookshelf filter")
	ErrInvalidPage     = errors.New("page and size must be positive")
	ErrMissingISBN     = errors.New("book isbn is required")
	ErrMissingTitle    = errors.New("book title is required")
	ErrEntryNotFound   = errors.New("shelf entry not found")
	ErrEntryExists     = errors.New("book already on this shelf")
	ErrNotEntryOwner   = errors.New("entry belongs to another user")
	ErrBookNotFound    = errors.New("book not found")
)

const maxPageSize = 100

// ShelfService orchestrates shelf entry mutation and listing. Every
// method takes the resolved internal user id of the caller; nothing in
// here reads ambient identity.
type ShelfService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewShelfService creates a new ShelfService.
func NewShelfService(repo *repository.Repository, recorder metrics.Recorder) *ShelfService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ShelfService{repo: repo, metrics: recorder}
}

// BookInput carries catalog data for the book being shelved, as
// returned by the search endpoint.
type BookInput struct {
	ISBN        string
	Title       string
	Authors     []string
	Publisher   string
	CoverURL    string
	Description string
}

// ReadDetailInput carries the annotation fields of a read entry.
type ReadDetailInput struct {
	ReadDate *time.Time
	Rating   *float64
	Review   *string
	Tags     []model.TagPatch
}

// CreateReadInput defines input for registering a book on the read shelf.
type CreateReadInput struct {
	Book   BookInput
	Detail ReadDetailInput
}

// CreateWishInput defines input for registering a book on the wish shelf.
type CreateWishInput struct {
	Book   BookInput
	Reason *string
}

// ReadShelfPage is one page of a read shelf listing.
type ReadShelfPage struct {
	Entries []*model.ReadEntry
	Total   int
	Page    int
	Size    int
}

// WishShelfPage is one page of a wish shelf listing.
type WishShelfPage struct {
	Entries []*model.WishEntry
	Total   int
	Page    int
	Size    int
}

// CreateReadEntry registers a book on the caller's read shelf together
// with its annotation. The read date is required; nothing is written
// when validation fails.
func (s *ShelfService) CreateReadEntry(ctx context.Context, input CreateReadInput, userID string) (*model.ReadEntry, error) {
	if err := validateReadDetail(input.Detail); err != nil {
		return nil, err
	}
	changes, err := reconcileNewTags(input.Detail.Tags)
	if err != nil {
		return nil, err
	}

	book, err := s.ensureBook(ctx, input.Book)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &model.ReadEntry{
		UserID:    userID,
		BookID:    book.ID,
		Book:      book,
		ReadDate:  *input.Detail.ReadDate,
		Rating:    input.Detail.Rating,
		Review:    input.Detail.Review,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateReadEntry(ctx, entry, changes); err != nil {
		return nil, s.translateRepoError(err)
	}
	s.metrics.IncEntryCreated(string(model.ShelfRead))

	if len(changes) > 0 {
		tags, err := s.repo.TagsForEntry(ctx, entry.ID)
		if err != nil {
			return nil, s.translateRepoError(err)
		}
		entry.Tags = tags
	}
	if entry.Tags == nil {
		entry.Tags = []model.Tag{}
	}
	return entry, nil
}

// CreateWishEntry registers a book on the caller's wish shelf.
func (s *ShelfService) CreateWishEntry(ctx context.Context, input CreateWishInput, userID string) (*model.WishEntry, error) {
	book, err := s.ensureBook(ctx, input.Book)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &model.WishEntry{
		UserID:    userID,
		BookID:    book.ID,
		Book:      book,
		Reason:    input.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateWishEntry(ctx, entry); err != nil {
		return nil, s.translateRepoError(err)
	}

	s.metrics.IncEntryCreated(string(model.ShelfWish))
	return entry, nil
}

// GetReadEntry fetches a read entry's detail. The caller must own it.
func (s *ShelfService) GetReadEntry(ctx context.Context, id int64, userID string) (*model.ReadEntry, error) {
	entry, err := s.repo.GetReadEntry(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	if entry.UserID != userID {
		return nil, ErrNotEntryOwner
	}
	return entry, nil
}

// GetWishEntry fetches a wish entry's detail. The caller must own it.
func (s *ShelfService) GetWishEntry(ctx context.Context, id int64, userID string) (*model.WishEntry, error) {
	entry, err := s.repo.GetWishEntry(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	if entry.UserID != userID {
		return nil, ErrNotEntryOwner
	}
	return entry, nil
}

// UpdateReadEntry updates a read entry's annotation and reconciles its
// tag set in one transactional unit.
func (s *ShelfService) UpdateReadEntry(ctx context.Context, id int64, detail ReadDetailInput, userID string) error {
	if err := validateReadDetail(detail); err != nil {
		return err
	}

	current, err := s.repo.GetReadEntry(ctx, id)
	if err != nil {
		return s.translateRepoError(err)
	}
	if current.UserID != userID {
		return ErrNotEntryOwner
	}

	changes, err := reconcileTags(current.Tags, detail.Tags)
	if err != nil {
		return err
	}

	current.ReadDate = *detail.ReadDate
	current.Rating = detail.Rating
	current.Review = detail.Review
	current.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateReadEntry(ctx, current, userID, changes); err != nil {
		return s.translateRepoError(err)
	}

	s.metrics.IncEntryUpdated(string(model.ShelfRead))
	return nil
}

// UpdateWishEntry updates a wish entry's reason text.
func (s *ShelfService) UpdateWishEntry(ctx context.Context, id int64, reason *string, userID string) error {
	current, err := s.repo.GetWishEntry(ctx, id)
	if err != nil {
		return s.translateRepoError(err)
	}
	if current.UserID != userID {
		return ErrNotEntryOwner
	}

	current.Reason = reason
	current.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateWishEntry(ctx, current, userID); err != nil {
		return s.translateRepoError(err)
	}

	s.metrics.IncEntryUpdated(string(model.ShelfWish))
	return nil
}

// DeleteReadEntry removes a read entry and its tags.
func (s *ShelfService) DeleteReadEntry(ctx context.Context, id int64, userID string) error {
	if err := s.repo.DeleteReadEntry(ctx, id, userID); err != nil {
		return s.translateRepoError(err)
	}
	s.metrics.IncEntryDeleted(string(model.ShelfRead))
	return nil
}

// DeleteWishEntry removes a wish entry.
func (s *ShelfService) DeleteWishEntry(ctx context.Context, id int64, userID string) error {
	if err := s.repo.DeleteWishEntry(ctx, id, userID); err != nil {
		return s.translateRepoError(err)
	}
	s.metrics.IncEntryDeleted(string(model.ShelfWish))
	return nil
}

// ListReadShelf returns one page of the caller's read shelf. Pages are
// 1-indexed; a page past the end of the data is an empty page, not an
// error. Filter zero means newest first.
func (s *ShelfService) ListReadShelf(ctx context.Context, userID string, page, size int, filter model.ReadFilter) (*ReadShelfPage, error) {
	if err := validatePage(page, size); err != nil {
		return nil, err
	}
	if filter == 0 {
		filter = model.FilterNewestFirst
	}
	if !filter.IsValid() {
		return nil, ErrInvalidFilter
	}

	entries, total, err := s.repo.ListReadEntries(ctx, userID, filter, size, (page-1)*size)
	if err != nil {
		return nil, s.translateRepoError(err)
	}

	return &ReadShelfPage{Entries: entries, Total: total, Page: page, Size: size}, nil
}

// ListWishShelf returns one page of the caller's wish shelf, newest
// first. The wish shelf has no filter parameter.
func (s *ShelfService) ListWishShelf(ctx context.Context, userID string, page, size int) (*WishShelfPage, error) {
	if err := validatePage(page, size); err != nil {
		return nil, err
	}

	entries, total, err := s.repo.ListWishEntries(ctx, userID, size, (page-1)*size)
	if err != nil {
		return nil, s.translateRepoError(err)
	}

	return &WishShelfPage{Entries: entries, Total: total, Page: page, Size: size}, nil
}

// ShiftToRead migrates a wish entry into a read entry carrying the
// supplied annotation. The wish entry must exist and belong to the
// caller; a read entry already present for the same book is
// overwritten. The migration is atomic.
func (s *ShelfService) ShiftToRead(ctx context.Context, wishID int64, detail ReadDetailInput, userID string) (*model.ReadEntry, error) {
	if err := validateReadDetail(detail); err != nil {
		return nil, err
	}
	changes, err := reconcileNewTags(detail.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &model.ReadEntry{
		ReadDate:  *detail.ReadDate,
		Rating:    detail.Rating,
		Review:    detail.Review,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.ShiftToRead(ctx, wishID, userID, entry, changes); err != nil {
		return nil, s.translateRepoError(err)
	}
	s.metrics.IncEntryShifted()

	// Reload so the response carries the joined book and the tags
	// written inside the transaction.
	shifted, err := s.repo.GetReadEntry(ctx, entry.ID)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return shifted, nil
}

// GetShelfStatus reports the joint state of one (user, book) pair
// across both shelves.
func (s *ShelfService) GetShelfStatus(ctx context.Context, userID string, bookID int64) (model.ShelfStatus, error) {
	status, err := s.repo.ShelfStatusFor(ctx, userID, bookID)
	if err != nil {
		return model.ShelfNeither, s.translateRepoError(err)
	}
	return status, nil
}

// ensureBook validates and upserts the referenced catalog record.
func (s *ShelfService) ensureBook(ctx context.Context, input BookInput) (*model.Book, error) {
	if strings.TrimSpace(input.ISBN) == "" {
		return nil, ErrMissingISBN
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrMissingTitle
	}

	book := &model.Book{
		ISBN:        input.ISBN,
		Title:       input.Title,
		Authors:     input.Authors,
		Publisher:   input.Publisher,
		CoverURL:    input.CoverURL,
		Description: input.Description,
	}
	if book.Authors == nil {
		book.Authors = []string{}
	}

	if err := s.repo.UpsertBookByISBN(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to store book: %w", err)
	}
	return book, nil
}

// validateReadDetail enforces the read entry invariants before any row
// is written.
func validateReadDetail(detail ReadDetailInput) error {
	if detail.ReadDate == nil {
		return ErrMissingReadDate
	}
	if detail.Rating != nil {
		r := *detail.Rating
		if r < 0 || r > 5 || !isHalfStep(r) {
			return ErrInvalidRating
		}
	}
	return nil
}

func isHalfStep(r float64) bool {
	scaled := r * 2
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

func validatePage(page, size int) error {
	if page < 1 || size < 1 || size > maxPageSize {
		return ErrInvalidPage
	}
	return nil
}

// translateRepoError maps persistence errors to service errors so
// handlers only ever see the service taxonomy.
func (s *ShelfService) translateRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrEntryNotFound):
		return ErrEntryNotFound
	case errors.Is(err, repository.ErrEntryExists):
		return ErrEntryExists
	case errors.Is(err, repository.ErrNotEntryOwner):
		return ErrNotEntryOwner
	case errors.Is(err, repository.ErrBookNotFound):
		return ErrBookNotFound
	case errors.Is(err, repository.ErrTagNotOwned):
		return ErrTagNotOwned
	default:
		return err
	}
}
