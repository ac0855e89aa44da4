package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/handler/dto"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/service"
)

// ShelfHandler handles HTTP requests for bookshelf operations.
type ShelfHandler struct {
	svc    *service.ShelfService
	logger *slog.Logger
}

// NewShelfHandler creates a new ShelfHandler.
func NewShelfHandler(svc *service.ShelfService, logger *slog.Logger) *ShelfHandler {
	return &ShelfHandler{svc: svc, logger: logger}
}

// ListRead handles GET /api/v1/bookshelf/read.
// Query params: page (default 1), size (default 10), filter (default 1;
// 1 newest first, 2 oldest first, 3 rating desc, 4 rating asc).
func (h *ShelfHandler) ListRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	page, size := pageParams(r)
	filter := model.FilterNewestFirst
	if raw := r.URL.Query().Get("filter"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", "Filter must be a number between 1 and 4")
			return
		}
		filter = model.ReadFilter(parsed)
	}

	result, err := h.svc.ListReadShelf(r.Context(), userID, page, size, filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if result.Entries == nil {
		result.Entries = []*model.ReadEntry{}
	}
	writeJSON(w, http.StatusOK, dto.ReadShelfResponse{
		Data:       result.Entries,
		Pagination: dto.Pagination{Page: result.Page, Size: result.Size, Total: result.Total},
	})
}

// ListWish handles GET /api/v1/bookshelf/wish.
// The wish shelf has a single canonical order: newest first.
func (h *ShelfHandler) ListWish(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	page, size := pageParams(r)

	result, err := h.svc.ListWishShelf(r.Context(), userID, page, size)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if result.Entries == nil {
		result.Entries = []*model.WishEntry{}
	}
	writeJSON(w, http.StatusOK, dto.WishShelfResponse{
		Data:       result.Entries,
		Pagination: dto.Pagination{Page: result.Page, Size: result.Size, Total: result.Total},
	})
}

// GetRead handles GET /api/v1/bookshelf/read/{id}.
func (h *ShelfHandler) GetRead(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.GetReadEntry(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if entry.Tags == nil {
		entry.Tags = []model.Tag{}
	}

	writeJSON(w, http.StatusOK, entry)
}

// GetWish handles GET /api/v1/bookshelf/wish/{id}.
func (h *ShelfHandler) GetWish(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.GetWishEntry(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// CreateRead handles POST /api/v1/bookshelf/read.
func (h *ShelfHandler) CreateRead(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	input := service.CreateReadInput{
		Book: bookInput(req.Book),
		Detail: service.ReadDetailInput{
			ReadDate: req.ReadDate,
			Rating:   req.Rating,
			Review:   req.Review,
			Tags:     req.Tags,
		},
	}

	entry, err := h.svc.CreateReadEntry(r.Context(), input, userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("read_entry_created",
		"entry_id", entry.ID,
		"user_id", userID,
		"isbn", req.Book.ISBN,
	)
	writeJSON(w, http.StatusCreated, entry)
}

// CreateWish handles POST /api/v1/bookshelf/wish.
func (h *ShelfHandler) CreateWish(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWishRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	entry, err := h.svc.CreateWishEntry(r.Context(), service.CreateWishInput{
		Book:   bookInput(req.Book),
		Reason: req.Reason,
	}, userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("wish_entry_created",
		"entry_id", entry.ID,
		"user_id", userID,
		"isbn", req.Book.ISBN,
	)
	writeJSON(w, http.StatusCreated, entry)
}

// UpdateRead handles PATCH /api/v1/bookshelf/read/{id}.
func (h *ShelfHandler) UpdateRead(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateReadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	detail := service.ReadDetailInput{
		ReadDate: req.ReadDate,
		Rating:   req.Rating,
		Review:   req.Review,
		Tags:     req.Tags,
	}

	if err := h.svc.UpdateReadEntry(r.Context(), id, detail, userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateWish handles PATCH /api/v1/bookshelf/wish/{id}.
func (h *ShelfHandler) UpdateWish(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateWishRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if err := h.svc.UpdateWishEntry(r.Context(), id, req.Reason, userID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteRead handles DELETE /api/v1/bookshelf/read/{id}.
func (h *ShelfHandler) DeleteRead(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteReadEntry(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteWish handles DELETE /api/v1/bookshelf/wish/{id}.
func (h *ShelfHandler) DeleteWish(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteWishEntry(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Shift handles POST /api/v1/bookshelf/shift/{id}.
// Migrates the wish entry into a read entry carrying the supplied
// annotation.
func (h *ShelfHandler) Shift(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req dto.ShiftRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	detail := service.ReadDetailInput{
		ReadDate: req.ReadDate,
		Rating:   req.Rating,
		Review:   req.Review,
		Tags:     req.Tags,
	}

	entry, err := h.svc.ShiftToRead(r.Context(), id, detail, userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("entry_shifted",
		"wish_entry_id", id,
		"read_entry_id", entry.ID,
		"user_id", userID,
	)
	writeJSON(w, http.StatusOK, entry)
}

// Status handles GET /api/v1/bookshelf/status?book_id={id}.
func (h *ShelfHandler) Status(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.URL.Query().Get("book_id"), 10, 64)
	if err != nil || bookID < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "book_id must be a positive number")
		return
	}

	status, err := h.svc.GetShelfStatus(r.Context(), auth.UserIDFromContext(r.Context()), bookID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ShelfStatusResponse{BookID: bookID, Status: status.String()})
}

// handleServiceError maps service errors to HTTP responses.
func (h *ShelfHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingReadDate):
		writeError(w, http.StatusBadRequest, "MISSING_READ_DATE", "Read date is required")
	case errors.Is(err, service.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 0 and 5 in half-point steps")
	case errors.Is(err, service.ErrTooManyTags):
		writeError(w, http.StatusBadRequest, "TAG_LIMIT_EXCEEDED", "A read entry can have at most 5 tags")
	case errors.Is(err, service.ErrTagNotOwned):
		writeError(w, http.StatusBadRequest, "INVALID_TAG_REFERENCE", "Tag does not belong to this entry")
	case errors.Is(err, service.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", "Filter must be a number between 1 and 4")
	case errors.Is(err, service.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "INVALID_PAGE", "Page and size must be positive")
	case errors.Is(err, service.ErrMissingISBN):
		writeError(w, http.StatusBadRequest, "MISSING_ISBN", "Book isbn is required")
	case errors.Is(err, service.ErrMissingTitle):
		writeError(w, http.StatusBadRequest, "MISSING_TITLE", "Book title is required")
	case errors.Is(err, service.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "ENTRY_NOT_FOUND", "Shelf entry not found")
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
	case errors.Is(err, service.ErrEntryExists):
		writeError(w, http.StatusConflict, "ENTRY_EXISTS", "Book is already on this shelf")
	case errors.Is(err, service.ErrNotEntryOwner):
		writeError(w, http.StatusForbidden, "NOT_ENTRY_OWNER", "Entry belongs to another user")
	default:
		h.logger.Error("shelf operation failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// entryID parses the {id} route parameter.
func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Entry id must be a positive number")
		return 0, false
	}
	return id, true
}

// pageParams parses page/size query parameters with defaults.
func pageParams(r *http.Request) (page, size int) {
	page, size = 1, 10
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}
	return page, size
}

// decodeAndValidate decodes the request body and runs tag validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	if err := dto.Validate(v); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return false
	}
	return true
}

// bookInput maps the wire payload to the service input.
func bookInput(p dto.BookPayload) service.BookInput {
	return service.BookInput{
		ISBN:        p.ISBN,
		Title:       p.Title,
		Authors:     p.Authors,
		Publisher:   p.Publisher,
		CoverURL:    p.CoverURL,
		Description: p.Description,
	}
}
