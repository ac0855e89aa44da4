package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shelfmark/shelfmark/internal/catalog"
	"github.com/shelfmark/shelfmark/internal/handler/dto"
	"github.com/shelfmark/shelfmark/internal/model"
)

// BookHandler proxies book search requests to the external catalog.
type BookHandler struct {
	catalog *catalog.Client
	logger  *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(c *catalog.Client, logger *slog.Logger) *BookHandler {
	return &BookHandler{catalog: c, logger: logger}
}

// Search handles GET /api/v1/books/search?query=...&page=1&size=10.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page, size := 1, 10
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

	result, err := h.catalog.Search(r.Context(), query, page, size)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "MISSING_QUERY", "Search query is required")
		case errors.Is(err, catalog.ErrNoMoreResults):
			writeError(w, http.StatusNotFound, "NO_MORE_RESULTS", "No more search results")
		case errors.Is(err, catalog.ErrBookInfoFetch):
			h.logger.Error("catalog search failed", "error", err, "query", query)
			writeError(w, http.StatusNotFound, "BOOK_FETCH_FAILED", "Book info fetch failed")
		default:
			h.logger.Error("catalog search failed", "error", err, "query", query)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	if result.Books == nil {
		result.Books = []model.Book{}
	}
	writeJSON(w, http.StatusOK, dto.SearchResponse{
		Data:       result.Books,
		Pagination: dto.Pagination{Page: result.Page, Size: result.Size, Total: result.Total},
	})
}
