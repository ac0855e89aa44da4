package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shelfmark/shelfmark/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleServiceErrorMapping(t *testing.T) {
	h := &ShelfHandler{logger: discardLogger()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing read date", service.ErrMissingReadDate, http.StatusBadRequest, "MISSING_READ_DATE"},
		{"invalid rating", service.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
		{"too many tags", service.ErrTooManyTags, http.StatusBadRequest, "TAG_LIMIT_EXCEEDED"},
		{"foreign tag", service.ErrTagNotOwned, http.StatusBadRequest, "INVALID_TAG_REFERENCE"},
		{"invalid filter", service.ErrInvalidFilter, http.StatusBadRequest, "INVALID_FILTER"},
		{"invalid page", service.ErrInvalidPage, http.StatusBadRequest, "INVALID_PAGE"},
		{"entry not found", service.ErrEntryNotFound, http.StatusNotFound, "ENTRY_NOT_FOUND"},
		{"book not found", service.ErrBookNotFound, http.StatusNotFound, "BOOK_NOT_FOUND"},
		{"duplicate entry", service.ErrEntryExists, http.StatusConflict, "ENTRY_EXISTS"},
		{"foreign entry", service.ErrNotEntryOwner, http.StatusForbidden, "NOT_ENTRY_OWNER"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookshelf/read/1", nil)
			h.handleServiceError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&size=25", 3, 25},
		{"garbage ignored", "page=abc&size=xyz", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			page, size := pageParams(req)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("pageParams() = (%d, %d), want (%d, %d)", page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestDecodeAndValidateRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var v struct{}
	if decodeAndValidate(rec, req, &v) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyReportsFailingDependency(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		db, cache  Pinger
		wantStatus int
	}{
		{"all healthy", ok, ok, http.StatusOK},
		{"database down", down, ok, http.StatusServiceUnavailable},
		{"cache down", ok, down, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.cache)
			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
