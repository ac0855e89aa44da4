package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfmark/shelfmark/internal/model"
)

func floatptr(f float64) *float64 { return &f }

func TestValidateReadDetail(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		detail  ReadDetailInput
		wantErr error
	}{
		{"missing_date", ReadDetailInput{}, ErrMissingReadDate},
		{"valid_date_only", ReadDetailInput{ReadDate: &date}, nil},
		{"rating_negative", ReadDetailInput{ReadDate: &date, Rating: floatptr(-0.5)}, ErrInvalidRating},
		{"rating_too_high", ReadDetailInput{ReadDate: &date, Rating: floatptr(5.5)}, ErrInvalidRating},
		{"rating_not_half_step", ReadDetailInput{ReadDate: &date, Rating: floatptr(3.3)}, ErrInvalidRating},
		{"rating_half_step", ReadDetailInput{ReadDate: &date, Rating: floatptr(4.5)}, nil},
		{"rating_zero", ReadDetailInput{ReadDate: &date, Rating: floatptr(0)}, nil},
		{"rating_five", ReadDetailInput{ReadDate: &date, Rating: floatptr(5)}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validateReadDetail(test.detail)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCreateReadEntryValidationErrors(t *testing.T) {
	// Validation runs before any store access, so a bare service works.
	svc := &ShelfService{}
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	label := "fiction"

	tests := []struct {
		name    string
		input   CreateReadInput
		wantErr error
	}{
		{
			name:    "missing_date",
			input:   CreateReadInput{Book: BookInput{ISBN: "9780000000001", Title: "T"}},
			wantErr: ErrMissingReadDate,
		},
		{
			name: "too_many_tags",
			input: CreateReadInput{
				Book: BookInput{ISBN: "9780000000001", Title: "T"},
				Detail: ReadDetailInput{
					ReadDate: &date,
					Tags: []model.TagPatch{
						{Label: &label}, {Label: &label}, {Label: &label},
						{Label: &label}, {Label: &label}, {Label: &label},
					},
				},
			},
			wantErr: ErrTooManyTags,
		},
		{
			name: "nonzero_tag_id_on_create",
			input: CreateReadInput{
				Book:   BookInput{ISBN: "9780000000001", Title: "T"},
				Detail: ReadDetailInput{ReadDate: &date, Tags: []model.TagPatch{{ID: 3, Label: &label}}},
			},
			wantErr: ErrTagNotOwned,
		},
		{
			name: "invalid_rating",
			input: CreateReadInput{
				Book:   BookInput{ISBN: "9780000000001", Title: "T"},
				Detail: ReadDetailInput{ReadDate: &date, Rating: floatptr(4.2)},
			},
			wantErr: ErrInvalidRating,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateReadEntry(context.Background(), test.input, "user-1")
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestListShelfPageValidation(t *testing.T) {
	svc := &ShelfService{}

	tests := []struct {
		name    string
		page    int
		size    int
		filter  model.ReadFilter
		wantErr error
	}{
		{"zero_page", 0, 10, model.FilterNewestFirst, ErrInvalidPage},
		{"negative_page", -1, 10, model.FilterNewestFirst, ErrInvalidPage},
		{"zero_size", 1, 0, model.FilterNewestFirst, ErrInvalidPage},
		{"oversized_page", 1, 500, model.FilterNewestFirst, ErrInvalidPage},
		{"unknown_filter", 1, 10, model.ReadFilter(9), ErrInvalidFilter},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.ListReadShelf(context.Background(), "user-1", test.page, test.size, test.filter)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestShiftValidationBeforeStore(t *testing.T) {
	svc := &ShelfService{}

	_, err := svc.ShiftToRead(context.Background(), 1, ReadDetailInput{}, "user-1")
	if !errors.Is(err, ErrMissingReadDate) {
		t.Fatalf("expected ErrMissingReadDate, got %v", err)
	}
}

func TestProvisionRequiresSocialIdentity(t *testing.T) {
	svc := &MemberService{}

	tests := []struct {
		name  string
		input ProvisionInput
	}{
		{"missing_provider", ProvisionInput{SocialID: "123"}},
		{"missing_social_id", ProvisionInput{Provider: "kakao"}},
		{"blank_social_id", ProvisionInput{Provider: "kakao", SocialID: "   "}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Provision(context.Background(), test.input)
			if !errors.Is(err, ErrMissingSocialID) {
				t.Fatalf("expected ErrMissingSocialID, got %v", err)
			}
		})
	}
}
