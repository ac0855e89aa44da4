package model

import "testing"

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		hasRead  bool
		hasWish  bool
		want     ShelfStatus
		canShift bool
	}{
		{"neither", false, false, ShelfNeither, false},
		{"wish_only", false, true, ShelfWishOnly, true},
		{"read_only", true, false, ShelfReadOnly, false},
		{"both", true, true, ShelfBoth, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := StatusOf(test.hasRead, test.hasWish)
			if got != test.want {
				t.Fatalf("StatusOf(%v, %v) = %v, want %v", test.hasRead, test.hasWish, got, test.want)
			}
			if got.CanShift() != test.canShift {
				t.Fatalf("CanShift() = %v, want %v", got.CanShift(), test.canShift)
			}
		})
	}
}

func TestReadFilterIsValid(t *testing.T) {
	valid := []ReadFilter{FilterNewestFirst, FilterOldestFirst, FilterRatingDesc, FilterRatingAsc}
	for _, f := range valid {
		if !f.IsValid() {
			t.Errorf("filter %d should be valid", f)
		}
	}
	for _, f := range []ReadFilter{0, 5, -1} {
		if f.IsValid() {
			t.Errorf("filter %d should be invalid", f)
		}
	}
}

func TestTagPatchIsDelete(t *testing.T) {
	label := "fiction"
	if (TagPatch{ID: 0, Label: &label}).IsDelete() {
		t.Error("create patch reported as delete")
	}
	if (TagPatch{ID: 3, Label: &label}).IsDelete() {
		t.Error("update patch reported as delete")
	}
	if !(TagPatch{ID: 3, Label: nil}).IsDelete() {
		t.Error("delete patch not reported as delete")
	}
}
