package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

func strptr(s string) *string { return &s }

func currentTags(labels ...string) []model.Tag {
	tags := make([]model.Tag, len(labels))
	for i, label := range labels {
		tags[i] = model.Tag{ID: int64(i + 1), EntryID: 10, Label: label, Position: i + 1}
	}
	return tags
}

func TestReconcileTagsCreate(t *testing.T) {
	changes, err := reconcileTags(nil, []model.TagPatch{
		{ID: 0, Label: strptr("fiction")},
		{ID: 0, Label: strptr("sci-fi")},
	})
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, repository.TagCreate, changes[0].Op)
	assert.Equal(t, "fiction", changes[0].Label)
	assert.Equal(t, 1, changes[0].Position)
	assert.Equal(t, "sci-fi", changes[1].Label)
	assert.Equal(t, 2, changes[1].Position)
}

func TestReconcileTagsAppendsAfterExisting(t *testing.T) {
	changes, err := reconcileTags(currentTags("a", "b"), []model.TagPatch{
		{ID: 0, Label: strptr("c")},
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 3, changes[0].Position)
}

func TestReconcileTagsUpdatePreservesPosition(t *testing.T) {
	changes, err := reconcileTags(currentTags("a", "b"), []model.TagPatch{
		{ID: 1, Label: strptr("renamed")},
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, repository.TagUpdate, changes[0].Op)
	assert.Equal(t, int64(1), changes[0].TagID)
	assert.Equal(t, "renamed", changes[0].Label)
}

func TestReconcileTagsDelete(t *testing.T) {
	changes, err := reconcileTags(currentTags("a", "b"), []model.TagPatch{
		{ID: 2, Label: nil},
	})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, repository.TagDelete, changes[0].Op)
	assert.Equal(t, int64(2), changes[0].TagID)
}

func TestReconcileTagsUntouchedWhenOmitted(t *testing.T) {
	// Tags not mentioned in the incoming list stay as they are; an
	// empty patch list is a no-op, not a full replace.
	changes, err := reconcileTags(currentTags("a", "b", "c"), nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestReconcileTagsForeignIDRejected(t *testing.T) {
	tests := []struct {
		name    string
		patches []model.TagPatch
	}{
		{"update_foreign", []model.TagPatch{{ID: 99, Label: strptr("x")}}},
		{"delete_foreign", []model.TagPatch{{ID: 99, Label: nil}}},
		{"double_delete", []model.TagPatch{{ID: 1, Label: nil}, {ID: 1, Label: nil}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := reconcileTags(currentTags("a", "b"), test.patches)
			assert.ErrorIs(t, err, ErrTagNotOwned)
		})
	}
}

func TestReconcileTagsOverLimitRejected(t *testing.T) {
	patches := []model.TagPatch{
		{ID: 0, Label: strptr("d")},
		{ID: 0, Label: strptr("e")},
		{ID: 0, Label: strptr("f")},
	}
	_, err := reconcileTags(currentTags("a", "b", "c"), patches)
	assert.ErrorIs(t, err, ErrTooManyTags)
}

func TestReconcileTagsDeleteMakesRoom(t *testing.T) {
	// Five existing tags, one deleted and one created: still five.
	patches := []model.TagPatch{
		{ID: 1, Label: nil},
		{ID: 0, Label: strptr("f")},
	}
	changes, err := reconcileTags(currentTags("a", "b", "c", "d", "e"), patches)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestReconcileNewTagsRejectsNonzeroID(t *testing.T) {
	_, err := reconcileNewTags([]model.TagPatch{{ID: 7, Label: strptr("x")}})
	assert.ErrorIs(t, err, ErrTagNotOwned)
}

func TestReconcileNewTagsNilListYieldsNoTags(t *testing.T) {
	changes, err := reconcileNewTags(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestReconcileTagsSkipsEmptyElement(t *testing.T) {
	// id 0 with no label selects nothing to do.
	changes, err := reconcileTags(nil, []model.TagPatch{{ID: 0, Label: nil}})
	require.NoError(t, err)
	assert.Empty(t, changes)
}
