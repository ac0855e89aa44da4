package service

import (
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// reconcileTags resolves a client-submitted tag list against the
// entry's current tags into concrete operations. The list is a sparse
// patch: each element selects its own operation from the (id, label)
// pair, and tags not mentioned are left untouched.
//
//	id == 0              create with label, appended after current tags
//	id != 0, label set   update that tag's label, position preserved
//	id != 0, label nil   delete that tag
//
// An id that does not belong to the entry fails with ErrTagNotOwned.
// A resulting tag count above the cap fails with ErrTooManyTags, and
// neither error applies any change.
func reconcileTags(current []model.Tag, patches []model.TagPatch) ([]repository.TagChange, error) {
	owned := make(map[int64]bool, len(current))
	maxPos := 0
	for _, tag := range current {
		owned[tag.ID] = true
		if tag.Position > maxPos {
			maxPos = tag.Position
		}
	}

	count := len(current)
	var changes []repository.TagChange

	for _, patch := range patches {
		switch {
		case patch.ID == 0:
			if patch.Label == nil {
				// No id and no label selects nothing.
				continue
			}
			maxPos++
			count++
			changes = append(changes, repository.TagChange{
				Op:       repository.TagCreate,
				Label:    *patch.Label,
				Position: maxPos,
			})

		case patch.Label == nil:
			if !owned[patch.ID] {
				return nil, ErrTagNotOwned
			}
			delete(owned, patch.ID) // a second delete of the same id is foreign
			count--
			changes = append(changes, repository.TagChange{
				Op:    repository.TagDelete,
				TagID: patch.ID,
			})

		default:
			if !owned[patch.ID] {
				return nil, ErrTagNotOwned
			}
			changes = append(changes, repository.TagChange{
				Op:    repository.TagUpdate,
				TagID: patch.ID,
				Label: *patch.Label,
			})
		}
	}

	if count > model.MaxTagsPerEntry {
		return nil, ErrTooManyTags
	}

	return changes, nil
}

// reconcileNewTags resolves a tag list for a freshly created entry.
// A new entry owns no tags yet, so every element must be a creation;
// nonzero ids come out as ErrTagNotOwned. A nil list yields zero tags.
func reconcileNewTags(patches []model.TagPatch) ([]repository.TagChange, error) {
	return reconcileTags(nil, patches)
}
