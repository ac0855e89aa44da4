package model

// MaxTagsPerEntry caps the number of tags a read entry may carry.
const MaxTagsPerEntry = 5

// Tag is a short label owned by exactly one read entry. Tags have no
// existence outside their parent entry and are deleted with it.
// Position records insertion order and is preserved across edits.
type Tag struct {
	ID       int64  `json:"id"`
	EntryID  int64  `json:"-"`
	Label    string `json:"tag"`
	Position int    `json:"-"`
}

// TagPatch is one element of a client-submitted tag list. The client
// sends the ids it remembers; the pair (ID, Label) selects the
// operation:
//
//	ID == 0              create a new tag with Label
//	ID != 0, Label set   update the existing tag's label in place
//	ID != 0, Label nil   delete the existing tag
//
// Tags not mentioned in the list are left untouched.
type TagPatch struct {
	ID    int64   `json:"id"`
	Label *string `json:"tag"`
}

// IsDelete reports whether the patch requests a deletion.
func (p TagPatch) IsDelete() bool {
	return p.ID != 0 && p.Label == nil
}
