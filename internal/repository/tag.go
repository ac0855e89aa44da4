package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shelfmark/shelfmark/internal/model"
)

// Tag operation errors.
var (
	// ErrTagNotOwned indicates a tag id that does not belong to the
	// parent entry. Every tag statement is scoped by entry id, so a
	// foreign id simply matches no row.
	ErrTagNotOwned = errors.New("tag does not belong to entry")
)

// TagChangeOp selects what a TagChange does.
type TagChangeOp int

const (
	TagCreate TagChangeOp = iota
	TagUpdate
	TagDelete
)

// TagChange is one resolved tag operation, produced by the service
// reconciler from a client-submitted tag list and applied inside the
// same transaction as the entry mutation.
type TagChange struct {
	Op       TagChangeOp
	TagID    int64  // update, delete
	Label    string // create, update
	Position int    // create
}

// TagsForEntry returns the entry's tags in insertion order.
func (r *Repository) TagsForEntry(ctx context.Context, entryID int64) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, entry_id, label, position FROM tags WHERE entry_id = $1 ORDER BY position`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// applyTagChanges executes resolved tag operations within a transaction.
// All statements are scoped to the parent entry id; a zero row count on
// update or delete means the id belongs to another entry.
func applyTagChanges(ctx context.Context, tx pgx.Tx, entryID int64, changes []TagChange) error {
	for _, change := range changes {
		switch change.Op {
		case TagCreate:
			_, err := tx.Exec(ctx,
				`INSERT INTO tags (entry_id, label, position) VALUES ($1, $2, $3)`,
				entryID, change.Label, change.Position,
			)
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}

		case TagUpdate:
			result, err := tx.Exec(ctx,
				`UPDATE tags SET label = $3 WHERE id = $1 AND entry_id = $2`,
				change.TagID, entryID, change.Label,
			)
			if err != nil {
				return fmt.Errorf("failed to update tag: %w", err)
			}
			if result.RowsAffected() == 0 {
				return ErrTagNotOwned
			}

		case TagDelete:
			result, err := tx.Exec(ctx,
				`DELETE FROM tags WHERE id = $1 AND entry_id = $2`,
				change.TagID, entryID,
			)
			if err != nil {
				return fmt.Errorf("failed to delete tag: %w", err)
			}
			if result.RowsAffected() == 0 {
				return ErrTagNotOwned
			}
		}
	}

	return nil
}

// tagsByEntry loads tags for a set of entries in one query, keyed by
// parent entry id. Used when assembling listing pages.
func (r *Repository) tagsByEntry(ctx context.Context, entryIDs []int64) (map[int64][]model.Tag, error) {
	if len(entryIDs) == 0 {
		return map[int64][]model.Tag{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, entry_id, label, position FROM tags WHERE entry_id = ANY($1) ORDER BY entry_id, position`,
		entryIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags, err := collectTags(rows)
	if err != nil {
		return nil, err
	}

	byEntry := make(map[int64][]model.Tag, len(entryIDs))
	for _, tag := range tags {
		byEntry[tag.EntryID] = append(byEntry[tag.EntryID], tag)
	}
	return byEntry, nil
}

func collectTags(rows pgx.Rows) ([]model.Tag, error) {
	var tags []model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.EntryID, &tag.Label, &tag.Position); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}
