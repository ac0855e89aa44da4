package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/shelfmark/shelfmark/internal/model"
)

// Common errors for shelf entry operations.
var (
	ErrEntryNotFound = errors.New("shelf entry not found")
	ErrEntryExists   = errors.New("book already on this shelf")
	ErrNotEntryOwner = errors.New("entry belongs to another user")
)

const (
	readEntryColumns = `
		re.id, re.user_id, re.book_id, re.read_date, re.rating, re.review,
		re.created_at, re.updated_at,
		b.id, b.isbn, b.title, b.authors, b.publisher, b.cover_url, b.description, b.created_at`

	wishEntryColumns = `
		we.id, we.user_id, we.book_id, we.reason,
		we.created_at, we.updated_at,
		b.id, b.isbn, b.title, b.authors, b.publisher, b.cover_url, b.description, b.created_at`
)

// CreateReadEntry inserts a read entry with its initial tags as one
// transaction. Fills in entry.ID. A second read entry for the same
// (user, book) fails with ErrEntryExists.
func (r *Repository) CreateReadEntry(ctx context.Context, entry *model.ReadEntry, tags []TagChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO read_entries (user_id, book_id, read_date, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		entry.UserID,
		entry.BookID,
		entry.ReadDate,
		entry.Rating,
		entry.Review,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEntryExists
		}
		if isForeignKeyViolation(err) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to create read entry: %w", err)
	}

	if err := applyTagChanges(ctx, tx, entry.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// CreateWishEntry inserts a wish entry. Fills in entry.ID.
func (r *Repository) CreateWishEntry(ctx context.Context, entry *model.WishEntry) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO wish_entries (user_id, book_id, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		entry.UserID,
		entry.BookID,
		entry.Reason,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEntryExists
		}
		if isForeignKeyViolation(err) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to create wish entry: %w", err)
	}
	return nil
}

// GetReadEntry retrieves a read entry with its book and tags.
func (r *Repository) GetReadEntry(ctx context.Context, id int64) (*model.ReadEntry, error) {
	query := `
		SELECT ` + readEntryColumns + `
		FROM read_entries re
		JOIN books b ON b.id = re.book_id
		WHERE re.id = $1
	`

	entry, err := scanReadEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get read entry: %w", err)
	}

	tags, err := r.TagsForEntry(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	entry.Tags = tags

	return entry, nil
}

// GetWishEntry retrieves a wish entry with its book.
func (r *Repository) GetWishEntry(ctx context.Context, id int64) (*model.WishEntry, error) {
	query := `
		SELECT ` + wishEntryColumns + `
		FROM wish_entries we
		JOIN books b ON b.id = we.book_id
		WHERE we.id = $1
	`

	entry, err := scanWishEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get wish entry: %w", err)
	}

	return entry, nil
}

// UpdateReadEntry updates the entry's annotation fields and applies the
// resolved tag changes in one transaction. The caller must own the
// entry; mismatch fails with ErrNotEntryOwner.
func (r *Repository) UpdateReadEntry(ctx context.Context, entry *model.ReadEntry, callerID string, changes []TagChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockEntryForOwner(ctx, tx, "read_entries", entry.ID, callerID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE read_entries
		SET read_date = $2, rating = $3, review = $4, updated_at = $5
		WHERE id = $1`,
		entry.ID,
		entry.ReadDate,
		entry.Rating,
		entry.Review,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update read entry: %w", err)
	}

	if err := applyTagChanges(ctx, tx, entry.ID, changes); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// UpdateWishEntry updates the wish entry's reason text.
func (r *Repository) UpdateWishEntry(ctx context.Context, entry *model.WishEntry, callerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockEntryForOwner(ctx, tx, "wish_entries", entry.ID, callerID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE wish_entries
		SET reason = $2, updated_at = $3
		WHERE id = $1`,
		entry.ID,
		entry.Reason,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update wish entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DeleteReadEntry hard-deletes a read entry. Owned tags go with it
// through the FK cascade.
func (r *Repository) DeleteReadEntry(ctx context.Context, id int64, callerID string) error {
	return r.deleteEntry(ctx, "read_entries", id, callerID)
}

// DeleteWishEntry hard-deletes a wish entry.
func (r *Repository) DeleteWishEntry(ctx context.Context, id int64, callerID string) error {
	return r.deleteEntry(ctx, "wish_entries", id, callerID)
}

func (r *Repository) deleteEntry(ctx context.Context, table string, id int64, callerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockEntryForOwner(ctx, tx, table, id, callerID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListReadEntries returns one page of the user's read shelf in the
// requested order, plus the total entry count.
func (r *Repository) ListReadEntries(ctx context.Context, userID string, filter model.ReadFilter, limit, offset int) ([]*model.ReadEntry, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM read_entries WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count read entries: %w", err)
	}

	query := `
		SELECT ` + readEntryColumns + `
		FROM read_entries re
		JOIN books b ON b.id = re.book_id
		WHERE re.user_id = $1
		ORDER BY ` + readOrderClause(filter) + `
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list read entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.ReadEntry
	var entryIDs []int64
	for rows.Next() {
		entry, err := scanReadEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan read entry: %w", err)
		}
		entries = append(entries, entry)
		entryIDs = append(entryIDs, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating read entries: %w", err)
	}

	tags, err := r.tagsByEntry(ctx, entryIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, entry := range entries {
		entry.Tags = tags[entry.ID]
	}

	return entries, total, nil
}

// ListWishEntries returns one page of the user's wish shelf, newest
// first, plus the total entry count.
func (r *Repository) ListWishEntries(ctx context.Context, userID string, limit, offset int) ([]*model.WishEntry, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM wish_entries WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count wish entries: %w", err)
	}

	query := `
		SELECT ` + wishEntryColumns + `
		FROM wish_entries we
		JOIN books b ON b.id = we.book_id
		WHERE we.user_id = $1
		ORDER BY we.created_at DESC, we.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wish entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.WishEntry
	for rows.Next() {
		entry, err := scanWishEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan wish entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating wish entries: %w", err)
	}

	return entries, total, nil
}

// ShiftToRead migrates a wish entry into a read entry as one
// transaction: the wish row is locked and deleted, any existing read
// entry for the same (user, book) is replaced, and the supplied
// annotation and tags are written. Either all of it commits or none.
//
// Concurrent shifts of the same wish entry serialize on the row lock;
// the loser finds the row gone and gets ErrEntryNotFound.
func (r *Repository) ShiftToRead(ctx context.Context, wishID int64, callerID string, entry *model.ReadEntry, tags []TagChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID string
	var bookID int64
	err = tx.QueryRow(ctx,
		`SELECT user_id, book_id FROM wish_entries WHERE id = $1 FOR UPDATE`, wishID,
	).Scan(&ownerID, &bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to lock wish entry: %w", err)
	}
	if ownerID != callerID {
		return ErrNotEntryOwner
	}

	if _, err := tx.Exec(ctx, `DELETE FROM wish_entries WHERE id = $1`, wishID); err != nil {
		return fmt.Errorf("failed to delete wish entry: %w", err)
	}

	// Overwrite semantics: a read entry that already exists for this
	// book is replaced, tags included, by the newly supplied state.
	if _, err := tx.Exec(ctx,
		`DELETE FROM read_entries WHERE user_id = $1 AND book_id = $2`, callerID, bookID,
	); err != nil {
		return fmt.Errorf("failed to replace read entry: %w", err)
	}

	entry.UserID = callerID
	entry.BookID = bookID

	err = tx.QueryRow(ctx, `
		INSERT INTO read_entries (user_id, book_id, read_date, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		entry.UserID,
		entry.BookID,
		entry.ReadDate,
		entry.Rating,
		entry.Review,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create read entry: %w", err)
	}

	if err := applyTagChanges(ctx, tx, entry.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ShelfStatusFor reports the joint shelf state of one (user, book) pair.
func (r *Repository) ShelfStatusFor(ctx context.Context, userID string, bookID int64) (model.ShelfStatus, error) {
	var hasRead, hasWish bool
	err := r.pool.QueryRow(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM read_entries WHERE user_id = $1 AND book_id = $2),
			EXISTS(SELECT 1 FROM wish_entries WHERE user_id = $1 AND book_id = $2)`,
		userID, bookID,
	).Scan(&hasRead, &hasWish)
	if err != nil {
		return model.ShelfNeither, fmt.Errorf("failed to check shelf status: %w", err)
	}

	return model.StatusOf(hasRead, hasWish), nil
}

// lockEntryForOwner locks an entry row and verifies ownership. The
// table name is always one of the two shelf table constants, never
// caller input.
func lockEntryForOwner(ctx context.Context, tx pgx.Tx, table string, id int64, callerID string) error {
	var ownerID string
	err := tx.QueryRow(ctx,
		`SELECT user_id FROM `+table+` WHERE id = $1 FOR UPDATE`, id,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to lock entry: %w", err)
	}
	if ownerID != callerID {
		return ErrNotEntryOwner
	}
	return nil
}

// readOrderClause maps a read-shelf filter code to its ordering.
// Rating ties break newest-registered first.
func readOrderClause(filter model.ReadFilter) string {
	switch filter {
	case model.FilterOldestFirst:
		return "re.created_at ASC, re.id ASC"
	case model.FilterRatingDesc:
		return "re.rating DESC NULLS LAST, re.created_at DESC, re.id DESC"
	case model.FilterRatingAsc:
		return "re.rating ASC NULLS LAST, re.created_at DESC, re.id DESC"
	default:
		return "re.created_at DESC, re.id DESC"
	}
}

// scanReadEntry scans an entry row joined with its book.
func scanReadEntry(row pgx.Row) (*model.ReadEntry, error) {
	var entry model.ReadEntry
	var book model.Book
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.BookID,
		&entry.ReadDate,
		&entry.Rating,
		&entry.Review,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&book.ID,
		&book.ISBN,
		&book.Title,
		pq.Array(&book.Authors),
		&book.Publisher,
		&book.CoverURL,
		&book.Description,
		&book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Book = &book
	return &entry, nil
}

// scanWishEntry scans an entry row joined with its book.
func scanWishEntry(row pgx.Row) (*model.WishEntry, error) {
	var entry model.WishEntry
	var book model.Book
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.BookID,
		&entry.Reason,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&book.ID,
		&book.ISBN,
		&book.Title,
		pq.Array(&book.Authors),
		&book.Publisher,
		&book.CoverURL,
		&book.Description,
		&book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Book = &book
	return &entry, nil
}
