package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/shelfmark/shelfmark/internal/model"
)

// ErrBookNotFound indicates the referenced book row is absent.
var ErrBookNotFound = errors.New("book not found")

// UpsertBookByISBN stores a catalog record if it is not already known
// and fills in book.ID either way. Existing rows are left as they are;
// books are immutable reference data once stored.
func (r *Repository) UpsertBookByISBN(ctx context.Context, book *model.Book) error {
	// The no-op DO UPDATE makes RETURNING yield the row on conflict too.
	query := `
		INSERT INTO books (isbn, title, authors, publisher, cover_url, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (isbn) DO UPDATE SET isbn = EXCLUDED.isbn
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		book.ISBN,
		book.Title,
		pq.Array(book.Authors),
		book.Publisher,
		book.CoverURL,
		book.Description,
	).Scan(&book.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert book: %w", err)
	}

	return nil
}

// GetBook retrieves a book by internal id.
func (r *Repository) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	query := `
		SELECT id, isbn, title, authors, publisher, cover_url, description, created_at
		FROM books
		WHERE id = $1
	`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// scanBook scans a single row into a Book model.
func scanBook(row pgx.Row) (*model.Book, error) {
	var book model.Book
	err := row.Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		pq.Array(&book.Authors),
		&book.Publisher,
		&book.CoverURL,
		&book.Description,
		&book.CreatedAt,
	)
	return &book, err
}
