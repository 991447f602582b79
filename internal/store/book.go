package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookclub/catalog/types"
	"github.com/lib/pq"
)

// BookRepository handles persistence for books and their author links.
type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) List(ctx context.Context) ([]types.Book, error) {
	const query = `
		SELECT id, name, release_date, summary, created_at, updated_at
		FROM books
		ORDER BY id`
	return r.queryBooks(ctx, query)
}

// Search matches the term against the book name and the names of its
// authors, case-insensitively.
func (r *BookRepository) Search(ctx context.Context, term string) ([]types.Book, error) {
	const query = `
		SELECT b.id, b.name, b.release_date, b.summary, b.created_at, b.updated_at
		FROM books b
		WHERE b.name ILIKE '%' || $1 || '%'
		   OR EXISTS (
			SELECT 1
			FROM book_authors ba
			JOIN authors a ON a.id = ba.author_id
			WHERE ba.book_id = b.id
			  AND (a.first_name ILIKE '%' || $1 || '%' OR a.last_name ILIKE '%' || $1 || '%')
		   )
		ORDER BY b.id`
	return r.queryBooks(ctx, query, term)
}

func (r *BookRepository) Get(ctx context.Context, id int) (types.Book, error) {
	const query = `
		SELECT id, name, release_date, summary, created_at, updated_at
		FROM books
		WHERE id = $1`
	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Book{}, ErrNotFound
		}
		return types.Book{}, err
	}

	books := []types.Book{book}
	if err := r.attachAuthors(ctx, books); err != nil {
		return types.Book{}, err
	}
	return books[0], nil
}

func (r *BookRepository) Exists(ctx context.Context, id int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create stores the book and links the given authors in order. An unknown
// author id yields ErrNotFound and nothing is stored.
func (r *BookRepository) Create(ctx context.Context, book types.Book, authorIDs []int) (types.Book, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	book.CreatedAt = now
	book.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Book{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertBook = `
		INSERT INTO books (name, release_date, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertBook,
		book.Name,
		book.ReleaseDate,
		book.Summary,
		book.CreatedAt,
		book.UpdatedAt,
	).Scan(&book.ID); err != nil {
		return types.Book{}, err
	}

	const linkAuthor = `
		INSERT INTO book_authors (book_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT (book_id, author_id) DO NOTHING`
	for _, authorID := range authorIDs {
		if _, err := tx.ExecContext(ctx, linkAuthor, book.ID, authorID); err != nil {
			if isPQError(err, pqForeignKeyViolation) {
				return types.Book{}, fmt.Errorf("author %d: %w", authorID, ErrNotFound)
			}
			return types.Book{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Book{}, err
	}

	books := []types.Book{book}
	if err := r.attachAuthors(ctx, books); err != nil {
		return types.Book{}, err
	}
	return books[0], nil
}

// Update overwrites the mutable fields and refreshes updated_at.
func (r *BookRepository) Update(ctx context.Context, book types.Book) (types.Book, error) {
	book.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	const query = `
		UPDATE books
		SET name = $1,
			release_date = $2,
			summary = $3,
			updated_at = GREATEST($4, created_at)
		WHERE id = $5
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		book.Name,
		book.ReleaseDate,
		book.Summary,
		book.UpdatedAt,
		book.ID,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Book{}, ErrNotFound
		}
		return types.Book{}, err
	}

	books := []types.Book{book}
	if err := r.attachAuthors(ctx, books); err != nil {
		return types.Book{}, err
	}
	return books[0], nil
}

// Delete removes the book; its comments and author links cascade.
func (r *BookRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM books WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookRepository) queryBooks(ctx context.Context, query string, args ...any) ([]types.Book, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]types.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAuthors(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// attachAuthors loads the authors of every book in one query, keeping the
// order in which they were linked.
func (r *BookRepository) attachAuthors(ctx context.Context, books []types.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(books))
	index := make(map[int]int, len(books))
	for i := range books {
		books[i].Authors = make([]types.Author, 0)
		ids = append(ids, int64(books[i].ID))
		index[books[i].ID] = i
	}

	const query = `
		SELECT ba.book_id, a.id, a.first_name, a.last_name, a.birth_date
		FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = ANY($1)
		ORDER BY ba.book_id, ba.id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int
		var author types.Author
		if err := rows.Scan(&bookID, &author.ID, &author.FirstName, &author.LastName, &author.BirthDate); err != nil {
			return err
		}
		if i, ok := index[bookID]; ok {
			books[i].Authors = append(books[i].Authors, author)
		}
	}
	return rows.Err()
}

func scanBook(row scanner) (types.Book, error) {
	var book types.Book
	err := row.Scan(
		&book.ID,
		&book.Name,
		&book.ReleaseDate,
		&book.Summary,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	return book, err
}
