package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bookclub/catalog/types"
)

// AuthorRepository handles persistence for authors.
type AuthorRepository struct {
	db *sql.DB
}

func NewAuthorRepository(db *sql.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

func (r *AuthorRepository) List(ctx context.Context) ([]types.Author, error) {
	const query = `
		SELECT id, first_name, last_name, birth_date
		FROM authors
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := make([]types.Author, 0)
	for rows.Next() {
		var author types.Author
		if err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &author.BirthDate); err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *AuthorRepository) Get(ctx context.Context, id int) (types.Author, error) {
	const query = `
		SELECT id, first_name, last_name, birth_date
		FROM authors
		WHERE id = $1`
	var author types.Author
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.BirthDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Author{}, ErrNotFound
		}
		return types.Author{}, err
	}
	return author, nil
}

func (r *AuthorRepository) Create(ctx context.Context, author types.Author) (types.Author, error) {
	const query = `
		INSERT INTO authors (first_name, last_name, birth_date)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		author.FirstName,
		author.LastName,
		author.BirthDate,
	).Scan(&author.ID); err != nil {
		return types.Author{}, err
	}
	return author, nil
}
