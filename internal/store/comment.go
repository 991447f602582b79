package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookclub/catalog/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByBook returns the comments of a book in insertion order.
func (r *CommentRepository) ListByBook(ctx context.Context, bookID int) ([]types.Comment, error) {
	const query = `
		SELECT c.id, c.book_id, c.user_id, u.username, c.title, c.body, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.book_id = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int) (types.Comment, error) {
	const query = `
		SELECT c.id, c.book_id, c.user_id, u.username, c.title, c.body, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`
	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

// Create stores a comment. A missing book or user yields ErrNotFound.
func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	comment.CreatedAt = now
	comment.UpdatedAt = now

	const query = `
		INSERT INTO comments (user_id, book_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.UserID,
		comment.BookID,
		comment.Title,
		comment.Body,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID); err != nil {
		if isPQError(err, pqForeignKeyViolation) {
			return types.Comment{}, fmt.Errorf("comment reference: %w", ErrNotFound)
		}
		return types.Comment{}, err
	}
	return comment, nil
}

// Update overwrites title and body and refreshes updated_at.
func (r *CommentRepository) Update(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	const query = `
		UPDATE comments
		SET title = $1,
			body = $2,
			updated_at = GREATEST($3, created_at)
		WHERE id = $4
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		comment.Title,
		comment.Body,
		comment.UpdatedAt,
		comment.ID,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

func scanComment(row scanner) (types.Comment, error) {
	var comment types.Comment
	var title sql.NullString
	err := row.Scan(
		&comment.ID,
		&comment.BookID,
		&comment.UserID,
		&comment.Username,
		&title,
		&comment.Body,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return types.Comment{}, err
	}
	if title.Valid {
		comment.Title = &title.String
	}
	return comment, nil
}
