package types

import "time"

// Comment is a user's remark attached to exactly one book.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int `json:"id" db:"id"`

	// BookID references the book the comment belongs to.
	BookID int `json:"book_id" db:"book_id"`

	// UserID references the user who wrote the comment.
	UserID int `json:"user_id" db:"user_id"`

	// Username is the author's username, joined from the users table.
	Username string `json:"username" db:"username"`

	// Title is optional and may be nil.
	Title *string `json:"title" db:"title"`

	// Body is the comment text.
	Body string `json:"body" db:"body"`

	// CreatedAt is set once, when the comment is first stored.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is refreshed on every edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
