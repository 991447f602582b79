package types

import (
	"strings"
	"time"
)

// Book is a catalog entry with its credited authors.
type Book struct {
	// ID is the unique identifier of the book.
	ID int `json:"id" db:"id"`

	// Name is the title of the book.
	Name string `json:"name" db:"name"`

	// ReleaseDate is the publication date.
	ReleaseDate Date `json:"release_date" db:"release_date"`

	// Summary is a free-text description of the book.
	Summary string `json:"summary" db:"summary"`

	// CreatedAt is set once, when the book is first stored.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is refreshed on every mutation and never precedes CreatedAt.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Authors are the credited authors in the order they were attached.
	Authors []Author `json:"authors" db:"-"`
}

// AuthorNames returns the display form of every author, in order.
func (b Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, author := range b.Authors {
		names = append(names, author.String())
	}
	return names
}

// AuthorLine joins the author display names with ", ".
func (b Book) AuthorLine() string {
	return strings.Join(b.AuthorNames(), ", ")
}
