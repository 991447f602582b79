package services

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bookclub/catalog/internal/store"
	"github.com/bookclub/catalog/types"
)

// BookRepository defines persistence operations for books.
type BookRepository interface {
	List(ctx context.Context) ([]types.Book, error)
	Search(ctx context.Context, term string) ([]types.Book, error)
	Get(ctx context.Context, id int) (types.Book, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, book types.Book, authorIDs []int) (types.Book, error)
	Update(ctx context.Context, book types.Book) (types.Book, error)
	Delete(ctx context.Context, id int) error
}

// BookService encapsulates book use-cases.
type BookService struct {
	books    BookRepository
	comments CommentRepository
}

func NewBookService(books BookRepository, comments CommentRepository) *BookService {
	return &BookService{books: books, comments: comments}
}

// List returns every book, or only the ones matching term when it is not
// blank.
func (s *BookService) List(ctx context.Context, term string) ([]types.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.books.List(ctx)
	}
	return s.books.Search(ctx, term)
}

func (s *BookService) Get(ctx context.Context, id int) (types.Book, error) {
	book, err := s.books.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.Book{}, ErrBookNotFound
	}
	return book, err
}

// ListComments returns the book together with its comments in insertion
// order.
func (s *BookService) ListComments(ctx context.Context, id int) (types.Book, []types.Comment, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return types.Book{}, nil, err
	}
	comments, err := s.comments.ListByBook(ctx, id)
	if err != nil {
		return types.Book{}, nil, err
	}
	return book, comments, nil
}

func (s *BookService) Create(ctx context.Context, book types.Book, authorIDs []int) (types.Book, error) {
	if err := validateBook(&book); err != nil {
		return types.Book{}, err
	}
	created, err := s.books.Create(ctx, book, authorIDs)
	if errors.Is(err, store.ErrNotFound) {
		return types.Book{}, ErrAuthorNotFound
	}
	return created, err
}

func (s *BookService) Update(ctx context.Context, book types.Book) (types.Book, error) {
	if err := validateBook(&book); err != nil {
		return types.Book{}, err
	}
	updated, err := s.books.Update(ctx, book)
	if errors.Is(err, store.ErrNotFound) {
		return types.Book{}, ErrBookNotFound
	}
	return updated, err
}

// Delete removes the book along with its comments.
func (s *BookService) Delete(ctx context.Context, id int) error {
	err := s.books.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrBookNotFound
	}
	return err
}

func validateBook(book *types.Book) error {
	book.Name = strings.TrimSpace(book.Name)
	return validation.ValidateStruct(book,
		validation.Field(&book.Name, validation.Required, validation.RuneLength(0, 150)),
		validation.Field(&book.Summary, validation.RuneLength(0, 2000)),
		validation.Field(&book.ReleaseDate, validation.By(requireDate)),
	)
}
