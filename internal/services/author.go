package services

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bookclub/catalog/internal/store"
	"github.com/bookclub/catalog/types"
)

// AuthorRepository defines persistence operations for authors.
type AuthorRepository interface {
	List(ctx context.Context) ([]types.Author, error)
	Get(ctx context.Context, id int) (types.Author, error)
	Create(ctx context.Context, author types.Author) (types.Author, error)
}

// AuthorService encapsulates author use-cases.
type AuthorService struct {
	repo AuthorRepository
}

func NewAuthorService(repo AuthorRepository) *AuthorService {
	return &AuthorService{repo: repo}
}

func (s *AuthorService) List(ctx context.Context) ([]types.Author, error) {
	return s.repo.List(ctx)
}

func (s *AuthorService) Get(ctx context.Context, id int) (types.Author, error) {
	author, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.Author{}, ErrAuthorNotFound
	}
	return author, err
}

func (s *AuthorService) Create(ctx context.Context, author types.Author) (types.Author, error) {
	author.FirstName = strings.TrimSpace(author.FirstName)
	author.LastName = strings.TrimSpace(author.LastName)
	err := validation.ValidateStruct(&author,
		validation.Field(&author.FirstName, validation.Required, validation.RuneLength(0, 50)),
		validation.Field(&author.LastName, validation.Required, validation.RuneLength(0, 50)),
		validation.Field(&author.BirthDate, validation.By(requireDate)),
	)
	if err != nil {
		return types.Author{}, err
	}
	return s.repo.Create(ctx, author)
}

func requireDate(value any) error {
	date, _ := value.(types.Date)
	if date.IsZero() {
		return validation.ErrRequired
	}
	return nil
}
