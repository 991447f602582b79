package services

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bookclub/catalog/internal/store"
	"github.com/bookclub/catalog/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByBook(ctx context.Context, bookID int) ([]types.Comment, error)
	Get(ctx context.Context, id int) (types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Update(ctx context.Context, comment types.Comment) (types.Comment, error)
}

// UserLookup resolves usernames to users.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// NewComment is the payload of a comment submission. Nil and empty
// values count as missing.
type NewComment struct {
	Username *string `json:"username"`
	Title    *string `json:"title"`
	Body     *string `json:"body"`
}

// CommentEdit is the payload of a comment edit.
type CommentEdit struct {
	Username *string `json:"username"`
	NewTitle *string `json:"new_title"`
	NewBody  *string `json:"new_body"`
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	comments CommentRepository
	books    BookRepository
	users    UserLookup
}

func NewCommentService(comments CommentRepository, books BookRepository, users UserLookup) *CommentService {
	return &CommentService{comments: comments, books: books, users: users}
}

// Create validates the submission and stores it for the given book. The
// first failing check decides the error.
func (s *CommentService) Create(ctx context.Context, bookID int, in NewComment) (types.Comment, error) {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return types.Comment{}, err
	}
	if !exists {
		return types.Comment{}, ErrBookNotFound
	}

	if blank(in.Username) || blank(in.Body) {
		return types.Comment{}, ErrMissingCommentFields
	}
	username, body := *in.Username, *in.Body
	if err := validation.Validate(username, validation.RuneLength(5, 0)); err != nil {
		return types.Comment{}, ErrUsernameTooShort
	}
	if err := validation.Validate(username, validation.RuneLength(0, 50)); err != nil {
		return types.Comment{}, ErrUsernameTooLong
	}
	title := normalizeTitle(in.Title)
	if err := checkLengths(title, body); err != nil {
		return types.Comment{}, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Comment{}, ErrUserNotFound
		}
		return types.Comment{}, err
	}

	comment, err := s.comments.Create(ctx, types.Comment{
		BookID: bookID,
		UserID: user.ID,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Comment{}, ErrBookNotFound
		}
		return types.Comment{}, err
	}
	comment.Username = user.Username
	return comment, nil
}

// Get returns the comment when it belongs to the given book.
func (s *CommentService) Get(ctx context.Context, bookID, commentID int) (types.Comment, error) {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Comment{}, ErrCommentNotFound
		}
		return types.Comment{}, err
	}
	if comment.BookID != bookID {
		return types.Comment{}, ErrIDMismatch
	}
	return comment, nil
}

// Edit replaces the title and body of a comment. identity is the
// logged-in user, or nil for anonymous requests; when present the claimed
// username must match it too.
func (s *CommentService) Edit(ctx context.Context, bookID, commentID int, in CommentEdit, identity *types.User) (types.Comment, error) {
	if blank(in.Username) || blank(in.NewBody) {
		return types.Comment{}, ErrMissingEditFields
	}

	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Comment{}, ErrCommentNotFound
		}
		return types.Comment{}, err
	}
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return types.Comment{}, err
	}
	if !exists {
		return types.Comment{}, ErrBookNotFound
	}
	if comment.BookID != bookID {
		return types.Comment{}, ErrIDMismatch
	}

	username := *in.Username
	if username != comment.Username {
		return types.Comment{}, ErrUsernameIncorrect
	}
	if identity != nil && identity.Username != username {
		return types.Comment{}, ErrUsernameIncorrect
	}

	title, body := normalizeTitle(in.NewTitle), *in.NewBody
	if sameTitle(title, comment.Title) && body == comment.Body {
		return types.Comment{}, ErrNoChange
	}
	if err := checkLengths(title, body); err != nil {
		return types.Comment{}, err
	}

	comment.Title = title
	comment.Body = body
	updated, err := s.comments.Update(ctx, comment)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Comment{}, ErrCommentNotFound
		}
		return types.Comment{}, err
	}
	updated.Username = comment.Username
	return updated, nil
}

func checkLengths(title *string, body string) error {
	if title != nil {
		if err := validation.Validate(*title, validation.RuneLength(0, 100)); err != nil {
			return ErrTitleTooLong
		}
	}
	if err := validation.Validate(body, validation.RuneLength(0, 3000)); err != nil {
		return ErrBodyTooLong
	}
	return nil
}

func blank(value *string) bool {
	return value == nil || *value == ""
}

// normalizeTitle maps an empty title to no title.
func normalizeTitle(title *string) *string {
	if blank(title) {
		return nil
	}
	t := *title
	return &t
}

func sameTitle(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
