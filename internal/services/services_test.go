package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookclub/catalog/internal/store/storetest"
	"github.com/bookclub/catalog/types"
)

type fixture struct {
	db       *storetest.DB
	authors  *AuthorService
	books    *BookService
	comments *CommentService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.New()
	return &fixture{
		db:       db,
		authors:  NewAuthorService(db.Authors()),
		books:    NewBookService(db.Books(), db.Comments()),
		comments: NewCommentService(db.Comments(), db.Books(), db.Users()),
		users:    NewUserService(db.Users()).WithHashCost(bcrypt.MinCost),
	}
}

func (f *fixture) book(t *testing.T, name string, authors ...[2]string) types.Book {
	t.Helper()
	ctx := context.Background()
	ids := make([]int, 0, len(authors))
	for _, a := range authors {
		author, err := f.authors.Create(ctx, types.Author{
			FirstName: a[0],
			LastName:  a[1],
			BirthDate: types.NewDate(1902, 1, 15),
		})
		require.NoError(t, err)
		ids = append(ids, author.ID)
	}
	book, err := f.books.Create(ctx, types.Book{
		Name:        name,
		ReleaseDate: types.NewDate(1950, 3, 1),
		Summary:     "poems",
	}, ids)
	require.NoError(t, err)
	return book
}

func (f *fixture) user(t *testing.T, username string) types.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pass1",
	})
	require.NoError(t, err)
	return user
}

func ptr(s string) *string {
	return &s
}
