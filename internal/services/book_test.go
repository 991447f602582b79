package services

import (
	"context"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclub/catalog/types"
)

func TestBookServiceGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.book(t, "Human Landscapes", [2]string{"Nazim", "Hikmet"}, [2]string{"Tevfik", "Fikret"})

	book, err := f.books.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nazim Hikmet", "Tevfik Fikret"}, book.AuthorNames())
	assert.Equal(t, "Nazim Hikmet, Tevfik Fikret", book.AuthorLine())
	assert.False(t, book.UpdatedAt.Before(book.CreatedAt))

	_, err = f.books.Get(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookServiceList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	books, err := f.books.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, books)

	f.book(t, "Human Landscapes", [2]string{"Nazim", "Hikmet"})
	f.book(t, "Rubab-i Sikeste", [2]string{"Tevfik", "Fikret"})

	books, err = f.books.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Human Landscapes", books[0].Name)

	books, err = f.books.List(ctx, "fikret")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Rubab-i Sikeste", books[0].Name)

	books, err = f.books.List(ctx, "LANDSCAPES")
	require.NoError(t, err)
	require.Len(t, books, 1)
}

func TestBookServiceCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.books.Create(ctx, types.Book{Name: "  "}, nil)
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "release_date")

	_, err = f.books.Create(ctx, types.Book{Name: "x", ReleaseDate: types.NewDate(2000, 1, 1)}, []int{42})
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestBookServiceUpdateRefreshesTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.book(t, "Human Landscapes", [2]string{"Nazim", "Hikmet"})

	created.Summary = "an epic"
	updated, err := f.books.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "an epic", updated.Summary)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	created.ID = 999
	_, err = f.books.Update(ctx, created)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookServiceDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.book(t, "Human Landscapes", [2]string{"Nazim", "Hikmet"})
	f.user(t, "test_username")

	comment, err := f.comments.Create(ctx, book.ID, NewComment{Username: ptr("test_username"), Body: ptr("great")})
	require.NoError(t, err)

	require.NoError(t, f.books.Delete(ctx, book.ID))
	_, err = f.comments.Get(ctx, book.ID, comment.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, f.books.Delete(ctx, book.ID), ErrBookNotFound)
}

func TestBookServiceListComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.book(t, "Human Landscapes", [2]string{"Nazim", "Hikmet"})
	f.user(t, "test_username")

	_, comments, err := f.books.ListComments(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	for _, body := range []string{"first", "second"} {
		_, err := f.comments.Create(ctx, book.ID, NewComment{Username: ptr("test_username"), Body: ptr(body)})
		require.NoError(t, err)
	}

	got, comments, err := f.books.ListComments(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Name, got.Name)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)
	assert.Equal(t, "test_username", comments[0].Username)

	_, _, err = f.books.ListComments(ctx, 999)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestAuthorServiceCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.authors.Create(ctx, types.Author{FirstName: "Nazim"})
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "birth_date")

	author, err := f.authors.Create(ctx, types.Author{FirstName: " Nazim ", LastName: "Hikmet", BirthDate: types.NewDate(1902, 1, 15)})
	require.NoError(t, err)
	assert.Equal(t, "Nazim Hikmet", author.String())

	got, err := f.authors.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author, got)

	_, err = f.authors.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}
