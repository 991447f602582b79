package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBooksEmpty(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, request{method: http.MethodGet, path: "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"book_info":[]}`, rec.Body.String())
}

func TestListBooks(t *testing.T) {
	app := newTestApp(t)
	book := app.seedBook(t)

	rec := app.do(t, request{method: http.MethodGet, path: "/"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BookListResponse](t, rec)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.BookInfo, 1)
	assert.Equal(t, book.ID, resp.BookInfo[0].ID)
	assert.Equal(t, "test book", resp.BookInfo[0].Name)
	assert.Equal(t, "Nazim Hikmet, Tevfik Fikret", resp.BookInfo[0].Authors)
	assert.Equal(t, "1966-06-01", resp.BookInfo[0].ReleaseDate.String())
	assert.Empty(t, resp.Notice)
}

func TestListBooksHTML(t *testing.T) {
	app := newTestApp(t)
	app.seedBook(t)

	rec := app.do(t, request{method: http.MethodGet, path: "/", html: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "test book")
	assert.Contains(t, rec.Body.String(), "Nazim Hikmet, Tevfik Fikret")
}

func TestRetrieveBook(t *testing.T) {
	app := newTestApp(t)
	book := app.seedBook(t)

	rec := app.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/%d", book.ID)})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BookDetailResponse](t, rec)
	assert.Equal(t, "test book", resp.Name)
	assert.Equal(t, []string{"Nazim Hikmet", "Tevfik Fikret"}, resp.Authors)
	assert.Equal(t, "a test summary", resp.Summary)
	assert.True(t, resp.CreatedAt.Equal(book.CreatedAt))
	assert.False(t, resp.UpdatedAt.Before(resp.CreatedAt))
}

func TestRetrieveBookNotFound(t *testing.T) {
	app := newTestApp(t)
	app.seedBook(t)

	for _, path := range []string{"/999", "/not-a-number"} {
		rec := app.do(t, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "book does not exist", errorMessage(t, rec))
	}

	rec := app.do(t, request{method: http.MethodGet, path: "/999", html: true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "book does not exist")
}

func TestListComments(t *testing.T) {
	app := newTestApp(t)
	book := app.seedBook(t)
	app.seedUser(t, "test_username")
	path := fmt.Sprintf("/%d/comments", book.ID)

	rec := app.do(t, request{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"this book does not have any comments yet"}`, rec.Body.String())

	rec = app.do(t, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/%d/create-comment/", book.ID),
		body:   `{"username":"test_username","title":"Opinion","body":"test comment"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, request{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CommentListResponse](t, rec)
	assert.Equal(t, "test book", resp.BookName)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "test_username", resp.Comments[0].Username)
	assert.Equal(t, "test comment", resp.Comments[0].Body)
	require.NotNil(t, resp.Comments[0].Title)
	assert.Equal(t, "Opinion", *resp.Comments[0].Title)

	rec = app.do(t, request{method: http.MethodGet, path: "/999/comments"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "book does not exist", errorMessage(t, rec))
}

func TestListBooksStorageFailure(t *testing.T) {
	app := newTestApp(t)
	app.db.Err = errors.New("connection reset")

	rec := app.do(t, request{method: http.MethodGet, path: "/"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to list books", errorMessage(t, rec))
}
