//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bookclub/catalog/internal/store"
	"github.com/bookclub/catalog/types"
)

var client = &http.Client{
	Timeout: 5 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func TestBookTimestamps(t *testing.T) {
	ctx := context.Background()
	books := store.NewBookRepository(testDB)

	before := time.Now().Add(-time.Second)
	book := createBook(t, "Timestamps", nil)
	after := time.Now().Add(time.Second)

	if book.CreatedAt.Before(before) || book.CreatedAt.After(after) {
		t.Fatalf("created_at %v not close to now", book.CreatedAt)
	}
	if book.UpdatedAt.Before(book.CreatedAt) {
		t.Fatalf("updated_at %v before created_at %v", book.UpdatedAt, book.CreatedAt)
	}

	time.Sleep(10 * time.Millisecond)
	book.Summary = "a new summary"
	updated, err := books.Update(ctx, book)
	if err != nil {
		t.Fatalf("update book: %v", err)
	}
	if !updated.CreatedAt.Equal(book.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", book.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(book.UpdatedAt) {
		t.Fatalf("updated_at did not advance: %v -> %v", book.UpdatedAt, updated.UpdatedAt)
	}

	stored, err := books.Get(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if stored.Summary != "a new summary" || !stored.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Fatalf("unexpected stored book: %+v", stored)
	}
}

func TestBookAuthorsKeepOrder(t *testing.T) {
	authors := []types.Author{
		createAuthor(t, "Tevfik", "Fikret"),
		createAuthor(t, "Nazim", "Hikmet"),
	}
	book := createBook(t, "Order", authors)

	got := strings.Join(book.AuthorNames(), "|")
	if got != "Tevfik Fikret|Nazim Hikmet" {
		t.Fatalf("unexpected author order: %q", got)
	}
}

func TestDeleteBookCascadesComments(t *testing.T) {
	ctx := context.Background()
	books := store.NewBookRepository(testDB)
	comments := store.NewCommentRepository(testDB)

	book := createBook(t, "Doomed", nil)
	user := createUser(t, fmt.Sprintf("cascade_%d", time.Now().UnixNano()))
	comment, err := comments.Create(ctx, types.Comment{BookID: book.ID, UserID: user.ID, Body: "soon gone"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := books.Delete(ctx, book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if _, err := comments.Get(ctx, comment.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected comment to be deleted, got %v", err)
	}
}

func TestCommentScenario(t *testing.T) {
	book := createBook(t, "test book", []types.Author{
		createAuthor(t, "Nazim", "Hikmet"),
		createAuthor(t, "Tevfik", "Fikret"),
	})
	other := createBook(t, "another book", nil)
	register(t, "test_username", "test_username@example.com", "test-pass123")

	var detail struct {
		Name    string   `json:"name"`
		Authors []string `json:"authors"`
	}
	getJSON(t, fmt.Sprintf("/%d", book.ID), http.StatusOK, &detail)
	if detail.Name != "test book" || strings.Join(detail.Authors, ", ") != "Nazim Hikmet, Tevfik Fikret" {
		t.Fatalf("unexpected book detail: %+v", detail)
	}

	var empty map[string]string
	getJSON(t, fmt.Sprintf("/%d/comments", book.ID), http.StatusOK, &empty)
	if empty["message"] != "this book does not have any comments yet" {
		t.Fatalf("unexpected empty comments response: %v", empty)
	}

	var created struct {
		Message   string `json:"message"`
		CommentID int    `json:"comment_id"`
	}
	sendJSON(t, http.MethodPost, fmt.Sprintf("/%d/create-comment/", book.ID),
		`{"username":"test_username","body":"test comment"}`, http.StatusOK, &created)
	if created.Message != "success" || created.CommentID == 0 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	var listed struct {
		BookName string `json:"book_name"`
		Comments []struct {
			Username string `json:"username"`
			ID       int    `json:"id"`
			Body     string `json:"body"`
		} `json:"Comments"`
	}
	getJSON(t, fmt.Sprintf("/%d/comments", book.ID), http.StatusOK, &listed)
	if listed.BookName != "test book" || len(listed.Comments) != 1 || listed.Comments[0].Username != "test_username" {
		t.Fatalf("unexpected comments: %+v", listed)
	}

	var mismatch map[string]string
	sendJSON(t, http.MethodPut, fmt.Sprintf("/%d/comment/%d/", other.ID, created.CommentID),
		`{"username":"test_username","new_title":null,"new_body":"changed"}`, http.StatusBadRequest, &mismatch)
	if mismatch["error"] != "book id and comment id do not match" {
		t.Fatalf("unexpected mismatch response: %v", mismatch)
	}

	var missing map[string]string
	sendJSON(t, http.MethodPost, "/999999/create-comment/", `{"username":`, http.StatusNotFound, &missing)
	if missing["error"] != "book does not exist" {
		t.Fatalf("unexpected missing book response: %v", missing)
	}

	var changed map[string]any
	sendJSON(t, http.MethodPut, fmt.Sprintf("/%d/comment/%d/", book.ID, created.CommentID),
		`{"username":"test_username","new_title":"Title","new_body":"changed"}`, http.StatusOK, &changed)
	if changed["message"] != "comment_changed" || changed["body"] != "changed" {
		t.Fatalf("unexpected edit response: %v", changed)
	}
}

func TestLoginLogout(t *testing.T) {
	username := fmt.Sprintf("reader_%d", time.Now().UnixNano()%1_000_000_000)
	register(t, username, username+"@example.com", "test-pass123")

	form := url.Values{"username": {username}, "password": {"test-pass123"}}
	resp, err := client.PostForm(baseURL+"/login/", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "catalog_session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatalf("login did not set a session cookie")
	}

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/logout/", nil)
	req.AddCookie(sessionCookie)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("unexpected logout status: %d", resp.StatusCode)
	}

	var flash *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "catalog_flash" {
			flash = c
		}
	}
	if flash == nil {
		t.Fatalf("logout did not set a notice")
	}

	req, _ = http.NewRequest(http.MethodGet, baseURL+"/", nil)
	req.AddCookie(flash)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	defer resp.Body.Close()
	var listing struct {
		Notice string `json:"notice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Notice != "You have successfully logged out" {
		t.Fatalf("unexpected notice: %q", listing.Notice)
	}
}

func createAuthor(t *testing.T, first, last string) types.Author {
	t.Helper()
	author, err := store.NewAuthorRepository(testDB).Create(context.Background(), types.Author{
		FirstName: first,
		LastName:  last,
		BirthDate: types.NewDate(1900, 1, 1),
	})
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	return author
}

func createBook(t *testing.T, name string, authors []types.Author) types.Book {
	t.Helper()
	ids := make([]int, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	book, err := store.NewBookRepository(testDB).Create(context.Background(), types.Book{
		Name:        name,
		ReleaseDate: types.NewDate(1950, 1, 1),
		Summary:     "summary",
	}, ids)
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func createUser(t *testing.T, username string) types.User {
	t.Helper()
	user, err := store.NewUserRepository(testDB).Create(context.Background(), types.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func register(t *testing.T, username, email, password string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, password)
	resp, err := client.Post(baseURL+"/register/", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected register status %d: %s", resp.StatusCode, data)
	}
}

func getJSON(t *testing.T, path string, wantStatus int, dst any) {
	t.Helper()
	sendJSON(t, http.MethodGet, path, "", wantStatus, dst)
}

func sendJSON(t *testing.T, method, path, body string, wantStatus int, dst any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, wantStatus, data)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
