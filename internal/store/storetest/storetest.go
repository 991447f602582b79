// Package storetest provides in-memory repositories that mirror the
// behavior of the Postgres-backed ones in package store.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookclub/catalog/internal/store"
	"github.com/bookclub/catalog/types"
)

// DB is the shared state behind the repositories. When Err is set every
// repository call returns it.
type DB struct {
	mu       sync.Mutex
	Err      error
	authors  map[int]types.Author
	books    map[int]types.Book
	links    map[int][]int
	comments map[int]types.Comment
	users    map[int]types.User
	nextID   int
}

func New() *DB {
	return &DB{
		authors:  make(map[int]types.Author),
		books:    make(map[int]types.Book),
		links:    make(map[int][]int),
		comments: make(map[int]types.Comment),
		users:    make(map[int]types.User),
	}
}

func (db *DB) Authors() *AuthorRepository   { return &AuthorRepository{db: db} }
func (db *DB) Books() *BookRepository       { return &BookRepository{db: db} }
func (db *DB) Comments() *CommentRepository { return &CommentRepository{db: db} }
func (db *DB) Users() *UserRepository       { return &UserRepository{db: db} }

func (db *DB) id() int {
	db.nextID++
	return db.nextID
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

type AuthorRepository struct {
	db *DB
}

func (r *AuthorRepository) List(ctx context.Context) ([]types.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}
	authors := make([]types.Author, 0, len(r.db.authors))
	for _, id := range sortedKeys(r.db.authors) {
		authors = append(authors, r.db.authors[id])
	}
	return authors, nil
}

func (r *AuthorRepository) Get(ctx context.Context, id int) (types.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Author{}, r.db.Err
	}
	author, ok := r.db.authors[id]
	if !ok {
		return types.Author{}, store.ErrNotFound
	}
	return author, nil
}

func (r *AuthorRepository) Create(ctx context.Context, author types.Author) (types.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Author{}, r.db.Err
	}
	author.ID = r.db.id()
	r.db.authors[author.ID] = author
	return author, nil
}

type BookRepository struct {
	db *DB
}

func (r *BookRepository) List(ctx context.Context) ([]types.Book, error) {
	return r.Search(ctx, "")
}

func (r *BookRepository) Search(ctx context.Context, term string) ([]types.Book, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}
	term = strings.ToLower(term)
	books := make([]types.Book, 0, len(r.db.books))
	for _, id := range sortedKeys(r.db.books) {
		book := r.db.withAuthors(r.db.books[id])
		if term == "" || matches(book, term) {
			books = append(books, book)
		}
	}
	return books, nil
}

func matches(book types.Book, term string) bool {
	if strings.Contains(strings.ToLower(book.Name), term) {
		return true
	}
	for _, author := range book.Authors {
		if strings.Contains(strings.ToLower(author.FirstName), term) ||
			strings.Contains(strings.ToLower(author.LastName), term) {
			return true
		}
	}
	return false
}

func (r *BookRepository) Get(ctx context.Context, id int) (types.Book, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Book{}, r.db.Err
	}
	book, ok := r.db.books[id]
	if !ok {
		return types.Book{}, store.ErrNotFound
	}
	return r.db.withAuthors(book), nil
}

func (r *BookRepository) Exists(ctx context.Context, id int) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return false, r.db.Err
	}
	_, ok := r.db.books[id]
	return ok, nil
}

func (r *BookRepository) Create(ctx context.Context, book types.Book, authorIDs []int) (types.Book, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Book{}, r.db.Err
	}
	links := make([]int, 0, len(authorIDs))
	seen := make(map[int]bool, len(authorIDs))
	for _, authorID := range authorIDs {
		if _, ok := r.db.authors[authorID]; !ok {
			return types.Book{}, fmt.Errorf("author %d: %w", authorID, store.ErrNotFound)
		}
		if !seen[authorID] {
			seen[authorID] = true
			links = append(links, authorID)
		}
	}
	book.ID = r.db.id()
	book.CreatedAt = now()
	book.UpdatedAt = book.CreatedAt
	book.Authors = nil
	r.db.books[book.ID] = book
	r.db.links[book.ID] = links
	return r.db.withAuthors(book), nil
}

func (r *BookRepository) Update(ctx context.Context, book types.Book) (types.Book, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Book{}, r.db.Err
	}
	stored, ok := r.db.books[book.ID]
	if !ok {
		return types.Book{}, store.ErrNotFound
	}
	stored.Name = book.Name
	stored.ReleaseDate = book.ReleaseDate
	stored.Summary = book.Summary
	stored.UpdatedAt = laterOf(now(), stored.CreatedAt)
	r.db.books[book.ID] = stored
	return r.db.withAuthors(stored), nil
}

func (r *BookRepository) Delete(ctx context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return r.db.Err
	}
	if _, ok := r.db.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.books, id)
	delete(r.db.links, id)
	for commentID, comment := range r.db.comments {
		if comment.BookID == id {
			delete(r.db.comments, commentID)
		}
	}
	return nil
}

func (db *DB) withAuthors(book types.Book) types.Book {
	book.Authors = make([]types.Author, 0, len(db.links[book.ID]))
	for _, authorID := range db.links[book.ID] {
		book.Authors = append(book.Authors, db.authors[authorID])
	}
	return book
}

type CommentRepository struct {
	db *DB
}

func (r *CommentRepository) ListByBook(ctx context.Context, bookID int) ([]types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return nil, r.db.Err
	}
	comments := make([]types.Comment, 0)
	for _, id := range sortedKeys(r.db.comments) {
		if comment := r.db.comments[id]; comment.BookID == bookID {
			comments = append(comments, r.db.withUsername(comment))
		}
	}
	return comments, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Comment{}, r.db.Err
	}
	comment, ok := r.db.comments[id]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	return r.db.withUsername(comment), nil
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Comment{}, r.db.Err
	}
	if _, ok := r.db.books[comment.BookID]; !ok {
		return types.Comment{}, fmt.Errorf("comment reference: %w", store.ErrNotFound)
	}
	if _, ok := r.db.users[comment.UserID]; !ok {
		return types.Comment{}, fmt.Errorf("comment reference: %w", store.ErrNotFound)
	}
	comment.ID = r.db.id()
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt
	r.db.comments[comment.ID] = comment
	return r.db.withUsername(comment), nil
}

func (r *CommentRepository) Update(ctx context.Context, comment types.Comment) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.Comment{}, r.db.Err
	}
	stored, ok := r.db.comments[comment.ID]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	stored.Title = comment.Title
	stored.Body = comment.Body
	stored.UpdatedAt = laterOf(now(), stored.CreatedAt)
	r.db.comments[comment.ID] = stored
	return r.db.withUsername(stored), nil
}

func (db *DB) withUsername(comment types.Comment) types.Comment {
	comment.Username = db.users[comment.UserID].Username
	return comment
}

type UserRepository struct {
	db *DB
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.User{}, r.db.Err
	}
	user, ok := r.db.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.User{}, r.db.Err
	}
	for _, user := range r.db.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.User{}, r.db.Err
	}
	for _, existing := range r.db.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrUsernameTaken
		}
	}
	user.ID = r.db.id()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.Err != nil {
		return types.User{}, r.db.Err
	}
	stored, ok := r.db.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	for id, existing := range r.db.users {
		if id != user.ID && existing.Username == user.Username {
			return types.User{}, store.ErrUsernameTaken
		}
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = laterOf(now(), stored.CreatedAt)
	r.db.users[user.ID] = user
	return user, nil
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
