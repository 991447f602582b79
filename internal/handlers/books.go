package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bookclub/catalog/internal/services"
	"github.com/bookclub/catalog/internal/session"
	"github.com/bookclub/catalog/types"
)

// CatalogHandler serves the book pages and their comments.
type CatalogHandler struct {
	books    *services.BookService
	comments *services.CommentService
	views    *Views
}

func NewCatalogHandler(books *services.BookService, comments *services.CommentService, views *Views) *CatalogHandler {
	return &CatalogHandler{
		books:    books,
		comments: comments,
		views:    views,
	}
}

// CatalogRouter registers book and comment routes on the given router.
func CatalogRouter(r chi.Router, books *services.BookService, comments *services.CommentService, views *Views) {
	handler := NewCatalogHandler(books, comments, views)

	r.Get("/", handler.ListBooks)
	r.Route("/{bookID}", func(r chi.Router) {
		r.Get("/", handler.RetrieveBook)
		r.Get("/comments", handler.ListComments)
		r.Get("/create-comment/", handler.CommentForm)
		r.Post("/create-comment/", handler.CreateComment)
		r.Get("/comment/{commentID}/", handler.EditCommentForm)
		r.Put("/comment/{commentID}/", handler.UpdateComment)
		r.Post("/comment/{commentID}/", handler.UpdateComment)
	})
}

type BookSummary struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Authors     string     `json:"authors"`
	ReleaseDate types.Date `json:"release_date"`
}

type BookListResponse struct {
	Count    int           `json:"count"`
	BookInfo []BookSummary `json:"book_info"`
	Notice   string        `json:"notice,omitempty"`
}

type BookDetailResponse struct {
	Name        string     `json:"name"`
	Authors     []string   `json:"authors"`
	ReleaseDate types.Date `json:"release_date"`
	Summary     string     `json:"summary"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CommentView struct {
	Username string  `json:"username"`
	ID       int     `json:"id"`
	Title    *string `json:"title"`
	Body     string  `json:"body"`
}

type CommentListResponse struct {
	BookName string        `json:"book_name"`
	Comments []CommentView `json:"Comments"`
}

func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	notice := session.PopFlash(w, r)

	books, err := h.books.List(r.Context(), "")
	if err != nil {
		h.internalError(w, r, err, "failed to list books")
		return
	}

	if wantsHTML(r) {
		h.views.render(w, r, http.StatusOK, "list_books", pageData{"Books": books, "Notice": notice})
		return
	}

	resp := BookListResponse{
		Count:    len(books),
		BookInfo: make([]BookSummary, 0, len(books)),
		Notice:   notice,
	}
	for _, book := range books {
		resp.BookInfo = append(resp.BookInfo, BookSummary{
			ID:          book.ID,
			Name:        book.Name,
			Authors:     book.AuthorLine(),
			ReleaseDate: book.ReleaseDate,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) RetrieveBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}

	if wantsHTML(r) {
		h.views.render(w, r, http.StatusOK, "retrieve_book", pageData{"Book": book})
		return
	}

	writeJSON(w, http.StatusOK, BookDetailResponse{
		Name:        book.Name,
		Authors:     book.AuthorNames(),
		ReleaseDate: book.ReleaseDate,
		Summary:     book.Summary,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	})
}

func (h *CatalogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	book, comments, err := h.books.ListComments(r.Context(), pathID(r, "bookID"))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			h.views.fail(w, r, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, r, err, "failed to list comments")
		return
	}

	if wantsHTML(r) {
		h.views.render(w, r, http.StatusOK, "list_comments", pageData{"Book": book, "Comments": comments})
		return
	}

	if len(comments) == 0 {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "this book does not have any comments yet"})
		return
	}

	resp := CommentListResponse{
		BookName: book.Name,
		Comments: make([]CommentView, 0, len(comments)),
	}
	for _, comment := range comments {
		resp.Comments = append(resp.Comments, CommentView{
			Username: comment.Username,
			ID:       comment.ID,
			Title:    comment.Title,
			Body:     comment.Body,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadBook fetches the book named in the path, answering 404 or 500
// itself when it cannot.
func (h *CatalogHandler) loadBook(w http.ResponseWriter, r *http.Request) (types.Book, bool) {
	book, err := h.books.Get(r.Context(), pathID(r, "bookID"))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			h.views.fail(w, r, http.StatusNotFound, err.Error())
			return types.Book{}, false
		}
		h.internalError(w, r, err, "failed to fetch book")
		return types.Book{}, false
	}
	return book, true
}

func (h *CatalogHandler) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(message)
	h.views.fail(w, r, http.StatusInternalServerError, message)
}
