package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bookclub/catalog/internal/services"
	"github.com/bookclub/catalog/internal/session"
	"github.com/bookclub/catalog/types"
)

type CreateCommentResponse struct {
	Message   string `json:"message"`
	CommentID int    `json:"comment_id"`
}

type UpdateCommentResponse struct {
	Message string  `json:"message"`
	Title   *string `json:"title"`
	Body    string  `json:"body"`
	ID      int     `json:"id"`
}

func (h *CatalogHandler) CommentForm(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}
	user := session.UserFrom(r.Context())
	if user == nil {
		redirect(w, r, "/login/")
		return
	}
	h.views.render(w, r, http.StatusOK, "comment_form", commentFormData(book, services.NewComment{Username: &user.Username}, ""))
}

func (h *CatalogHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	book, ok := h.loadBook(w, r)
	if !ok {
		return
	}

	var in services.NewComment
	if err := decodeBody(w, r, &in, func(form url.Values) {
		in.Username = formField(form, "username")
		in.Title = formField(form, "title")
		in.Body = formField(form, "body")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.comments.Create(r.Context(), book.ID, in)
	if err != nil {
		status := commentErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.internalError(w, r, err, "failed to create comment")
			return
		}
		if isForm(r) && wantsHTML(r) {
			h.views.render(w, r, status, "comment_form", commentFormData(book, in, err.Error()))
			return
		}
		writeError(w, status, err.Error())
		return
	}

	if isForm(r) {
		redirect(w, r, fmt.Sprintf("/%d/comments", book.ID))
		return
	}
	writeJSON(w, http.StatusOK, CreateCommentResponse{Message: "success", CommentID: comment.ID})
}

func (h *CatalogHandler) EditCommentForm(w http.ResponseWriter, r *http.Request) {
	bookID := pathID(r, "bookID")
	comment, err := h.comments.Get(r.Context(), bookID, pathID(r, "commentID"))
	if err != nil {
		status := commentErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.internalError(w, r, err, "failed to fetch comment")
			return
		}
		h.views.fail(w, r, status, err.Error())
		return
	}

	username := comment.Username
	if user := session.UserFrom(r.Context()); user != nil {
		username = user.Username
	}
	h.views.render(w, r, http.StatusOK, "update_comment", editFormData(bookID, comment, username, ""))
}

func (h *CatalogHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	bookID := pathID(r, "bookID")
	commentID := pathID(r, "commentID")

	var in services.CommentEdit
	if err := decodeBody(w, r, &in, func(form url.Values) {
		in.Username = formField(form, "username")
		in.NewTitle = formField(form, "new_title")
		in.NewBody = formField(form, "new_body")
	}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.comments.Edit(r.Context(), bookID, commentID, in, session.UserFrom(r.Context()))
	if err != nil {
		status := commentErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.internalError(w, r, err, "failed to update comment")
			return
		}
		if isForm(r) && wantsHTML(r) {
			h.renderEditError(w, r, bookID, commentID, in, status, err)
			return
		}
		writeError(w, status, err.Error())
		return
	}

	if isForm(r) {
		redirect(w, r, fmt.Sprintf("/%d/comments", bookID))
		return
	}
	writeJSON(w, http.StatusOK, UpdateCommentResponse{
		Message: "comment_changed",
		Title:   comment.Title,
		Body:    comment.Body,
		ID:      comment.ID,
	})
}

// renderEditError re-renders the edit form with the submitted values when
// the comment can still be shown, and an error page otherwise.
func (h *CatalogHandler) renderEditError(w http.ResponseWriter, r *http.Request, bookID, commentID int, in services.CommentEdit, status int, cause error) {
	comment, err := h.comments.Get(r.Context(), bookID, commentID)
	if err != nil {
		h.views.fail(w, r, status, cause.Error())
		return
	}
	comment.Title = in.NewTitle
	if in.NewBody != nil {
		comment.Body = *in.NewBody
	}
	username := ""
	if in.Username != nil {
		username = *in.Username
	}
	h.views.render(w, r, status, "update_comment", editFormData(bookID, comment, username, cause.Error()))
}

func commentFormData(book types.Book, in services.NewComment, message string) pageData {
	return pageData{
		"Book":     book,
		"Username": deref(in.Username),
		"Title":    deref(in.Title),
		"Body":     deref(in.Body),
		"Error":    message,
	}
}

func editFormData(bookID int, comment types.Comment, username, message string) pageData {
	return pageData{
		"BookID":   bookID,
		"Comment":  comment,
		"Username": username,
		"Error":    message,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func commentErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUsernameIncorrect):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMissingCommentFields),
		errors.Is(err, services.ErrMissingEditFields),
		errors.Is(err, services.ErrUsernameTooShort),
		errors.Is(err, services.ErrUsernameTooLong),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrBodyTooLong),
		errors.Is(err, services.ErrIDMismatch),
		errors.Is(err, services.ErrNoChange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
