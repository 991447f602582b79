package services

import "errors"

var (
	ErrBookNotFound    = errors.New("book does not exist")
	ErrCommentNotFound = errors.New("comment does not exist")
	ErrUserNotFound    = errors.New("user does not exist")
	ErrAuthorNotFound  = errors.New("author does not exist")

	ErrMissingCommentFields = errors.New("username or comment body is missing")
	ErrMissingEditFields    = errors.New("one of required fields is missing")
	ErrUsernameTooShort     = errors.New("username must be 5 or more chars")
	ErrUsernameTooLong      = errors.New("username can not be more than 50 characters")
	ErrTitleTooLong         = errors.New("title can not be more than 100 characters")
	ErrBodyTooLong          = errors.New("body can not be more than 3000 characters")
	ErrIDMismatch           = errors.New("book id and comment id do not match")
	ErrUsernameIncorrect    = errors.New("username is incorrect")
	ErrNoChange             = errors.New("You have not changed anything about your comment, try again if you got something wrong")

	ErrInvalidCredentials = errors.New("incorrect username or password")
)
