package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a user is created with a username that
// already exists.
var ErrUsernameTaken = errors.New("username already exists")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type scanner interface {
	Scan(dest ...any) error
}

func isPQError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
