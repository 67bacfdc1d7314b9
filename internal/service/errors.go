package service

import (
	"errors"
	"fmt"

	"github.com/mnkvreels/vreels-backend/internal/repository"
)

var (
	ErrSelfReference         = errors.New("cannot target yourself")
	ErrNotFollowing          = errors.New("not following")
	ErrNotBlocked            = errors.New("not blocked")
	ErrRequestAlreadyPending = errors.New("follow request already pending")
	ErrRequestNotFound       = errors.New("follow request not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrPostNotFound          = errors.New("post not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// StorageError wraps an infrastructure failure. The transaction it occurred
// in has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr leaves typed service errors untouched and wraps anything else.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) || isServiceError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// translate maps repository sentinels onto service errors and wraps the rest
// as a StorageError tagged with op.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrPostNotFound):
		return ErrPostNotFound
	case errors.Is(err, repository.ErrCommentNotFound):
		return ErrCommentNotFound
	}
	return storageErr(op, err)
}

func isServiceError(err error) bool {
	for _, target := range []error{
		ErrSelfReference, ErrNotFollowing, ErrNotBlocked, ErrRequestAlreadyPending,
		ErrRequestNotFound, ErrUserNotFound, ErrPostNotFound, ErrCommentNotFound, ErrForbidden,
		ErrInvalidArgument,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
