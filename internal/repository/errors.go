package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUser is returned when a user with the same email already exists.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrDuplicateSession is returned when a token is already bound to another user.
	ErrDuplicateSession = errors.New("session token already bound to another user")
	// ErrInvalidArgument is returned for arguments the store refuses to write.
	ErrInvalidArgument = errors.New("invalid argument")
)

// WriteError wraps a database fault raised while writing.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
