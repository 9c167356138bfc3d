package service

import "errors"

var (
	ErrCompensationFailed = errors.New("COMPENSATION_FAILED")
	ErrMissingIdentity    = errors.New("MISSING_IDENTITY")
	ErrNotAdmin           = errors.New("NOT_ADMIN")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}
