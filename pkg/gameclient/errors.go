package gameclient

import "errors"

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusUnprocessableEntity = 422
	StatusServiceUnavailable  = 503
)

const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeUserExists       = "USER_ALREADY_EXISTS"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeSettlementFailed = "SETTLEMENT_FAILED"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeServerError      = "SERVER_ERROR"
)

var (
	ErrUnauthorized     = errors.New(ErrCodeUnauthorized)
	ErrForbidden        = errors.New(ErrCodeForbidden)
	ErrUserNotFound     = errors.New(ErrCodeUserNotFound)
	ErrUserExists       = errors.New(ErrCodeUserExists)
	ErrValidationFailed = errors.New(ErrCodeValidationFailed)
	ErrSettlementFailed = errors.New(ErrCodeSettlementFailed)
	ErrTimeout          = errors.New(ErrCodeTimeout)
	ErrServerError      = errors.New(ErrCodeServerError)
)

var statusErrorMap = map[int]error{
	StatusUnauthorized:        ErrUnauthorized,
	StatusForbidden:           ErrForbidden,
	StatusNotFound:            ErrUserNotFound,
	StatusConflict:            ErrUserExists,
	StatusUnprocessableEntity: ErrValidationFailed,
	StatusServiceUnavailable:  ErrSettlementFailed,
}

func MapStatusToError(statusCode int) error {
	if err, exists := statusErrorMap[statusCode]; exists {
		return err
	}

	return ErrServerError
}

// IsRetryable reports whether a play may be re-sent with the same
// idempotency key.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSettlementFailed) || errors.Is(err, ErrTimeout)
}
