package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeUserExisted            = "USER_ALREADY_EXISTS"
	ErrCodeSettlementFailed       = "SETTLEMENT_FAILED"
	ErrCodeSettlementInconsistent = "SETTLEMENT_INCONSISTENT"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeInvalidRequestBody     = "INVALID_REQUEST_BODY"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeRouteNotFound          = "ROUTE_NOT_FOUND"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

const (
	ErrMsgUserNotFound           = "user not found"
	ErrMsgUserExisted            = "user balance already exists"
	ErrMsgSettlementFailed       = "game could not be settled, please retry"
	ErrMsgSettlementInconsistent = "game settlement is inconsistent, support has been notified"
	ErrMsgValidationFailed       = "validation failed"
	ErrMsgInvalidRequestBody     = "failed to parse request body"
	ErrMsgUnauthorized           = "missing user identity"
	ErrMsgForbidden              = "admin role required"
	ErrMsgRouteNotFound          = "route not found"
	ErrMsgInternalError          = "Internal server error"
)

var errorMessages = map[string]string{
	ErrCodeUserNotFound:           ErrMsgUserNotFound,
	ErrCodeUserExisted:            ErrMsgUserExisted,
	ErrCodeSettlementFailed:       ErrMsgSettlementFailed,
	ErrCodeSettlementInconsistent: ErrMsgSettlementInconsistent,
	ErrCodeValidationFailed:       ErrMsgValidationFailed,
	ErrCodeInvalidRequestBody:     ErrMsgInvalidRequestBody,
	ErrCodeUnauthorized:           ErrMsgUnauthorized,
	ErrCodeForbidden:              ErrMsgForbidden,
	ErrCodeRouteNotFound:          ErrMsgRouteNotFound,
	ErrCodeInternalError:          ErrMsgInternalError,
}

func LookupErrorMessage(code string) (string, bool) {
	msg, exists := errorMessages[code]
	return msg, exists
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidRequestBody:
		return 400
	case ErrCodeUnauthorized:
		return 401
	case ErrCodeForbidden:
		return 403
	case ErrCodeUserNotFound, ErrCodeRouteNotFound:
		return 404
	case ErrCodeUserExisted:
		return 409
	case ErrCodeValidationFailed:
		return 422
	case ErrCodeSettlementFailed:
		return 503
	default:
		return 500
	}
}

// IsRetryable reports whether a client may safely repeat the request.
func IsRetryable(code string) bool {
	return code == ErrCodeSettlementFailed
}

// CodeForHTTPStatus names a framework-level failure that never reached a handler.
func CodeForHTTPStatus(status int) string {
	switch {
	case status == 401:
		return ErrCodeUnauthorized
	case status == 403:
		return ErrCodeForbidden
	case status == 404 || status == 405:
		return ErrCodeRouteNotFound
	case status == 422:
		return ErrCodeValidationFailed
	case status >= 400 && status < 500:
		return ErrCodeInvalidRequestBody
	default:
		return ErrCodeInternalError
	}
}
