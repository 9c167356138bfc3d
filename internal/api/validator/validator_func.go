package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	idempotencyKeyRegex = `^[A-Za-z0-9._:-]{1,64}$`
	userIDRegex         = `^[A-Za-z0-9_-]{1,64}$`
)

const (
	IdempotencyKeyTag = "idempotency_key"
	UserIDTag         = "user_id"
)

var (
	idempotencyKeyPattern = regexp.MustCompile(idempotencyKeyRegex)
	userIDPattern         = regexp.MustCompile(userIDRegex)
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	IdempotencyKeyTag: ValidateIdempotencyKey,
	UserIDTag:         ValidateUserID,
}

func ValidateIdempotencyKey(fl validator.FieldLevel) bool {
	return idempotencyKeyPattern.MatchString(fl.Field().String())
}

func ValidateUserID(fl validator.FieldLevel) bool {
	return userIDPattern.MatchString(fl.Field().String())
}
