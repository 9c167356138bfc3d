package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/truenumber/gameservice/internal/api/contract"
	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/metrics"
)

const (
	sep = " and "
)

type Error struct {
	Error       bool
	FailedField string
	Tag         string
	Value       interface{}
}

type IXValidator interface {
	Validator(data any, message string, c *fiber.Ctx) (responseErr contract.Response)
	Validate(data interface{}) []Error
}

type XValidator struct {
	validator *validator.Validate
	metrics   *metrics.Metrics
}

func NewXValidator(v *validator.Validate, metrics *metrics.Metrics) (IXValidator, error) {
	for key, function := range valid {
		if err := v.RegisterValidation(key, function); err != nil {
			return nil, fmt.Errorf("register validation %s: %w", key, err)
		}
	}

	return &XValidator{
		validator: v,
		metrics:   metrics,
	}, nil
}

// Validator parses the request body into data, when there is one, and
// validates it. A non-empty Code in the returned response means the request
// was rejected and the status has already been set on c.
func (x XValidator) Validator(data any, message string, c *fiber.Ctx) (responseErr contract.Response) {
	start := time.Now()

	if len(c.Body()) > 0 {
		if err := c.BodyParser(data); err != nil {
			c.Status(constants.GetHTTPStatus(constants.ErrCodeInvalidRequestBody))
			return contract.Response{
				Code:    constants.ErrCodeInvalidRequestBody,
				Message: constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody),
			}
		}
	}

	if errs := x.Validate(data); len(errs) > 0 && errs[0].Error {
		errMsgs := make([]string, 0, len(errs))
		for _, err := range errs {
			errMsgs = append(errMsgs, fmt.Sprintf(message, err.FailedField))

			if x.metrics != nil {
				x.metrics.RecordValidationError(err.FailedField, err.Tag)
			}
		}
		c.Status(constants.GetHTTPStatus(constants.ErrCodeValidationFailed))

		if x.metrics != nil {
			x.metrics.RecordValidationDuration("validation_error", time.Since(start))
		}

		return contract.Response{
			Code:    constants.ErrCodeValidationFailed,
			Message: strings.Join(errMsgs, sep),
		}
	}

	if x.metrics != nil {
		x.metrics.RecordValidationDuration("validation_success", time.Since(start))
	}

	return responseErr
}

func (x XValidator) Validate(data interface{}) []Error {
	var validationErrors []Error

	err := x.validator.Struct(data)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []Error{{Error: true, FailedField: "body", Tag: "invalid"}}
	}

	for _, err := range errs {
		validationErrors = append(validationErrors, Error{
			Error:       true,
			FailedField: err.Field(),
			Tag:         err.Tag(),
			Value:       err.Value(),
		})
	}

	return validationErrors
}
