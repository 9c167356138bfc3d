package errors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/truenumber/gameservice/internal/api/contract"
	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/service"
	"go.uber.org/zap"
)

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr, logger)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(contract.ResponseError{
				Code:    constants.CodeForHTTPStatus(fiberErr.Code),
				Message: fiberErr.Message,
				TrackID: trackID(c),
			})
		}

		logger.Error("Unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(contract.ResponseError{
			Code:    constants.ErrCodeInternalError,
			Message: constants.GetErrorMessage(constants.ErrCodeInternalError),
			TrackID: trackID(c),
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error, logger *zap.Logger) error {
	errorCode := err.Code

	status := constants.GetHTTPStatus(errorCode)
	if status == fiber.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("code", errorCode),
			zap.String("path", c.Path()),
			zap.Error(err))

		if _, known := constants.LookupErrorMessage(errorCode); !known {
			errorCode = constants.ErrCodeInternalError
		}
	}

	if constants.IsRetryable(errorCode) {
		c.Set(fiber.HeaderRetryAfter, "1")
	}

	return c.Status(status).JSON(contract.ResponseError{
		Code:    errorCode,
		Message: constants.GetErrorMessage(errorCode),
		TrackID: trackID(c),
	})
}

func trackID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
