package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/truenumber/gameservice/internal/api/contract"
	"github.com/truenumber/gameservice/internal/api/v1/middleware"
	"github.com/truenumber/gameservice/internal/api/validator"
	"github.com/truenumber/gameservice/internal/constants"
	"github.com/truenumber/gameservice/internal/metrics"
	"github.com/truenumber/gameservice/internal/service"
	"go.uber.org/zap"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type Handler struct {
	logger             *zap.Logger
	settlementService  service.SettlementService
	historyService     service.HistoryService
	userBalanceService service.UserBalanceService
	XValidator         validator.IXValidator
	metrics            *metrics.Metrics
}

func NewHandler(logger *zap.Logger, settlementService service.SettlementService, historyService service.HistoryService,
	userBalanceService service.UserBalanceService, XValidator validator.IXValidator, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:             logger,
		settlementService:  settlementService,
		historyService:     historyService,
		userBalanceService: userBalanceService,
		XValidator:         XValidator,
		metrics:            metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) Play(c *fiber.Ctx) error {
	start := time.Now()
	userID := middleware.UserID(c)

	handlerRequest := PlayRequest{IdempotencyKey: c.Get(HeaderIdempotencyKey)}

	validationStart := time.Now()
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	h.metrics.RecordValidationDuration("play", time.Since(validationStart))

	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.String("user_id", userID), zap.Any("request", handlerRequest))
		return c.JSON(responseError)
	}

	result, err := h.settlementService.Play(c.UserContext(), service.PlayCommand{
		UserID:         userID,
		IdempotencyKey: handlerRequest.IdempotencyKey,
	})
	if err != nil {
		return err
	}

	h.logger.Info("Play handled",
		zap.String("user_id", userID),
		zap.String("game_id", result.GameID),
		zap.Bool("replayed", result.Replayed),
		zap.Duration("duration", time.Since(start)),
	)

	message := constants.GamePlayed
	if result.Replayed {
		message = constants.GameReplayed
	}

	return c.JSON(h.success(c, message, newPlayResponse(result)))
}

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	return h.balance(c, middleware.UserID(c))
}

func (h *Handler) GetHistory(c *fiber.Ctx) error {
	return h.history(c, middleware.UserID(c))
}

func (h *Handler) GetStats(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	stats, err := h.historyService.GetStats(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(h.success(c, constants.StatsRetrieved, newStatsResponse(stats)))
}

func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest CreateAccountRequest

	validationStart := time.Now()
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	h.metrics.RecordValidationDuration("create_account", time.Since(validationStart))

	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		return c.JSON(responseError)
	}

	ub, err := h.userBalanceService.CreateAccount(c.UserContext(), service.CreateAccountCommand{UserID: handlerRequest.UserID})
	if err != nil {
		return err
	}

	h.logger.Info("Account created",
		zap.String("user_id", ub.UserID),
		zap.Duration("duration", time.Since(start)),
	)

	return c.Status(fiber.StatusCreated).JSON(h.success(c, constants.UserBalanceCreated,
		BalanceResponse{UserID: ub.UserID, Balance: ub.Balance}))
}

func (h *Handler) GetUserBalance(c *fiber.Ctx) error {
	return h.balance(c, c.Params("id"))
}

func (h *Handler) SetUserBalance(c *fiber.Ctx) error {
	userID := c.Params("id")
	actorID := middleware.UserID(c)

	var handlerRequest SetBalanceRequest

	validationStart := time.Now()
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	h.metrics.RecordValidationDuration("set_balance", time.Since(validationStart))

	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.String("user_id", userID), zap.Any("request", handlerRequest))
		return c.JSON(responseError)
	}

	result, err := h.userBalanceService.SetBalance(c.UserContext(), service.SetBalanceCommand{
		UserID:  userID,
		Balance: *handlerRequest.Balance,
		ActorID: actorID,
	})
	if err != nil {
		return err
	}

	return c.JSON(h.success(c, constants.UserBalanceUpdated, SetBalanceResponse{
		UserID:          userID,
		PreviousBalance: result.Adjustment.PreviousBalance,
		Balance:         result.UserBalance.Balance,
		AdjustmentID:    result.Adjustment.ID,
	}))
}

func (h *Handler) GetUserHistory(c *fiber.Ctx) error {
	return h.history(c, c.Params("id"))
}

func (h *Handler) GetAllHistory(c *fiber.Ctx) error {
	limit, responseError := h.parseLimit(c)
	if responseError.Code != "" {
		return c.JSON(responseError)
	}

	games, err := h.historyService.GetAllHistory(c.UserContext(), limit)
	if err != nil {
		return err
	}

	return c.JSON(h.success(c, constants.HistoryRetrieved, newHistoryResponse(games)))
}

func (h *Handler) balance(c *fiber.Ctx, userID string) error {
	start := time.Now()

	ub, err := h.userBalanceService.GetBalance(c.UserContext(), userID)
	if err != nil {
		return err
	}

	h.logger.Debug("User balance retrieved",
		zap.String("user_id", userID),
		zap.Int64("balance", ub.Balance),
		zap.Duration("duration", time.Since(start)),
	)

	return c.JSON(h.success(c, constants.BalanceRetrieved, BalanceResponse{UserID: ub.UserID, Balance: ub.Balance}))
}

func (h *Handler) history(c *fiber.Ctx, userID string) error {
	limit, responseError := h.parseLimit(c)
	if responseError.Code != "" {
		return c.JSON(responseError)
	}

	games, err := h.historyService.GetHistory(c.UserContext(), service.HistoryQuery{UserID: userID, Limit: limit})
	if err != nil {
		return err
	}

	return c.JSON(h.success(c, constants.HistoryRetrieved, newHistoryResponse(games)))
}

// parseLimit reads ?limit. A missing or non-positive limit means unbounded.
func (h *Handler) parseLimit(c *fiber.Ctx) (int, contract.Response) {
	var req HistoryRequest
	if err := c.QueryParser(&req); err != nil {
		h.metrics.RecordValidationError("limit", "int")
		c.Status(constants.GetHTTPStatus(constants.ErrCodeValidationFailed))
		return 0, contract.Response{
			Code:    constants.ErrCodeValidationFailed,
			Message: constants.GetErrorMessage(constants.ErrCodeValidationFailed),
		}
	}

	return req.Limit, contract.Response{}
}

func (h *Handler) success(c *fiber.Ctx, message string, result any) contract.Response {
	return contract.Response{
		Successful: true,
		Code:       constants.ResponseCodeSuccess,
		Message:    message,
		TrackID:    c.GetRespHeader(fiber.HeaderXRequestID),
		Result:     result,
	}
}
