package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/staplewise/marketplace-backend/internal/logging"
	"github.com/staplewise/marketplace-backend/internal/model"
	"github.com/staplewise/marketplace-backend/internal/service"
	"go.uber.org/zap"
)

// Keys under which the auth middleware stores the caller on echo.Context.
const (
	ContextUserID = "uid"
	ContextRole   = "role"
)

func init() {
	// Prices and totals go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func actorFrom(c echo.Context) service.Actor {
	uid, _ := c.Get(ContextUserID).(string)
	role, _ := c.Get(ContextRole).(model.Role)
	return service.Actor{UserID: uid, Role: role}
}

func badJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
}

// writeError maps service errors onto HTTP responses.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", verr.Error()))
	case errors.Is(err, service.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("duplicate_email", err.Error()))
	case errors.Is(err, service.ErrInvalidAssignee):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_assignee", err.Error()))
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_token", err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("invalid_credentials", err.Error()))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "access denied"))
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrQueryNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrSellerNotFound),
		errors.Is(err, service.ErrBuyerNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", err.Error()))
	}
	logging.With(c.Request().Context(), log).Error("request failed",
		zap.String("route", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "internal server error"))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
