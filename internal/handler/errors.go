package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/logger"
	"home-valuation/internal/model"
)

// statusFor maps an evaluation error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}

	switch apperrors.ClassOf(apperrors.GetCode(err)) {
	case apperrors.ClassConfiguration:
		return http.StatusInternalServerError
	case apperrors.ClassTransientOracle:
		return http.StatusTooManyRequests
	case apperrors.ClassOracleProtocol, apperrors.ClassNormalization:
		return http.StatusBadGateway
	case apperrors.ClassCallerContract:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := model.ErrorResponse{
		Error: err.Error(),
		Code:  apperrors.GetCode(err),
		Field: apperrors.GetField(err),
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		resp.Code = "TIMEOUT"
		resp.Error = "evaluation timed out"
	case errors.Is(err, context.Canceled):
		resp.Code = "CANCELED"
	case status == http.StatusInternalServerError && resp.Code != apperrors.CodeConfigInvalid:
		resp.Error = "internal server error"
	}

	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.Int("status", status), slog.String("code", resp.Code), slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.Int("status", status), slog.String("code", resp.Code), slog.Any("error", err))
	}

	c.AbortWithStatusJSON(status, resp)
}
