package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"syntra-pos/internal/apperr"
	"syntra-pos/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// writeError answers with the status of the error's kind. Internal details
// are logged, never returned.
func writeError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	status := appErr.HTTPStatusCode()

	message := appErr.Message
	if appErr.Kind == apperr.KindInternal {
		logger.FromContext(c.Request.Context(), nil).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "Internal server error"
	}

	_ = c.Error(err)
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
		Error:   string(appErr.Code),
	})
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid "+name))
		return 0, false
	}
	return id, true
}
