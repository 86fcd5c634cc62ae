package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sociograph/auth-service/internal/apperr"
	"github.com/sociograph/auth-service/internal/dto"
)

// respondSuccess writes the uniform success envelope.
func respondSuccess(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, dto.NewSuccess(statusCode, message, data))
}

// respondError maps an error onto the uniform failure envelope. Typed
// business errors keep their status and message; anything else is a 500
// with a generic message, logged with the real cause.
func respondError(c *gin.Context, err error) {
	if appErr := apperr.From(err); appErr != nil {
		c.JSON(appErr.Status, dto.NewError(appErr.Status, appErr.Message, appErr.Details))
		return
	}

	zap.L().Error("unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewError(http.StatusInternalServerError, "something went wrong", nil))
}

// respondBindingError reports a request that failed validation.
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewError(http.StatusBadRequest, "validation failed", err.Error()))
}
