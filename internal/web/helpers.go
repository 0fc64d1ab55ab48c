package web

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wardrobeassistant/wardrobe/internal/apperrors"
)

// parseID extracts the :id path parameter. Catalog ids are UUIDs, so anything
// else is rejected before it reaches the store.
func parseID(c *gin.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "Invalid id")
	}
	return id.String(), nil
}

// respondWithError writes a consistent JSON error response. AppErrors carry
// their own status, code and message; anything else is logged and reported
// as a generic persistence failure.
func (s *Server) respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	if appErr.Internal != nil {
		s.logger.Error("request failed",
			zap.String("code", appErr.Code),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(appErr.Internal),
		)
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *zap.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", zap.String("label", label), zap.Error(err))
	}
}

func badRequest(message string) error {
	return apperrors.WithMessage(apperrors.ErrValidation, message)
}
