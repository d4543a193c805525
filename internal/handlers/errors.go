package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/contractor_ledger/internal/apperrors"
	"github.com/SscSPs/contractor_ledger/internal/dto"
	"github.com/SscSPs/contractor_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes err with the status and kind of its ledger error.
// Internal failures are logged in full but reported with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, action string, err error) {
	status := apperrors.HTTPStatus(err)
	kind := apperrors.Kind(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: "Failed to " + action, Kind: kind})
		return
	}
	logger.Warn("Rejected "+action, slog.String("kind", kind), slog.String("error", err.Error()))
	c.JSON(status, dto.ErrorResponse{Error: err.Error(), Kind: kind})
}

func respondBindError(c *gin.Context, logger *slog.Logger, what string, err error) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid " + what + ": " + err.Error(),
		Kind:  apperrors.Kind(apperrors.ErrValidation),
	})
}

// requireUserID returns the staff user ID set by the auth middleware.
func requireUserID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Kind: apperrors.Kind(apperrors.ErrUnauthorized)})
		return "", false
	}
	return userID, true
}
