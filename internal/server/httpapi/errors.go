// Package httpapi exposes the server's REST surface over gin. Handlers stay
// thin: parse the request, call one service, map the error.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
)

// writeError translates service errors into HTTP responses. Unknown errors
// collapse to 500 without leaking internals.
func writeError(c *gin.Context, err error) {
	var qerr *common.QuotaExceededError
	if errors.As(err, &qerr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "storage quota exceeded",
			"used":      qerr.Used,
			"limit":     qerr.Limit,
			"requested": qerr.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, common.ErrQuotaExceeded):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "storage quota exceeded"})
	case errors.Is(err, common.ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only image and video uploads are supported"})
	case errors.Is(err, common.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, common.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "email not verified"})
	case errors.Is(err, common.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
