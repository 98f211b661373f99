package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"media-notes/internal/api/errors"
	"media-notes/internal/api/middleware"
)

// accountID returns the caller set by the auth middleware, writing a 401
// when it is missing
func accountID(c *gin.Context) (int64, bool) {
	id, ok := middleware.AccountID(c)
	if !ok {
		middleware.HandleError(c, errors.NewUnauthorizedError("authentication required"))
		return 0, false
	}
	return id, true
}

// pathID parses the :id parameter, writing a 400 when it is not a positive integer
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid transcription ID"))
		return 0, false
	}
	return id, true
}
