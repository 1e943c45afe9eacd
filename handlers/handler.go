package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/boost-jp/ops_backend/utils"
	"github.com/gin-gonic/gin"
)

// respondError maps model-layer errors onto HTTP statuses. Anything not
// recognized is treated as a caller mistake, not a server fault; real server
// faults are returned explicitly by the handlers that hit them.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorMonthClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
