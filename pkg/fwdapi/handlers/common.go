package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

func respond(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    data,
		Meta: &types.MetaInfo{
			Count:     count,
			Timestamp: time.Now(),
		},
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, types.Response{
		Success: false,
		Error: &types.ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

func notReady(c *gin.Context, what string) {
	fail(c, http.StatusServiceUnavailable, "NOT_READY", what+" not available")
}

// intQuery reads a positive integer parameter clamped to max
func intQuery(c *gin.Context, name string, def, max int) int {
	n, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || n < 1 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}

func boolQuery(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
