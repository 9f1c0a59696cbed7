package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gocomet/rider-roster/pkg/errors"
	"github.com/gocomet/rider-roster/pkg/logger"
)

// Recovery turns a panic into the generic 500 response and logs the stack
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error("Panic recovered during request processing",
			logger.String("panic", fmt.Sprint(recovered)),
			logger.String("path", c.Request.URL.Path),
			logger.String("request_id", GetRequestID(c)),
			logger.String("stack_trace", string(debug.Stack())),
		)
		abort(c, apperrors.Internal("Internal server error", fmt.Errorf("panic: %v", recovered)))
	})
}
