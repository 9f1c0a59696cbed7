package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gocomet/rider-roster/pkg/errors"
)

// BodyLimit caps the request body at limit bytes. Reads beyond the cap fail
// with *http.MaxBytesError, which the handlers report as 413.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abort(c, apperrors.PayloadTooLarge(&http.MaxBytesError{Limit: limit}))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// Timeout attaches a deadline to the request context. Store calls observe
// it; a request that overruns without having written a response gets 408.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			abort(c, apperrors.Timeout(ctx.Err()))
		}
	}
}

// AvailabilityChecker reports whether a rider store has been selected
type AvailabilityChecker interface {
	Available() bool
}

// Availability rejects requests with 503 until a store is selected
func Availability(checker AvailabilityChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checker.Available() {
			abort(c, apperrors.ErrStoreUnavailable)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.Status, appErr)
}
