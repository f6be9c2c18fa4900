package app

import (
	"fmt"
	"net/http"
	"time"

	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// requestID tags the request context so every log line of the request
// carries request_id.
func requestID(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		ctx := logg.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestLogger(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := logg.WithFields(c.Request.Context(), map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			logg.Error(ctx, "http.request", err)
		case c.Writer.Status() >= http.StatusBadRequest:
			logg.Warn(ctx, "http.request")
		default:
			logg.Info(ctx, "http.request")
		}
	}
}

// recovery turns a panic into the standard 500 envelope.
func recovery(logg *logger.Logger, prod bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logg.Panic(c.Request.Context(), rec)
			body := H{"success": false, "message": "Internal server error"}
			if !prod {
				body["error"] = fmt.Sprint(rec)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
