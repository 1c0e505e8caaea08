package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/authz"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	resultKey       = "authz_result"
)

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// authorize runs the pipeline and stores the result for the handler. A
// rejection aborts with a bare status code; the cause is only logged.
func authorize(p *authz.Pipeline, l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, rej := p.Authorize(c.Request.Context(), c.GetHeader(common.AuthorizationHeaderName))
		if rej != nil {
			l.Warn(c.Request.Context(), "request rejected",
				"request_id", c.GetString(requestIDKey),
				"stage", string(rej.Stage),
				"kind", rej.Kind.String(),
				"user_id", rej.UserID,
				"error", rej.Err,
			)
			c.AbortWithStatus(rejectionStatus(rej.Kind))
			return
		}
		c.Set(resultKey, res)
		c.Next()
	}
}

func rejectionStatus(k authz.Kind) int {
	switch k {
	case authz.Unauthenticated:
		return http.StatusUnauthorized
	case authz.Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func authResult(c *gin.Context) *authz.Result {
	v, ok := c.Get(resultKey)
	if !ok {
		return nil
	}
	res, _ := v.(*authz.Result)
	return res
}
