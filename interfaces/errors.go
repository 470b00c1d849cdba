package interfaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"career-coach/domain"
)

// respondError maps a service error onto a status code and JSON body.
func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	var (
		verr   *domain.ValidationError
		capErr *domain.CapabilityError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid session ID"})
	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "interview record not found"})
	case errors.Is(err, domain.ErrSlotConflict), errors.Is(err, domain.ErrInterviewComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &capErr):
		h.log.WithError(err).Warn("capability failure surfaced to client")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// RequestLogger logs one line per request through logrus.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := timeNow()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  timeNow().Sub(start).String(),
			"clientIP": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}
