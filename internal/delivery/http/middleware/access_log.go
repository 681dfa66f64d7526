package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/logger"
)

const CtxRequestIDKey = "request_id"

type AccessLogMiddleware struct {
	logger *logrus.Logger
}

func NewAccessLogMiddleware(l *logrus.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.OrDefault(l)}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		entry := m.logger.WithFields(logrus.Fields{
			"rid":        rid,
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     status,
			"latency":    time.Since(start).String(),
			"resp_bytes": len(c.Response().Body()),
			"ua":         c.Get("User-Agent"),
		})
		if status >= 500 {
			entry.Warn("HTTP access")
		} else {
			entry.Info("HTTP access")
		}

		return err
	}
}
