package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	school "github.com/goliatone/go-school"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// requestContext assigns request and correlation IDs, exposes them on the
// response and on the user context seen by resolvers.
func requestContext(logger school.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := strings.TrimSpace(c.Get(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		correlationID := strings.TrimSpace(c.Get(HeaderCorrelationID))
		if correlationID == "" {
			correlationID = requestID
		}

		ctx := school.ContextWithRequestID(c.UserContext(), requestID)
		ctx = school.ContextWithCorrelationID(ctx, correlationID)
		c.SetUserContext(ctx)

		c.Set(HeaderRequestID, requestID)
		c.Set(HeaderCorrelationID, correlationID)

		start := time.Now()
		err := c.Next()

		school.LoggerFromContext(ctx, logger).Debug("%s %s %d %s", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
