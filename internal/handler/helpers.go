package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/middleware"
	"github.com/noah-isme/libris-api/internal/service"
)

func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals("user_id").(uint); ok && id > 0 {
		actor.ID = id
		actor.Authenticated = true
	}
	if role, ok := c.Locals("user_role").(string); ok {
		actor.Role = strings.ToLower(strings.TrimSpace(role))
	}
	if username, ok := c.Locals("username").(string); ok {
		actor.Username = strings.TrimSpace(username)
	}
	return actor
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	raw := strings.TrimSpace(c.Params("id"))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(parsed), nil
}

// parseIDList splits a comma-separated ids query value, dropping blanks
// and rejecting non-numeric entries.
func parseIDList(raw string) ([]uint, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parsed, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil || parsed == 0 {
			return nil, fiber.ErrBadRequest
		}
		ids = append(ids, uint(parsed))
	}
	return ids, nil
}

// queryMap flattens the request's query string into the filter map the
// list pipeline consumes.
func queryMap(c *fiber.Ctx) map[string]string {
	raw := map[string]string{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		raw[string(key)] = string(value)
	})
	return raw
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
