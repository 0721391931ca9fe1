package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/middleware"
	"github.com/noah-isme/libris-api/internal/service"
	"github.com/noah-isme/libris-api/internal/utils"
)

// ActivityHandler serves the audit trail listing and the live feed
// websocket upgrade.
type ActivityHandler struct {
	service service.ActivityService
	stream  service.ActivityStream
	logger  zerolog.Logger
}

// NewActivityHandler constructs an activity handler. The stream may be
// nil when no live feed is wired.
func NewActivityHandler(svc service.ActivityService, stream service.ActivityStream, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: svc,
		stream:  stream,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register binds activity routes under the provided router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)

	if h.stream == nil {
		return
	}

	router.Use("/feed", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/feed", websocket.New(h.handleFeed))
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	result := h.service.List(c.UserContext(), queryMap(c))
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *ActivityHandler) handleFeed(conn *websocket.Conn) {
	userID := fmt.Sprint(conn.Locals("user_id"))
	if strings.TrimSpace(userID) == "" || userID == "<nil>" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	role := fmt.Sprint(conn.Locals("user_role"))
	correlation := fmt.Sprint(conn.Locals("correlation_id"))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	h.stream.ServeConnection(conn, service.FeedConnectionOptions{
		UserID:        userID,
		Role:          role,
		CorrelationID: correlation,
		Context:       baseCtx,
	})
}
