package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/dto"
	"github.com/noah-isme/libris-api/internal/service"
	"github.com/noah-isme/libris-api/internal/utils"
)

// UserHandler exposes profile views and visibility updates.
type UserHandler struct {
	service   service.UserService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc service.UserService, validate *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service:   svc,
		validator: validate,
		logger:    logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires profile routes. The :id profile route accepts anonymous
// requests; the projection decides what they see.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Patch("/me/visibility", h.updateVisibility)
	router.Get("/:id/profile", h.profile)
}

func (h *UserHandler) profile(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	var requester *service.Actor
	if actor := actorFromContext(c); actor.Authenticated {
		requester = &actor
	}

	result := h.service.ViewProfile(c.UserContext(), requester, id)
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	result := h.service.ViewOwnProfile(c.UserContext(), actorFromContext(c))
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *UserHandler) updateVisibility(c *fiber.Ctx) error {
	var req dto.VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result := h.service.UpdateVisibility(c.UserContext(), actorFromContext(c), req.ProfileVisibility)
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}
