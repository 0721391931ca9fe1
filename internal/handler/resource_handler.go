package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/service"
	"github.com/noah-isme/libris-api/internal/utils"
)

// ResourceHandler exposes the uniform CRUD surface for one resource type.
// Every route forwards the service result through the response envelope
// unchanged, so the success flag and HTTP status always come from the
// service layer.
type ResourceHandler[T models.Resource] struct {
	service  service.ResourceOperations[T]
	typeName string
	logger   zerolog.Logger
}

// NewResourceHandler constructs a handler for one resource type.
func NewResourceHandler[T models.Resource](svc service.ResourceOperations[T], typeName string, logger zerolog.Logger) *ResourceHandler[T] {
	return &ResourceHandler[T]{
		service:  svc,
		typeName: typeName,
		logger:   logger.With().Str("component", typeName+"_handler").Logger(),
	}
}

// Register wires the resource routes plus batch delete. Write guards are
// applied to the mutating routes only, reads stay open to the group's own
// middleware.
func (h *ResourceHandler[T]) Register(router fiber.Router, writeGuards ...fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.getByID)
	router.Post("", chain(writeGuards, h.create)...)
	router.Put("/:id", chain(writeGuards, h.updateByID)...)
	router.Delete("/:id", chain(writeGuards, h.deleteByID)...)
	router.Delete("", chain(writeGuards, h.deleteByList)...)
}

func chain(guards []fiber.Handler, final fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	handlers = append(handlers, final)
	return handlers
}

func (h *ResourceHandler[T]) list(c *fiber.Ctx) error {
	result := h.service.GetList(c.UserContext(), queryMap(c))
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *ResourceHandler[T]) getByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	result := h.service.GetByID(c.UserContext(), id)
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *ResourceHandler[T]) create(c *fiber.Ctx) error {
	entity := new(T)
	if err := c.BodyParser(entity); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result := h.service.Create(c.UserContext(), actorFromContext(c), entity)
	if !result.Success {
		requestLogger(h.logger, c).Warn().
			Int("status", result.Status).
			Msg("create rejected")
	}
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *ResourceHandler[T]) updateByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	entity := new(T)
	if err := c.BodyParser(entity); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result := h.service.UpdateByID(c.UserContext(), actorFromContext(c), id, entity)
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *ResourceHandler[T]) deleteByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid id")
	}

	result := h.service.DeleteByID(c.UserContext(), actorFromContext(c), id)
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}

func (h *ResourceHandler[T]) deleteByList(c *fiber.Ctx) error {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid ids")
	}
	if len(ids) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "no ids supplied")
	}

	result := h.service.DeleteByList(c.UserContext(), actorFromContext(c), ids)
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}
