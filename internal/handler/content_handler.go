package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/libris-api/internal/service"
	"github.com/noah-isme/libris-api/internal/utils"
)

// ContentHandler serves public site copy by key. Writes go through the
// generic resource routes.
type ContentHandler struct {
	reader service.SiteContentReader
	logger zerolog.Logger
}

// NewContentHandler constructs a content handler.
func NewContentHandler(reader service.SiteContentReader, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		reader: reader,
		logger: logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register wires the keyed lookup route.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Get("/:key", h.getByKey)
}

func (h *ContentHandler) getByKey(c *fiber.Ctx) error {
	result := h.reader.GetByKey(c.UserContext(), c.Params("key"))
	return utils.Send(c, result.Status, result.Success, result.Message, result.Data)
}
