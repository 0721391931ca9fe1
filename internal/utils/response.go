package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// APIResponse describes the common structure for API responses. Every
// endpoint reports its outcome through this envelope; errors never cross
// the handler boundary as bare exceptions.
type APIResponse struct {
	Success   bool        `json:"success"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Route     string      `json:"route,omitempty"`
	TimeStamp time.Time   `json:"timeStamp"`
}

// Send writes the envelope with an explicit success flag and status code.
// A success=false payload with a 2xx status is valid and marks a benign
// "nothing found" outcome rather than a transport failure.
func Send(c *fiber.Ctx, status int, success bool, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	if message == "" {
		if success {
			message = "success"
		} else {
			message = "error"
		}
	}

	return c.Status(status).JSON(APIResponse{
		Success:   success,
		Status:    status,
		Message:   message,
		Data:      data,
		Route:     c.Path(),
		TimeStamp: time.Now().UTC(),
	})
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return Send(c, fiber.StatusOK, true, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	return Send(c, status, true, message, data)
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return Send(c, status, false, message, nil)
}
