package service

import "github.com/gofiber/fiber/v2"

// Result is the uniform service-layer outcome. Services never return raw
// errors to handlers; every operation resolves to a Result carrying the
// transport status, a human-readable message and optional data. Success
// may be false with an OK status for benign empty outcomes.
type Result struct {
	Success bool
	Status  int
	Message string
	Data    interface{}
}

// OKResult reports a successful operation.
func OKResult(message string, data interface{}) Result {
	return Result{Success: true, Status: fiber.StatusOK, Message: message, Data: data}
}

// CreatedResult reports a successful create.
func CreatedResult(message string, data interface{}) Result {
	return Result{Success: true, Status: fiber.StatusCreated, Message: message, Data: data}
}

// EmptyResult marks the benign "nothing found / nothing happened" outcome:
// not a failure, but distinguishable from success.
func EmptyResult(message string, data interface{}) Result {
	return Result{Success: false, Status: fiber.StatusOK, Message: message, Data: data}
}

// NotFoundResult reports a missing entity.
func NotFoundResult(message string) Result {
	return Result{Success: false, Status: fiber.StatusNotFound, Message: message}
}

// ForbiddenResult reports a privacy or permission rejection.
func ForbiddenResult(message string) Result {
	return Result{Success: false, Status: fiber.StatusForbidden, Message: message}
}

// BadRequestResult reports caller-supplied data failing shape rules.
func BadRequestResult(message string) Result {
	return Result{Success: false, Status: fiber.StatusBadRequest, Message: message}
}

// ConflictResult reports a duplicate-key violation naming the conflict.
func ConflictResult(message string) Result {
	return Result{Success: false, Status: fiber.StatusBadRequest, Message: message}
}

// InternalResult reports an unexpected dependency failure.
func InternalResult(message string) Result {
	if message == "" {
		message = "internal server error"
	}
	return Result{Success: false, Status: fiber.StatusInternalServerError, Message: message}
}
