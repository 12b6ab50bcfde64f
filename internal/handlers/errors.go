package handlers

import (
	"log"

	"groupbuy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service failure onto an HTTP status and a JSON body
// carrying the machine-readable code the UIs branch on.
func respondError(c *fiber.Ctx, err error) error {
	de := services.AsDomainError(err)
	if de == nil {
		log.Printf("Unexpected error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}

	status := fiber.StatusBadRequest
	switch de.Code {
	case services.CodeNotFound, services.CodeRoundNotFound:
		status = fiber.StatusNotFound
	case services.CodeTerminalState, services.CodeSequenceViolation,
		services.CodeConcurrencyConflict, services.CodeNoProofSubmitted:
		status = fiber.StatusConflict
	case services.CodeStorageUnavailable:
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"code":    de.Code,
		"message": de.Message,
	})
}
