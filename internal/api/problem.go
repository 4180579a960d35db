package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	perrors "github.com/p-blackswan/designstore/internal/errors"
)

// ProblemDetail follows RFC 7807 for error responses.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// problemResponse returns an RFC 7807 Problem Detail error response.
func problemResponse(c *fiber.Ctx, status int, errType, detail string) error {
	err := c.Status(status).JSON(ProblemDetail{
		Type:     errType,
		Title:    titleFor(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	})
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return err
}

// storeError maps a design store error to a problem response.
// Storage faults are logged and reported without their detail.
func (h *Handlers) storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, perrors.ErrInvalidIdentifier):
		return problemResponse(c, fiber.StatusBadRequest, "invalid_identifier", err.Error())
	case errors.Is(err, perrors.ErrInvalidInput):
		return problemResponse(c, fiber.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, perrors.ErrArchitectureNotFound):
		return problemResponse(c, fiber.StatusNotFound, "architecture_not_found", err.Error())
	case errors.Is(err, perrors.ErrModuleNotFound):
		return problemResponse(c, fiber.StatusNotFound, "module_not_found", err.Error())
	}

	h.logger.Error().
		Err(err).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Msg("design store failure")
	return problemResponse(c, fiber.StatusInternalServerError, "storage_error", "An internal error occurred")
}

func titleFor(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "Error"
}
