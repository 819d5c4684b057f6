// Package respond writes the single JSON envelope every endpoint uses:
// {"success": bool, "message": string, "data"/"errors": ...}.
package respond

import "github.com/gofiber/fiber/v2"

// Envelope is the uniform response body.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusOK, message, data)
}

// Created writes a 201 success envelope.
func Created(c *fiber.Ctx, message string, data any) error {
	return JSON(c, fiber.StatusCreated, message, data)
}

// JSON writes a success envelope with an explicit status code.
func JSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope. Used by the server error handler only;
// handlers signal failures by returning errors.
func Fail(c *fiber.Ctx, status int, message string, fields map[string]string) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: message, Errors: fields})
}
