// Package api exposes fixture operations over HTTP so end-to-end suites that
// are not written in Go can reset the store and seed members.
package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/memberenv/internal/api/middleware"
	"github.com/celestiaorg/memberenv/internal/fixtures"
)

// Fixtures is the set of operations the server exposes
type Fixtures interface {
	Reset(ctx context.Context) error
	SeedMember(ctx context.Context, email, password string) (*fixtures.SeededMember, error)
	SeedTemporaryMember(ctx context.Context, code, nickname, email, password string) (*fixtures.SeededTempMember, error)
}

// NewApp creates the fiber app serving f
func NewApp(f Fixtures) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "memberenv",
		ErrorHandler:          errorHandler,
	})
	app.Use(middleware.Logger())
	RegisterRoutes(app, NewHandler(f))
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
