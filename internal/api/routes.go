package api

import (
	"github.com/gofiber/fiber/v2"
)

// Route paths
const (
	HealthPath      = "/health"
	ResetPath       = "/reset"
	MembersPath     = "/members"
	TempMembersPath = "/temp-members"
)

// DefaultBaseURL is the address the fixture server listens on by default
const DefaultBaseURL = "http://localhost:8089"

// RegisterRoutes configures the fixture routes on app
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get(HealthPath, h.Health).Name("health")
	app.Post(ResetPath, h.Reset).Name("reset")
	app.Post(MembersPath, h.SeedMember).Name("seedMember")
	app.Post(TempMembersPath, h.SeedTemporaryMember).Name("seedTempMember")
}
