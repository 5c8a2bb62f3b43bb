package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/memberenv/internal/fixtures"
)

// ErrUnavailable may be wrapped by a Fixtures implementation that cannot
// serve requests right now; the server answers 503 for it.
var ErrUnavailable = errors.New("fixtures unavailable")

// Handler handles fixture requests
type Handler struct {
	fixtures Fixtures
}

// NewHandler creates a new Handler instance
func NewHandler(f Fixtures) *Handler {
	return &Handler{fixtures: f}
}

// Health reports that the server is up
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

// Reset purges all fixture tables
func (h *Handler) Reset(c *fiber.Ctx) error {
	if err := h.fixtures.Reset(c.UserContext()); err != nil {
		return respondWithFailure(c, ErrMsgResetFailed, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SeedMember creates a member with a local password credential
func (h *Handler) SeedMember(c *fiber.Ctx) error {
	var req SeedMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, ErrMsgInvalidReqBody, err)
	}
	if err := req.Validate(); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	member, err := h.fixtures.SeedMember(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, fixtures.ErrDuplicate) {
			return respondWithError(c, fiber.StatusConflict, ErrMsgMemberExists, err)
		}
		return respondWithFailure(c, ErrMsgSeedFailed, err)
	}
	return c.Status(fiber.StatusCreated).JSON(SeedResponse{ID: member.ID})
}

// SeedTemporaryMember creates a pending registration
func (h *Handler) SeedTemporaryMember(c *fiber.Ctx) error {
	var req SeedTempMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, ErrMsgInvalidReqBody, err)
	}
	if err := req.Validate(); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	temp, err := h.fixtures.SeedTemporaryMember(c.UserContext(), req.Code, req.Nickname, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, fixtures.ErrDuplicate) {
			return respondWithError(c, fiber.StatusConflict, ErrMsgTempMemberExists, err)
		}
		return respondWithFailure(c, ErrMsgSeedFailed, err)
	}
	return c.Status(fiber.StatusCreated).JSON(SeedResponse{ID: temp.ID})
}

// respondWithFailure answers 503 when the environment cannot serve requests
// and 500 with msg otherwise
func respondWithFailure(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, ErrUnavailable) {
		return respondWithError(c, fiber.StatusServiceUnavailable, ErrMsgEnvironmentClosed, err)
	}
	return respondWithError(c, fiber.StatusInternalServerError, msg, err)
}

func respondWithError(c *fiber.Ctx, status int, msg string, err error) error {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	return c.Status(status).JSON(resp)
}
