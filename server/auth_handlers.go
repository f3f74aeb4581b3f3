package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}
	if req.CPF == "" || req.Password == "" {
		return badRequest(c, "cpf and password are required")
	}

	if !s.loginLimiter.allow(c.IP() + ":" + req.CPF) {
		return errorJSON(c, fiber.StatusTooManyRequests, "too many login attempts, slow down")
	}

	result, err := s.deps.Auth.Login(c.Context(), req.CPF, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    result.Token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(fiber.StatusOK).JSON(result)
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	p := principal(c)

	user, err := s.deps.Auth.Profile(c.Context(), p.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(userDTO(user))
}
