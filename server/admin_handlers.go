package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"fundo/models"
	"fundo/service"
)

// userDTO strips credentials from the user model before it leaves the API
func userDTO(u *models.User) fiber.Map {
	return fiber.Map{
		"id":        u.ID,
		"cpf":       u.CPF,
		"name":      u.Name,
		"surname":   u.Surname,
		"email":     u.Email,
		"phone":     u.Phone,
		"roleId":    u.RoleID,
		"roleName":  u.RoleName,
		"roleLevel": u.RoleLevel,
		"cotistaId": u.CotistaID,
		"active":    u.Active,
		"createdAt": u.CreatedAt,
	}
}

func paramID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users, err := s.deps.Users.ListUsers(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, userDTO(u))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var input service.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}

	user, err := s.deps.Users.CreateUser(c.Context(), *principal(c), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(userDTO(user))
}

func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var input service.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "malformed request body")
	}

	user, err := s.deps.Users.UpdateUser(c.Context(), *principal(c), id, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(userDTO(user))
}

type statusRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetUserStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}

	if err := s.deps.Users.SetUserStatus(c.Context(), id, req.Active); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id, "active": req.Active})
}

func (s *Server) handleListRoles(c *fiber.Ctx) error {
	roles, err := s.deps.Users.ListRoles(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(roles))
	for _, r := range roles {
		out = append(out, fiber.Map{"id": r.ID, "name": r.Name, "level": r.Level})
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) handleConfirmDeposit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid deposit id")
	}

	if err := s.deps.Deposits.ConfirmDeposit(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id, "status": models.DepositStatusConfirmed})
}

func (s *Server) handleCancelDeposit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid deposit id")
	}

	if err := s.deps.Deposits.CancelDeposit(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": id, "status": models.DepositStatusCanceled})
}
