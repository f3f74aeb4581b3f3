package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"fundo/models"
)

// ownCotistaID resolves the caller's investor account or fails the request
func ownCotistaID(c *fiber.Ctx) (int64, error) {
	p := principal(c)
	if p.CotistaID == nil {
		return 0, forbidden(c, "no investor account")
	}
	return *p.CotistaID, nil
}

func boxDTO(b *models.BoxWithBalance) fiber.Map {
	var goal *string
	if b.Box.GoalValue != nil {
		g := b.Box.GoalValue.StringFixed(2)
		goal = &g
	}
	return fiber.Map{
		"id":        b.Box.ID,
		"name":      b.Box.Name,
		"goalValue": goal,
		"balance":   b.CurrentBalance.StringFixed(2),
		"createdAt": b.Box.CreatedAt,
	}
}

func (s *Server) handleListBoxes(c *fiber.Ctx) error {
	cotistaID, err := ownCotistaID(c)
	if err != nil {
		return err
	}

	boxes, err := s.deps.Savings.ListBoxes(c.Context(), cotistaID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, boxDTO(b))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

type createBoxRequest struct {
	Name      string           `json:"name"`
	GoalValue *decimal.Decimal `json:"goalValue"`
}

func (s *Server) handleCreateBox(c *fiber.Ctx) error {
	cotistaID, err := ownCotistaID(c)
	if err != nil {
		return err
	}

	var req createBoxRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}

	box, err := s.deps.Savings.CreateBox(c.Context(), cotistaID, req.Name, req.GoalValue)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(boxDTO(&models.BoxWithBalance{
		Box:            *box,
		CurrentBalance: decimal.Zero,
		HasSnapshot:    true,
	}))
}

type boxMoveRequest struct {
	BoxID  int64           `json:"boxId"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleBoxDeposit(c *fiber.Ctx) error {
	return s.handleBoxMove(c, s.deps.Savings.Deposit)
}

func (s *Server) handleBoxWithdraw(c *fiber.Ctx) error {
	return s.handleBoxMove(c, s.deps.Savings.Withdraw)
}

func (s *Server) handleBoxMove(c *fiber.Ctx, move func(ctx context.Context, cotistaID, boxID int64, amount decimal.Decimal) (decimal.Decimal, error)) error {
	cotistaID, err := ownCotistaID(c)
	if err != nil {
		return err
	}

	var req boxMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}

	balance, err := move(c.Context(), cotistaID, req.BoxID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"boxId":   req.BoxID,
		"balance": balance.StringFixed(2),
	})
}

func (s *Server) handleDeactivateBox(c *fiber.Ctx) error {
	cotistaID, err := ownCotistaID(c)
	if err != nil {
		return err
	}

	boxID, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid box id")
	}

	if err := s.deps.Savings.DeactivateBox(c.Context(), cotistaID, boxID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": boxID, "active": false})
}

func (s *Server) handleProcessEarnings(c *fiber.Ctx) error {
	result, err := s.deps.Earnings.ProcessEarnings(c.Context(), time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":     false,
			"count":       0,
			"rateApplied": 0,
			"message":     "earnings batch failed",
		})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
