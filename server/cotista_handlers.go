package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"fundo/auth"
	"fundo/models"
)

// canAccessCotista allows managers and up to see any account, everyone
// else only their own.
func canAccessCotista(p *auth.Principal, cotistaID int64) bool {
	if p.RoleLevel >= models.LevelManager {
		return true
	}
	return p.CotistaID != nil && *p.CotistaID == cotistaID
}

func cotistaDTO(c *models.Cotista) fiber.Map {
	return fiber.Map{
		"id":            c.ID,
		"userId":        c.UserID,
		"accountNumber": c.AccountNumber,
		"ownerName":     c.OwnerName,
		"createdAt":     c.CreatedAt,
	}
}

func (s *Server) handleListCotistas(c *fiber.Ctx) error {
	cotistas, err := s.deps.Cotistas.ListCotistas(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(cotistas))
	for _, cot := range cotistas {
		out = append(out, cotistaDTO(cot))
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) handleGetCotista(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid cotista id")
	}
	if !canAccessCotista(principal(c), id) {
		return forbidden(c, "not your account")
	}

	cotista, err := s.deps.Cotistas.GetCotista(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(cotistaDTO(cotista))
}

func (s *Server) handleCotistaSummary(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid cotista id")
	}
	if !canAccessCotista(principal(c), id) {
		return forbidden(c, "not your account")
	}

	summary, err := s.deps.Cotistas.Summary(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleRequestDeposit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid cotista id")
	}
	if !canAccessCotista(principal(c), id) {
		return forbidden(c, "not your account")
	}

	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed request body")
	}

	deposit, err := s.deps.Deposits.RequestDeposit(c.Context(), id, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          deposit.ID,
		"txid":        deposit.TxID,
		"payload":     deposit.Payload,
		"amount":      deposit.RequestedAmount.StringFixed(2),
		"status":      deposit.Status,
		"requestedAt": deposit.RequestedAt,
	})
}

func (s *Server) handleListDeposits(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "invalid cotista id")
	}
	if !canAccessCotista(principal(c), id) {
		return forbidden(c, "not your account")
	}

	deposits, err := s.deps.Deposits.ListDeposits(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, fiber.Map{
			"id":          d.ID,
			"txid":        d.TxID,
			"amount":      d.RequestedAmount.StringFixed(2),
			"status":      d.Status,
			"requestedAt": d.RequestedAt,
		})
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

func (s *Server) handleStatement(c *fiber.Ctx) error {
	p := principal(c)

	from, err := parseDateQuery(c, "from")
	if err != nil {
		return badRequest(c, "invalid from date, expected YYYY-MM-DD")
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return badRequest(c, "invalid to date, expected YYYY-MM-DD")
	}
	if to != nil {
		// Make the end date inclusive: movements up to the end of that day
		end := to.Add(24 * time.Hour)
		to = &end
	}

	statement, err := s.deps.Cotistas.Statement(c.Context(), p.UserID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(statement)
}

func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
