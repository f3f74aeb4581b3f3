package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"fundo/auth"
)

const principalKey = "principal"

// authenticate resolves the session token from the auth_token cookie or
// the Authorization header into a principal on the request context.
func (s *Server) authenticate(c *fiber.Ctx) error {
	token := c.Cookies("auth_token")
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
	}
	if token == "" {
		return unauthorized(c, "missing session token")
	}

	principal, err := s.deps.Issuer.Verify(token)
	if err != nil {
		return unauthorized(c, "invalid or expired session")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// principal returns the authenticated identity set by the middleware
func principal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}

// requireLevel guards a route group with a minimum access level
func (s *Server) requireLevel(min int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal(c)
		if p == nil {
			return unauthorized(c, "missing session token")
		}
		if p.RoleLevel < min {
			return forbidden(c, "insufficient access level")
		}
		return c.Next()
	}
}

// requireCronSecret authenticates the batch entry point. A mismatch is
// rejected before any work happens and leaves no audit trace.
func (s *Server) requireCronSecret(c *fiber.Ctx) error {
	provided := c.Get("X-Cron-Secret")
	if provided == "" ||
		subtle.ConstantTimeCompare([]byte(provided), []byte(s.deps.CronSecret)) != 1 {
		log.WithField("ip", c.IP()).Warn("Earnings batch called with bad secret")
		return forbidden(c, "invalid cron secret")
	}
	return c.Next()
}
