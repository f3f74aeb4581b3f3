// Package server exposes the application over HTTP.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	log "github.com/sirupsen/logrus"

	"fundo/auth"
	"fundo/models"
	"fundo/service"
)

// Deps carries everything the HTTP layer needs
type Deps struct {
	Auth     service.AuthService
	Users    service.UserService
	Cotistas service.CotistaService
	Deposits service.DepositService
	Savings  service.SavingsService
	Earnings service.EarningsService

	Issuer          *auth.TokenIssuer
	CronSecret      string
	LoginRatePerMin int
}

// Server is the fiber application with all routes registered
type Server struct {
	app          *fiber.App
	deps         Deps
	loginLimiter *loginLimiter
}

// New creates the HTTP server and registers all routes
func New(deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "fundo",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool { return true },
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Cron-Secret",
	}))

	s := &Server{
		app:          app,
		deps:         deps,
		loginLimiter: newLoginLimiter(deps.LoginRatePerMin),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Post("/auth/login", s.handleLogin)

	// Cron entry point: authenticated by the shared secret header, not by
	// a session. Registered outside the session-guarded group.
	api.Post("/savings/boxes/process-earnings", s.requireCronSecret, s.handleProcessEarnings)

	authed := api.Group("", s.authenticate)
	authed.Get("/auth/me", s.handleMe)

	admin := authed.Group("/admin", s.requireLevel(models.LevelAdmin))
	admin.Get("/users", s.handleListUsers)
	admin.Post("/users", s.handleCreateUser)
	admin.Put("/users/:id", s.handleUpdateUser)
	admin.Put("/users/:id/status", s.handleSetUserStatus)
	admin.Get("/roles", s.handleListRoles)
	admin.Put("/deposits/:id/confirm", s.handleConfirmDeposit)
	admin.Put("/deposits/:id/cancel", s.handleCancelDeposit)

	cotistas := authed.Group("/cotistas", s.requireLevel(models.LevelCotista))
	cotistas.Get("/", s.requireLevel(models.LevelManager), s.handleListCotistas)
	cotistas.Get("/:id", s.handleGetCotista)
	cotistas.Get("/:id/summary", s.handleCotistaSummary)
	cotistas.Get("/:id/deposits", s.handleListDeposits)
	cotistas.Post("/:id/deposits", s.handleRequestDeposit)

	authed.Get("/statement", s.requireLevel(models.LevelCotista), s.handleStatement)

	savings := authed.Group("/savings", s.requireLevel(models.LevelCotista))
	savings.Get("/boxes", s.handleListBoxes)
	savings.Post("/boxes", s.handleCreateBox)
	savings.Post("/boxes/deposit", s.handleBoxDeposit)
	savings.Post("/boxes/withdraw", s.handleBoxWithdraw)
	savings.Delete("/boxes/:id", s.handleDeactivateBox)
}

// Listen starts serving on the given port
func (s *Server) Listen(port string) error {
	log.WithField("port", port).Info("HTTP server listening")
	return s.app.Listen(":" + port)
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber application for tests
func (s *Server) App() *fiber.App {
	return s.app
}
