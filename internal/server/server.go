package server

import (
	"log"

	"councellorx-be/internal/bootstrap"
	"councellorx-be/internal/config"
	"councellorx-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Audio uploads are capped at 25MB by the transcription route; the body limit
// leaves room for the multipart envelope.
const bodyLimit = 26 * 1024 * 1024

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	// Stateless case analysis: /api/analyze, /api/process, /api/transcribe
	c.AnalysisController.RegisterRoutes(api)

	v1 := api.Group("/v1")
	c.AuthController.RegisterRoutes(v1)
	c.OAuthController.RegisterRoutes(v1)
	c.UserController.RegisterRoutes(v1)

	c.ChatController.RegisterRoutes(v1)
	c.IntakeController.RegisterRoutes(v1)

	c.FeedHandler.RegisterRoutes(v1)
}
