package api

import (
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/fitloop/plancoach/internal/config"
	"github.com/fitloop/plancoach/internal/planner"
	"github.com/fitloop/plancoach/internal/store"
	"github.com/fitloop/plancoach/pkg/database"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	db       *database.Clients
	producer sarama.SyncProducer
	planner  *planner.Service
	profiles *store.ProfileStore
	plans    *store.PlanStore
	logger   *slog.Logger
}

func NewServer(cfg *config.Config, db *database.Clients, producer sarama.SyncProducer) (*Server, error) {
	log := slog.Default()

	client, err := planner.NewOpenAIClient(cfg.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}
	catalog := store.NewCatalogStore(db.DB, db.Redis, cfg.Planner.CatalogCacheTTL, log)

	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:      app,
		cfg:      cfg,
		db:       db,
		producer: producer,
		planner:  planner.NewService(client, catalog, cfg.Planner, log),
		profiles: store.NewProfileStore(db.DB),
		plans:    store.NewPlanStore(db.DB),
		logger:   log,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Public routes
	api.Post("/login", s.handleLogin)

	// Protected routes. Auth failures return 400 with an error body, the
	// same contract the clients expect for every other failure.
	protected := api.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(s.cfg.JWT.Secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing or invalid authorization token",
			})
		},
	}))
	protected.Get("/profile", s.handleGetProfile)
	protected.Post("/profile", s.handleUpsertProfile)
	protected.Post("/plans/generate", s.handleGeneratePlan)
	protected.Post("/plans", s.handleSavePlan)
	protected.Get("/plans", s.handleListPlans)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

// currentUserID returns the authenticated caller's user ID from the JWT
// claims, or "" when the request carries no usable identity.
func currentUserID(c *fiber.Ctx) string {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
