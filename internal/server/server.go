package server

import (
	"errors"
	"log"
	"time"

	"backend-ripple/internal/auth"
	"backend-ripple/internal/config"
	"backend-ripple/internal/db"
	"backend-ripple/internal/imagehost"
	"backend-ripple/internal/post"
	"backend-ripple/internal/ratelimit"
	"backend-ripple/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Credential endpoints share one fixed window per client.
const (
	credentialLimit  = 10
	credentialWindow = time.Minute
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     db.Querier
	Redis  *redis.Client
	Images *imagehost.Client
}

func NewServer(cfg config.Config, querier db.Querier, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	images, err := imagehost.New(cfg)
	if err != nil {
		log.Printf("image host unavailable: %v", err)
		images = &imagehost.Client{}
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     querier,
		Redis:  redisClient,
		Images: images,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.Cfg.JWTTTL, s.DB)
	guard := auth.Protect(authSvc)
	limiter := ratelimit.New(s.Redis, credentialLimit, credentialWindow).Middleware()

	users := s.App.Group("/api/users")
	auth.RegisterRoutes(users, authSvc, limiter)
	user.RegisterRoutes(users, user.NewService(s.DB, s.Images), guard)

	posts := s.App.Group("/api/posts")
	post.RegisterRoutes(posts, post.NewService(s.DB, s.Images), guard)
}

// errorHandler renders every handler failure as {"error": message} with the
// status the handler chose.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
