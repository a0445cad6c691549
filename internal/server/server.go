package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/jaditi930/Sketchify/internal/auth"
	"github.com/jaditi930/Sketchify/internal/cache"
	"github.com/jaditi930/Sketchify/internal/config"
	"github.com/jaditi930/Sketchify/internal/handler"
	"github.com/jaditi930/Sketchify/internal/session"
	"github.com/jaditi930/Sketchify/internal/store"
)

// Server wires the Fiber app, handlers, and the session manager.
type Server struct {
	app               *fiber.App
	cfg               *config.Config
	db                *gorm.DB
	manager           *session.Manager
	socketHandler     *handler.SocketHandler
	authHandler       *handler.AuthHandler
	whiteboardHandler *handler.WhiteboardHandler
	healthHandler     *handler.HealthHandler
	jwtManager        *auth.JWTManager
}

// New builds the server. db may be nil with the in-memory store (auth
// and metadata routes then return 503); redisClient may be nil.
func New(cfg *config.Config, db *gorm.DB, st store.Store, redisClient *cache.RedisClient) *Server {
	app := fiber.New(fiber.Config{
		AppName:         "Sketchify",
		ServerHeader:    "Fiber",
		StrictRouting:   true,
		CaseSensitive:   true,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		Prefork:         false, // incompatible with websockets
		ReadBufferSize:  16384,
		WriteBufferSize: 16384,
		BodyLimit:       10 * 1024 * 1024,
	})

	jwtManager := auth.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	manager := session.NewManager(st)

	return &Server{
		app:               app,
		cfg:               cfg,
		db:                db,
		manager:           manager,
		socketHandler:     handler.NewSocketHandler(manager, db, redisClient, cfg.WebSocket.WriteTimeout),
		authHandler:       handler.NewAuthHandler(db, jwtManager, cfg.Auth.SecureCookie),
		whiteboardHandler: handler.NewWhiteboardHandler(st, db, manager),
		healthHandler:     handler.NewHealthHandler(db, redisClient),
		jwtManager:        jwtManager,
	}
}

// Manager exposes the session registry, mainly for tests.
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// SetupMiddleware installs the global middleware chain.
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     s.cfg.CORS.AllowHeaders,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
}

// SetupRoutes registers REST routes and the websocket endpoint.
func (s *Server) SetupRoutes() {
	s.app.Get("/health", s.healthHandler.Check)

	// brute force protection on credential endpoints
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})

	requireDB := func(c *fiber.Ctx) error {
		if s.db == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "accounts are unavailable without a database",
			})
		}
		return c.Next()
	}

	authGroup := s.app.Group("/api/auth", requireDB)
	authGroup.Post("/register", authLimiter, s.authHandler.Register)
	authGroup.Post("/login", authLimiter, s.authHandler.Login)
	authGroup.Get("/me", auth.AuthMiddleware(s.jwtManager), s.authHandler.Me)

	wbGroup := s.app.Group("/api/whiteboards", requireDB, auth.AuthMiddleware(s.jwtManager))
	wbGroup.Get("/", s.whiteboardHandler.List)
	wbGroup.Post("/", s.whiteboardHandler.Create)
	wbGroup.Post("/:roomId/invite", s.whiteboardHandler.Invite)
	wbGroup.Get("/:roomId", s.whiteboardHandler.Get)
	wbGroup.Put("/:roomId", s.whiteboardHandler.Update)
	wbGroup.Delete("/:roomId/collaborators/:collaboratorId", s.whiteboardHandler.RemoveCollaborator)
	wbGroup.Delete("/:roomId", s.whiteboardHandler.Delete)

	// websocket upgrade; auth is optional so guests can join public rooms
	s.app.Use("/ws", auth.OptionalAuthMiddleware(s.jwtManager), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	s.app.Get("/ws", websocket.New(s.socketHandler.HandleConnection, websocket.Config{
		ReadBufferSize:  s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: s.cfg.WebSocket.WriteBufferSize,
	}))
}

// Start runs the server with graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Fatalf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Sketchify starting on %s", s.cfg.Server.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost%s/ws", s.cfg.Server.Port)

	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
