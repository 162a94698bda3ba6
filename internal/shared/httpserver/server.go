package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/shared/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	app *fiber.App
}

var log = logger.GetLogger()

// RouteRegistrar lets each bounded context mount its own routes.
type RouteRegistrar interface {
	RegisterRoutes(router fiber.Router)
}

func NewServer() *Server {
	app := fiber.New(fiber.Config{
		AppName:      "numismaticMarket",
		BodyLimit:    12 * 1024 * 1024, // two base64 coin photos
		ErrorHandler: errorHandler,
	})

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("remote_addr", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	return &Server{app: app}
}

// App exposes the underlying fiber app, mainly for websocket routes and tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Mount registers every registrar under prefix.
func (s *Server) Mount(prefix string, registrars ...RouteRegistrar) {
	group := s.app.Group(prefix)
	for _, r := range registrars {
		r.RegisterRoutes(group)
	}
}

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("HTTP server started", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error("Unhandled request error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
