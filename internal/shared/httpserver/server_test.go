package httpserver

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r fiber.Router) {
	r.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	r.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
}

func TestHealthAndMountedRoutes(t *testing.T) {
	s := NewServer()
	s.Mount("/api/v1", pingRoutes{})

	resp, err := s.App().Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}

	resp, err = s.App().Test(httptest.NewRequest("GET", "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("ping request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "pong" {
		t.Fatalf("expected pong, got %q", body)
	}
}

func TestErrorHandlerKeepsFiberStatus(t *testing.T) {
	s := NewServer()
	s.Mount("/api/v1", pingRoutes{})

	resp, err := s.App().Test(httptest.NewRequest("GET", "/api/v1/teapot", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Fatalf("expected 418, got %d", resp.StatusCode)
	}
}
