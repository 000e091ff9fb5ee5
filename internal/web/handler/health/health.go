// Package health serves the liveness endpoint used by load balancers.
package health

import (
	"errors"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
)

const (
	// Path is the path to the liveness endpoint.
	Path = "/checkalive"
)

// Service is the liveness handler service.
type Service struct {
	alive *atomic.Bool
}

// Handler is the liveness handler.
var Handler = Service{}

// Init initializes the liveness handler. alive is flipped to false during
// graceful shutdown so reverse proxies drain this instance.
func (s *Service) Init(app *fiber.App, alive *atomic.Bool) error {
	if app == nil || alive == nil {
		return errors.New("app or alive is nil")
	}

	s.alive = alive

	app.Get(Path, s.Get)

	return nil
}

// Get reports liveness.
func (s *Service) Get(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
