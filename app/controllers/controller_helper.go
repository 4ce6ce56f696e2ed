package controllers

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/lumeboard/lumeboard/app/repository"
	"github.com/lumeboard/lumeboard/internal/pkg/chainverify"
	"github.com/lumeboard/lumeboard/internal/pkg/entitlement"
	"github.com/lumeboard/lumeboard/internal/pkg/notify"
)

// Shared controller dependencies, wired once by the router during startup
var (
	repos      *repository.Repositories
	engine     *entitlement.Engine
	verifier   *chainverify.Verifier
	dispatcher *notify.Dispatcher

	initOnce sync.Once
)

// InitializeControllers wires the controller package dependencies
func InitializeControllers(
	r *repository.Repositories,
	e *entitlement.Engine,
	v *chainverify.Verifier,
	d *notify.Dispatcher,
) {
	initOnce.Do(func() {
		repos = r
		engine = e
		verifier = v
		dispatcher = d
	})
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}
