package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lumeboard/lumeboard/app/controllers"
	"github.com/lumeboard/lumeboard/app/repository"
	"github.com/lumeboard/lumeboard/internal/pkg/cache"
	"github.com/lumeboard/lumeboard/internal/pkg/chainverify"
	"github.com/lumeboard/lumeboard/internal/pkg/database"
	"github.com/lumeboard/lumeboard/internal/pkg/entitlement"
	"github.com/lumeboard/lumeboard/internal/pkg/env"
	"github.com/lumeboard/lumeboard/internal/pkg/jobqueue"
	"github.com/lumeboard/lumeboard/internal/pkg/notify"
	"github.com/lumeboard/lumeboard/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	// Core services
	engine := entitlement.NewEngineFromEnv(repos)
	verifier := chainverify.NewVerifierFromEnv()
	dispatcher := notify.NewDispatcherFromEnv(repos.Notification)

	// Background delivery: the durable queue when Redis is up, otherwise
	// the backlog sweeper
	switch dispatcher.Mode() {
	case notify.ModeQueue:
		jobqueue.GetManager().Start()
	case notify.ModeDirect:
		notify.NewSweeper(dispatcher, notify.DefaultSweepInterval).Start()
	}

	controllers.InitializeControllers(repos, engine, verifier, dispatcher)

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "LumeBoard",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
