package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/config"
	"github.com/vmeirelles/taskboard/internal/database"
	"github.com/vmeirelles/taskboard/internal/handler"
	"github.com/vmeirelles/taskboard/internal/middleware"
	"github.com/vmeirelles/taskboard/internal/queue"
	"github.com/vmeirelles/taskboard/internal/repository"
	"github.com/vmeirelles/taskboard/internal/router"
	"github.com/vmeirelles/taskboard/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)
	archives := repository.NewArchiveRepo(db)
	audits := repository.NewAuditRepo(db)
	reminders := repository.NewReminderRepo(db)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	// Audit events go to RabbitMQ only when a broker is configured; the
	// database trail works either way.
	var publish middleware.PublishFunc
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		publish = service.PublishAuditRecorded
	}
	auditor := middleware.NewAuditor(audits, publish)

	if cfg.AuditConsumerEnabled {
		go func() {
			if err := queue.StartAuditConsumer(); err != nil {
				log.Printf("audit consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users),
		Users:        handler.NewUserHandler(users),
		Tasks:        handler.NewTaskHandler(tasks, archives, users),
		Audit:        handler.NewAuditHandler(audits),
		Reminders:    handler.NewReminderHandler(reminders),
		TokenAuth:    middleware.TokenAuth(cfg.JWTSecret, users),
		Auditor:      auditor,
		RateLimiter:  middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb),
		ArchiveCache: middleware.NewResponseCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBPath)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
