// Command main runs one counter reconcile sweep and exits.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"nourish/internal/config"
	"nourish/internal/database"
	"nourish/internal/middleware"
	"nourish/internal/observability"
	"nourish/internal/repository"
	"nourish/internal/service"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Upper bound for the sweep")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Getenv("LOG_LEVEL"))
	observability.SetLogger(middleware.Logger)
	repository.SetStoreTimeout(cfg.StoreTimeout())

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := service.NewReconcileService(
		repository.NewGraphRepository(db),
		repository.NewCommentRepository(db),
	).Run(ctx)
	if err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}
	log.Printf("followers_count repaired for %d users, reply_count repaired for %d comments",
		len(report.FollowersRepaired), len(report.RepliesRepaired))
}
