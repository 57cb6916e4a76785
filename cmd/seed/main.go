// Command main runs the database seeder for Nourish.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"nourish/internal/config"
	"nourish/internal/database"
	"nourish/internal/middleware"
	"nourish/internal/observability"
	"nourish/internal/seed"

	jsoniter "github.com/json-iterator/go"
)

func main() {
	planPath := flag.String("plan", "", "YAML seed plan (defaults are used when empty)")
	noClean := flag.Bool("no-clean", false, "Keep existing data instead of clearing it first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env, os.Getenv("LOG_LEVEL"))
	observability.SetLogger(middleware.Logger)

	plan := seed.DefaultPlan()
	if *planPath != "" {
		if plan, err = seed.LoadPlan(*planPath); err != nil {
			log.Fatalf("Failed to load plan: %v", err)
		}
	}
	if *noClean {
		plan.Clean = false
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.NewSeeder(db, plan, 0).Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	out := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(sum); err != nil {
		log.Fatalf("Failed to print summary: %v", err)
	}
	log.Printf("All seeded accounts use the password: %s", plan.Password)
}
