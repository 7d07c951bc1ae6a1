package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-jobposting-collector/internal/config"
	"go-jobposting-collector/internal/database"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Configuration file path")
	migrate := flag.Bool("migrate", false, "Create the job_postings table when missing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set. Please check your .env file.")
	}

	fmt.Println("Attempting to connect to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database. Error: %v\n(Check your connection string, password, and network access)", err)
	}
	defer repo.Close()

	version, err := repo.Version(ctx)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if *migrate {
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Println("📦 job_postings table ready")
	}

	fmt.Println("✅ Successfully connected to the database!")
	fmt.Println("🚀 Database Version:", version)
}
