// cmd/migrate/main.go
package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/saintgrid/bulkmail-backend/internal/config"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
        id UUID PRIMARY KEY,
        subject TEXT NOT NULL,
        from_address TEXT NOT NULL,
        recipient_count INT NOT NULL,
        batch_count INT NOT NULL,
        status TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS batch_results (
        id SERIAL PRIMARY KEY,
        campaign_id UUID NOT NULL,
        batch_number INT NOT NULL,
        attempt INT NOT NULL,
        success_count INT NOT NULL,
        fail_count INT NOT NULL,
        completed_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_batch_results_campaign ON batch_results (campaign_id)`,
	`CREATE TABLE IF NOT EXISTS dead_jobs (
        id SERIAL PRIMARY KEY,
        campaign_id UUID NOT NULL,
        batch_number INT NOT NULL,
        attempts INT NOT NULL,
        recipient_count INT NOT NULL,
        last_error TEXT NOT NULL,
        died_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_dead_jobs_campaign ON dead_jobs (campaign_id)`,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	for i, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			log.Fatalf("failed to execute statement %d: %v", i+1, err)
		}
	}

	fmt.Println("Database migration completed successfully!")
}
