// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/saintgrid/bulkmail-backend/internal/config"
	"github.com/saintgrid/bulkmail-backend/internal/db"
	"github.com/saintgrid/bulkmail-backend/internal/handler"
	"github.com/saintgrid/bulkmail-backend/internal/mailer"
	"github.com/saintgrid/bulkmail-backend/internal/queue"
	"github.com/saintgrid/bulkmail-backend/internal/repository"
	"github.com/saintgrid/bulkmail-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// The broker must be reachable before we accept any campaign; a down
	// queue is a startup failure, not a per-request one.
	q, err := queue.Connect(cfg.AMQPURL, queue.Options{
		Name:        cfg.QueueName,
		MaxAttempts: cfg.MaxAttempts,
		BackoffBase: time.Duration(cfg.BackoffBaseMillis) * time.Millisecond,
	})
	if err != nil {
		log.Fatal("Failed to connect to queue:", err)
	}
	defer q.Close()

	campaignRepo := &repository.CampaignRepository{DB: conn}

	campaignService := &service.CampaignService{
		Queue:     q,
		Mailer:    mailer.NewSMTPSender(),
		Repo:      campaignRepo,
		BatchSize: cfg.BatchSize,
	}

	campaignHandler := &handler.CampaignHandler{
		Service: campaignService,
		Repo:    campaignRepo,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns/send", campaignHandler.SendCampaign)
	r.Post("/campaigns/send-rows", campaignHandler.SendCampaignRows)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaign)

	log.Println("Server running on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
