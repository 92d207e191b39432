// cmd/worker/main.go
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/saintgrid/bulkmail-backend/internal/config"
	"github.com/saintgrid/bulkmail-backend/internal/db"
	"github.com/saintgrid/bulkmail-backend/internal/mailer"
	"github.com/saintgrid/bulkmail-backend/internal/model"
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

	campaignRepo := &repository.CampaignRepository{DB: conn}

	q, err := queue.Connect(cfg.AMQPURL, queue.Options{
		Name:        cfg.QueueName,
		MaxAttempts: cfg.MaxAttempts,
		BackoffBase: time.Duration(cfg.BackoffBaseMillis) * time.Millisecond,
		OnDead: func(job model.BatchJob, lastErr error) {
			err := campaignRepo.RecordDeadJob(job.CampaignID, job.BatchNumber, job.Attempt, len(job.Recipients), lastErr.Error())
			if err != nil {
				log.Println("Failed to record dead job:", err)
			}
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to queue:", err)
	}
	defer q.Close()

	batchWorker := service.NewBatchWorker(mailer.NewSMTPSender())

	handle := func(job model.BatchJob) (model.BatchResult, error) {
		result, err := batchWorker.Process(job)
		if err != nil {
			return result, err
		}
		if rerr := campaignRepo.RecordBatchResult(job.CampaignID, job.BatchNumber, job.Attempt, result); rerr != nil {
			// Bookkeeping only; the batch itself is done.
			log.Println("Failed to record batch result:", rerr)
		}
		return result, nil
	}

	for i := 1; i <= cfg.WorkerConcurrency; i++ {
		name := fmt.Sprintf("batch-worker-%d", i)
		go func(name string) {
			if err := q.Consume(name, handle); err != nil {
				log.Fatalf("Consumer %s stopped: %v", name, err)
			}
		}(name)
	}

	log.Printf("Worker running with %d consumer(s), waiting for batches...", cfg.WorkerConcurrency)
	forever := make(chan bool)
	<-forever
}
