// internal/service/batch_worker.go
package service

import (
	"fmt"
	"log"
	"time"

	"github.com/saintgrid/bulkmail-backend/internal/mailer"
	"github.com/saintgrid/bulkmail-backend/internal/model"
	"github.com/saintgrid/bulkmail-backend/internal/template"
)

// BatchWorker processes one claimed batch job at a time: one SMTP session
// for the whole batch, recipients strictly in order, each send isolated so
// a single failure never aborts the rest.
//
// Returning an error hands the job back to the queue's retry policy; the
// partial tally from that attempt is discarded and a retried batch is
// re-sent in full. Returning a result is terminal for the job even when
// every recipient failed.
type BatchWorker struct {
	Mailer mailer.Sender
	Sleep  func(d time.Duration)
}

func NewBatchWorker(m mailer.Sender) *BatchWorker {
	return &BatchWorker{
		Mailer: m,
		Sleep:  time.Sleep,
	}
}

func (w *BatchWorker) Process(job model.BatchJob) (model.BatchResult, error) {
	session, err := w.Mailer.Open(job.SMTP)
	if err != nil {
		// Batch-fatal: no recipient has been attempted yet.
		return model.BatchResult{}, fmt.Errorf("open smtp session for batch %d: %w", job.BatchNumber, err)
	}
	defer session.Close()

	var result model.BatchResult
	for i, r := range job.Recipients {
		if r.Email == "" {
			log.Printf("Invalid recipient data in batch %d: %+v", job.BatchNumber, r)
			result.FailCount++
			continue
		}

		log.Println("Preparing email for:", r.Email)
		html := template.Render(job.HTMLTemplate, r)

		if err := session.Send(job.From, r.Email, job.Subject, html); err != nil {
			log.Printf("Failed to send email to %s: %v", r.Email, err)
			result.FailCount++
		} else {
			log.Println("Email successfully sent to:", r.Email)
			result.SuccessCount++
		}

		// Pacing between sends, successful or not, to respect relay
		// rate limits.
		if job.DelaySeconds > 0 && i < len(job.Recipients)-1 {
			w.Sleep(time.Duration(job.DelaySeconds) * time.Second)
		}
	}

	log.Printf("Batch %d completed. Success: %d, Failures: %d", job.BatchNumber, result.SuccessCount, result.FailCount)
	return result, nil
}
