// internal/service/campaign_service.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saintgrid/bulkmail-backend/internal/apperrors"
	"github.com/saintgrid/bulkmail-backend/internal/batch"
	"github.com/saintgrid/bulkmail-backend/internal/model"
)

// Publisher is the enqueue half of the dispatch queue.
type Publisher interface {
	Publish(job model.BatchJob) error
}

// Verifier performs the relay handshake before anything is queued.
type Verifier interface {
	Verify(cfg model.SMTPConfig) error
}

// CampaignStore records the accepted campaign for later stats lookups.
type CampaignStore interface {
	Create(c *model.Campaign) error
}

// CampaignService runs the synchronous enqueue path: validate, verify the
// relay, partition, publish every batch, record the campaign. It responds
// before any batch is processed.
type CampaignService struct {
	Queue     Publisher
	Mailer    Verifier
	Repo      CampaignStore
	BatchSize int
}

type StartResult struct {
	CampaignID string
	Recipients int
	Batches    int
}

func (s *CampaignService) Start(req model.CampaignRequest) (*StartResult, error) {
	if strings.TrimSpace(req.HTMLTemplate) == "" {
		return nil, apperrors.NewMissingData("htmlTemplate")
	}
	if len(req.Recipients) == 0 {
		return nil, apperrors.NewMissingData("recipients")
	}

	// Fail the whole request before any batch exists if the relay is
	// unreachable or rejects the credentials.
	if err := s.Mailer.Verify(req.SMTP); err != nil {
		return nil, apperrors.NewSMTPUnreachable(err)
	}

	size := s.BatchSize
	if size <= 0 {
		size = batch.DefaultSize
	}
	batches, err := batch.Partition(req.Recipients, size)
	if err != nil {
		return nil, err
	}

	campaignID := uuid.NewString()

	if s.Repo != nil {
		campaign := &model.Campaign{
			ID:             campaignID,
			Subject:        req.Subject,
			FromAddress:    req.From,
			RecipientCount: len(req.Recipients),
			BatchCount:     len(batches),
			Status:         "queued",
			CreatedAt:      time.Now(),
		}
		if err := s.Repo.Create(campaign); err != nil {
			log.Println("Failed to record campaign:", err)
		}
	}

	for i, part := range batches {
		job := model.BatchJob{
			CampaignID:   campaignID,
			BatchNumber:  i + 1,
			Recipients:   part,
			HTMLTemplate: req.HTMLTemplate,
			SMTP:         req.SMTP,
			Subject:      req.Subject,
			From:         req.From,
			DelaySeconds: req.DelaySeconds,
			Attempt:      0,
		}
		if err := s.Queue.Publish(job); err != nil {
			return nil, fmt.Errorf("enqueue batch %d: %w", i+1, err)
		}
	}

	log.Printf("Campaign %s queued: %d recipients in %d batches", campaignID, len(req.Recipients), len(batches))

	return &StartResult{
		CampaignID: campaignID,
		Recipients: len(req.Recipients),
		Batches:    len(batches),
	}, nil
}
