// internal/repository/campaign_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/saintgrid/bulkmail-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	RecordBatchResult(campaignID string, batchNumber, attempt int, res model.BatchResult) error
	RecordDeadJob(campaignID string, batchNumber, attempts, recipientCount int, lastError string) error
	GetStats(campaignID string) (*model.CampaignStats, error)
}

// CampaignRepository persists campaign bookkeeping: the accepted request,
// per-batch results reported by workers, and jobs that exhausted their
// retries. Relay credentials never reach these tables.
type CampaignRepository struct {
	DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Status == "" {
		c.Status = "queued"
	}
	query := `
        INSERT INTO campaigns (id, subject, from_address, recipient_count, batch_count, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.Exec(query, c.ID, c.Subject, c.FromAddress, c.RecipientCount, c.BatchCount, c.Status, c.CreatedAt)
	return err
}

// GetByID returns nil, nil when the campaign does not exist.
func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := `
        SELECT id, subject, from_address, recipient_count, batch_count, status, created_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID,
		&c.Subject,
		&c.FromAddress,
		&c.RecipientCount,
		&c.BatchCount,
		&c.Status,
		&c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) RecordBatchResult(campaignID string, batchNumber, attempt int, res model.BatchResult) error {
	query := `
        INSERT INTO batch_results (campaign_id, batch_number, attempt, success_count, fail_count, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, campaignID, batchNumber, attempt, res.SuccessCount, res.FailCount, time.Now())
	return err
}

func (r *CampaignRepository) RecordDeadJob(campaignID string, batchNumber, attempts, recipientCount int, lastError string) error {
	query := `
        INSERT INTO dead_jobs (campaign_id, batch_number, attempts, recipient_count, last_error, died_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, campaignID, batchNumber, attempts, recipientCount, lastError, time.Now())
	return err
}

func (r *CampaignRepository) GetStats(campaignID string) (*model.CampaignStats, error) {
	stats := &model.CampaignStats{}

	query := `
        SELECT COUNT(*), COALESCE(SUM(success_count), 0), COALESCE(SUM(fail_count), 0)
        FROM batch_results
        WHERE campaign_id=$1
    `
	err := r.DB.QueryRow(query, campaignID).Scan(&stats.CompletedBatches, &stats.SuccessCount, &stats.FailCount)
	if err != nil {
		return nil, err
	}

	query = `SELECT COUNT(*) FROM dead_jobs WHERE campaign_id=$1`
	if err := r.DB.QueryRow(query, campaignID).Scan(&stats.DeadBatches); err != nil {
		return nil, err
	}

	return stats, nil
}
