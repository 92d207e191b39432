// internal/model/campaign.go
package model

import "time"

// CampaignRequest is one user submission: a template, relay credentials
// and the normalized recipient list. It lives only for the duration of
// the enqueue call; the jobs it spawns carry everything the worker needs.
type CampaignRequest struct {
	HTMLTemplate string
	SMTP         SMTPConfig
	Subject      string
	From         string
	Recipients   []Recipient
	DelaySeconds int
}

// Campaign is the bookkeeping row recorded when a request is accepted.
// Deliberately credential-free.
type Campaign struct {
	ID             string    `db:"id" json:"id"`
	Subject        string    `db:"subject" json:"subject"`
	FromAddress    string    `db:"from_address" json:"from_address"`
	RecipientCount int       `db:"recipient_count" json:"recipient_count"`
	BatchCount     int       `db:"batch_count" json:"batch_count"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CampaignStats aggregates worker outcomes for one campaign.
type CampaignStats struct {
	CompletedBatches int `json:"completed_batches"`
	SuccessCount     int `json:"success_count"`
	FailCount        int `json:"fail_count"`
	DeadBatches      int `json:"dead_batches"`
}
