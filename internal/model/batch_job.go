// internal/model/batch_job.go
package model

// BatchJob is the queue wire payload: one bounded slice of recipients plus
// everything needed to send to them. Attempt counts batch-level delivery
// attempts and is bumped by the queue on redelivery, never by the worker.
type BatchJob struct {
	CampaignID   string      `json:"campaignId"`
	BatchNumber  int         `json:"batchNumber"`
	Recipients   []Recipient `json:"recipients"`
	HTMLTemplate string      `json:"htmlTemplate"`
	SMTP         SMTPConfig  `json:"smtpSettings"`
	Subject      string      `json:"subject"`
	From         string      `json:"from"`
	DelaySeconds int         `json:"delaySeconds"`
	Attempt      int         `json:"attempt"`
}

// BatchResult is the only externally observable outcome of a completed
// batch. Per-recipient failures inside it are terminal; they never feed
// back into queue-level retry.
type BatchResult struct {
	SuccessCount int `json:"successCount"`
	FailCount    int `json:"failCount"`
}
