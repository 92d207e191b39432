package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saintgrid/bulkmail-backend/internal/apperrors"
	"github.com/saintgrid/bulkmail-backend/internal/model"
	"github.com/saintgrid/bulkmail-backend/internal/service"
)

// Mock queue collecting published jobs
type MockQueue struct {
	jobs       []model.BatchJob
	publishErr error
}

func (q *MockQueue) Publish(job model.BatchJob) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type MockVerifier struct {
	err   error
	calls int
}

func (v *MockVerifier) Verify(cfg model.SMTPConfig) error {
	v.calls++
	return v.err
}

type MockCampaignStore struct {
	created []*model.Campaign
}

func (s *MockCampaignStore) Create(c *model.Campaign) error {
	s.created = append(s.created, c)
	return nil
}

func campaignRequest(n int) model.CampaignRequest {
	req := model.CampaignRequest{
		HTMLTemplate: "Hi {{name}}",
		SMTP:         model.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"},
		Subject:      "Hello",
		From:         "sender@example.com",
		DelaySeconds: 1,
	}
	for i := 0; i < n; i++ {
		req.Recipients = append(req.Recipients, model.Recipient{
			Email: fmt.Sprintf("user%d@example.com", i),
		})
	}
	return req
}

func TestStartQueuesAllBatches(t *testing.T) {
	q := &MockQueue{}
	store := &MockCampaignStore{}
	svc := &service.CampaignService{
		Queue:     q,
		Mailer:    &MockVerifier{},
		Repo:      store,
		BatchSize: 50,
	}

	result, err := svc.Start(campaignRequest(120))
	require.NoError(t, err)

	assert.Equal(t, 120, result.Recipients)
	assert.Equal(t, 3, result.Batches)
	assert.NotEmpty(t, result.CampaignID)

	require.Len(t, q.jobs, 3)
	assert.Len(t, q.jobs[0].Recipients, 50)
	assert.Len(t, q.jobs[1].Recipients, 50)
	assert.Len(t, q.jobs[2].Recipients, 20)

	for i, job := range q.jobs {
		assert.Equal(t, result.CampaignID, job.CampaignID)
		assert.Equal(t, i+1, job.BatchNumber)
		assert.Equal(t, 0, job.Attempt)
		assert.Equal(t, "Hi {{name}}", job.HTMLTemplate)
		assert.Equal(t, "smtp.example.com", job.SMTP.Host)
		assert.Equal(t, 1, job.DelaySeconds)
	}

	require.Len(t, store.created, 1)
	assert.Equal(t, 120, store.created[0].RecipientCount)
	assert.Equal(t, 3, store.created[0].BatchCount)
	assert.Equal(t, "queued", store.created[0].Status)
}

func TestStartFailsFastOnHandshake(t *testing.T) {
	q := &MockQueue{}
	store := &MockCampaignStore{}
	svc := &service.CampaignService{
		Queue:  q,
		Mailer: &MockVerifier{err: errors.New("535 authentication failed")},
		Repo:   store,
	}

	_, err := svc.Start(campaignRequest(10))

	var unreachable *apperrors.ErrSMTPUnreachable
	require.ErrorAs(t, err, &unreachable)
	assert.Empty(t, q.jobs, "no batch may be enqueued after a failed handshake")
	assert.Empty(t, store.created)
}

func TestStartRejectsMissingTemplate(t *testing.T) {
	verifier := &MockVerifier{}
	svc := &service.CampaignService{Queue: &MockQueue{}, Mailer: verifier}

	req := campaignRequest(10)
	req.HTMLTemplate = "   "
	_, err := svc.Start(req)

	var missing *apperrors.ErrMissingData
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "htmlTemplate", missing.Field)
	assert.Zero(t, verifier.calls)
}

func TestStartRejectsNoRecipients(t *testing.T) {
	verifier := &MockVerifier{}
	svc := &service.CampaignService{Queue: &MockQueue{}, Mailer: verifier}

	_, err := svc.Start(campaignRequest(0))

	var missing *apperrors.ErrMissingData
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "recipients", missing.Field)
	assert.Zero(t, verifier.calls)
}

func TestStartDefaultsBatchSize(t *testing.T) {
	q := &MockQueue{}
	svc := &service.CampaignService{Queue: q, Mailer: &MockVerifier{}}

	result, err := svc.Start(campaignRequest(60))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Batches)
	require.Len(t, q.jobs, 2)
	assert.Len(t, q.jobs[0].Recipients, 50)
	assert.Len(t, q.jobs[1].Recipients, 10)
}

func TestStartPropagatesPublishError(t *testing.T) {
	q := &MockQueue{publishErr: errors.New("channel closed")}
	svc := &service.CampaignService{Queue: q, Mailer: &MockVerifier{}}

	_, err := svc.Start(campaignRequest(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue batch 1")
}
