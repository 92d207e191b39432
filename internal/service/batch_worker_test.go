package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saintgrid/bulkmail-backend/internal/mailer"
	"github.com/saintgrid/bulkmail-backend/internal/model"
	"github.com/saintgrid/bulkmail-backend/internal/service"
)

// Mock SMTP session recording every send
type MockSession struct {
	sent   []sentMail
	failOn map[string]error
	closed bool
}

type sentMail struct {
	from, to, subject, html string
}

func (s *MockSession) Send(from, to, subject, html string) error {
	if err, ok := s.failOn[to]; ok {
		return err
	}
	s.sent = append(s.sent, sentMail{from: from, to: to, subject: subject, html: html})
	return nil
}

func (s *MockSession) Close() error {
	s.closed = true
	return nil
}

type MockMailer struct {
	session *MockSession
	openErr error
	opens   int
}

func (m *MockMailer) Verify(cfg model.SMTPConfig) error { return nil }

func (m *MockMailer) Open(cfg model.SMTPConfig) (mailer.Session, error) {
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.session, nil
}

func newWorker(m *MockMailer) (*service.BatchWorker, *[]time.Duration) {
	w := service.NewBatchWorker(m)
	pauses := &[]time.Duration{}
	w.Sleep = func(d time.Duration) { *pauses = append(*pauses, d) }
	return w, pauses
}

func batchOf(n int) model.BatchJob {
	job := model.BatchJob{
		CampaignID:   "c-1",
		BatchNumber:  1,
		HTMLTemplate: "Hi {{name}}, reach {{email}}",
		Subject:      "Hello",
		From:         "sender@example.com",
	}
	for i := 1; i <= n; i++ {
		job.Recipients = append(job.Recipients, model.Recipient{
			Email: fmt.Sprintf("user%d@example.com", i),
			Name:  fmt.Sprintf("User %d", i),
		})
	}
	return job
}

func TestProcessTalliesIsolatedFailures(t *testing.T) {
	// Recipient #4 has no email, recipient #7's send blows up; the other
	// eight go through and the batch still completes.
	job := batchOf(10)
	job.Recipients[3].Email = ""

	session := &MockSession{failOn: map[string]error{
		"user7@example.com": errors.New("transport error"),
	}}
	m := &MockMailer{session: session}
	w, _ := newWorker(m)

	result, err := w.Process(job)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{SuccessCount: 8, FailCount: 2}, result)

	assert.Equal(t, 1, m.opens, "one SMTP session per batch")
	assert.True(t, session.closed)
	assert.Len(t, session.sent, 8)
}

func TestProcessSkipsEmptyEmailWithoutSending(t *testing.T) {
	job := batchOf(1)
	job.Recipients[0].Email = ""

	session := &MockSession{}
	w, _ := newWorker(&MockMailer{session: session})

	result, err := w.Process(job)
	require.NoError(t, err)
	assert.Equal(t, model.BatchResult{SuccessCount: 0, FailCount: 1}, result)
	assert.Empty(t, session.sent, "empty email must never reach the sender")
}

func TestProcessRendersPerRecipient(t *testing.T) {
	job := batchOf(2)
	job.Recipients[1].Name = ""

	session := &MockSession{}
	w, _ := newWorker(&MockMailer{session: session})

	_, err := w.Process(job)
	require.NoError(t, err)
	require.Len(t, session.sent, 2)

	assert.Equal(t, "sender@example.com", session.sent[0].from)
	assert.Equal(t, "Hello", session.sent[0].subject)
	assert.Equal(t, "Hi User 1, reach user1@example.com", session.sent[0].html)
	assert.Equal(t, "Hi Valued Customer, reach user2@example.com", session.sent[1].html)
}

func TestProcessHandshakeFailureIsBatchFatal(t *testing.T) {
	m := &MockMailer{openErr: errors.New("dial tcp: connection refused")}
	w, _ := newWorker(m)

	result, err := w.Process(batchOf(3))
	require.Error(t, err)
	assert.Equal(t, model.BatchResult{}, result)
}

func TestProcessPacesBetweenSends(t *testing.T) {
	job := batchOf(3)
	job.DelaySeconds = 2
	// A mid-batch failure still paces.
	session := &MockSession{failOn: map[string]error{
		"user2@example.com": errors.New("transport error"),
	}}
	w, pauses := newWorker(&MockMailer{session: session})

	_, err := w.Process(job)
	require.NoError(t, err)

	// Two pauses for three sends: never after the last one.
	require.Len(t, *pauses, 2)
	assert.Equal(t, 2*time.Second, (*pauses)[0])
}

func TestProcessNoPacingWhenDelayZero(t *testing.T) {
	job := batchOf(3)
	w, pauses := newWorker(&MockMailer{session: &MockSession{}})

	_, err := w.Process(job)
	require.NoError(t, err)
	assert.Empty(t, *pauses)
}
