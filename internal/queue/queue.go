// internal/queue/queue.go
package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/streadway/amqp"

	"github.com/saintgrid/bulkmail-backend/internal/model"
)

// Options configures the dispatch queue.
type Options struct {
	// Name of the durable work queue. The retry and dead queues derive
	// their names from it.
	Name string
	// MaxAttempts bounds batch-level delivery attempts (default 3).
	MaxAttempts int
	// BackoffBase is the exponential backoff base delay (default 1s).
	BackoffBase time.Duration
	// OnDead is called after a job is parked in the dead queue, so the
	// caller can record it for operator inspection. Optional.
	OnDead func(job model.BatchJob, lastErr error)
}

// Handler processes one claimed batch job. Returning an error marks the
// whole attempt failed and hands the job back to the retry policy.
type Handler func(job model.BatchJob) (model.BatchResult, error)

// DispatchQueue is the durable mailbox between the enqueue path and the
// workers, backed by RabbitMQ. Construct it with Connect and close it
// explicitly; there is no package-level instance.
//
// Failed attempts are republished with attempt+1 into a TTL retry queue
// whose dead-letter target is the work queue, which yields the
// baseDelay * 2^attempt redelivery schedule without blocking a consumer.
// Jobs that exhaust MaxAttempts are parked in the dead queue, never
// silently dropped.
type DispatchQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	opts Options
}

// Connect dials the broker and declares the work, retry and dead queues.
func Connect(url string, opts Options) (*DispatchQueue, error) {
	opts = withDefaults(opts)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareQueues(ch, opts.Name); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &DispatchQueue{conn: conn, ch: ch, opts: opts}, nil
}

func withDefaults(opts Options) Options {
	if opts.Name == "" {
		opts.Name = "email_batches"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	return opts
}

func declareQueues(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	// Expired retries dead-letter straight back into the work queue.
	// RabbitMQ only expires messages at the queue head, so a job with a
	// longer backoff can hold up shorter ones queued behind it; at the
	// default 3-attempt schedule the added delay is bounded by one
	// backoff step.
	_, err := ch.QueueDeclare(retryName(name), true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": name,
	})
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", retryName(name), err)
	}
	if _, err := ch.QueueDeclare(deadName(name), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", deadName(name), err)
	}
	return nil
}

func retryName(name string) string { return name + ".retry" }
func deadName(name string) string  { return name + ".dead" }

// jobPublisher is the narrow publish capability dispatch works against,
// so the retry and dead-park branches are testable without a broker.
type jobPublisher interface {
	publishJob(queueName string, job model.BatchJob, expiration string) error
}

type channelPublisher struct {
	ch *amqp.Channel
}

func (p *channelPublisher) publishJob(queueName string, job model.BatchJob, expiration string) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal batch job: %w", err)
	}
	return p.ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Expiration:   expiration,
		Body:         body,
	})
}

// Publish enqueues one batch job. It returns once the broker has accepted
// the persistent message; delivery happens asynchronously.
func (q *DispatchQueue) Publish(job model.BatchJob) error {
	pub := &channelPublisher{ch: q.ch}
	return pub.publishJob(q.opts.Name, job, "")
}

// Consume claims jobs one at a time (prefetch 1) and feeds them to the
// handler. Each call opens its own channel, so callers can run several
// consumers on one connection. It always returns a non-nil error: either
// the setup failure or the closed delivery stream, so callers notice a
// dropped broker connection instead of running with zero consumers.
func (q *DispatchQueue) Consume(consumerName string, handler Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(q.opts.Name, consumerName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	return q.consumeLoop(&channelPublisher{ch: ch}, deliveries, handler)
}

func (q *DispatchQueue) consumeLoop(pub jobPublisher, deliveries <-chan amqp.Delivery, handler Handler) error {
	for d := range deliveries {
		q.dispatch(pub, d, handler)
	}
	return fmt.Errorf("delivery stream for %s closed", q.opts.Name)
}

func (q *DispatchQueue) dispatch(pub jobPublisher, d amqp.Delivery, handler Handler) {
	var job model.BatchJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Println("Dropping malformed job:", err)
		d.Ack(false)
		return
	}

	result, err := handler(job)
	if err == nil {
		log.Printf("Batch %d of campaign %s completed: %d sent, %d failed",
			job.BatchNumber, job.CampaignID, result.SuccessCount, result.FailCount)
		d.Ack(false)
		return
	}

	delay := q.backoffFor(job.Attempt)
	job.Attempt++
	if job.Attempt >= q.opts.MaxAttempts {
		log.Printf("Batch %d of campaign %s permanently failed after %d attempts: %v",
			job.BatchNumber, job.CampaignID, job.Attempt, err)
		if perr := pub.publishJob(deadName(q.opts.Name), job, ""); perr != nil {
			log.Println("Failed to park dead job:", perr)
			// Leave the delivery unacked so the broker redelivers it
			// rather than losing the job.
			d.Nack(false, true)
			return
		}
		if q.opts.OnDead != nil {
			q.opts.OnDead(job, err)
		}
		d.Ack(false)
		return
	}

	log.Printf("Batch %d of campaign %s failed (attempt %d/%d), retrying in %s: %v",
		job.BatchNumber, job.CampaignID, job.Attempt, q.opts.MaxAttempts, delay, err)
	expiration := strconv.FormatInt(delay.Milliseconds(), 10)
	if perr := pub.publishJob(retryName(q.opts.Name), job, expiration); perr != nil {
		log.Println("Failed to schedule retry:", perr)
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

// backoffFor returns the redelivery delay after the given attempt failed.
func (q *DispatchQueue) backoffFor(attempt int) time.Duration {
	const ceiling = 32 * time.Second
	delay := q.opts.BackoffBase * time.Duration(1<<uint(attempt))
	if delay > ceiling {
		delay = ceiling
	}
	return delay
}

func (q *DispatchQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
