package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"support-intake-go/internal/logger"
)

const sendTimeout = 30 * time.Second

// Queue delivers notifications on a background worker, detached from the
// request that produced them.
type Queue struct {
	sender Sender
	jobs   chan Notification
	log    *logger.Logger

	sent     atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
	dropped  atomic.Int64
	inFlight atomic.Int64
}

func NewQueue(sender Sender, size int, log *logger.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		sender: sender,
		jobs:   make(chan Notification, size),
		log:    log.Component("notify"),
	}
}

// Enqueue hands n to the worker without blocking. It returns false and logs
// when the queue is full.
func (q *Queue) Enqueue(n Notification) bool {
	q.inFlight.Add(1)
	select {
	case q.jobs <- n:
		return true
	default:
		q.inFlight.Add(-1)
		q.dropped.Add(1)
		q.log.WithField("schedule_id", scheduleID(n)).Warn("notification queue full, dropping email")
		return false
	}
}

// Run delivers queued notifications until ctx is cancelled, then drains
// whatever is still buffered.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case n := <-q.jobs:
			q.deliver(ctx, n)
		case <-ctx.Done():
			q.drain()
			return nil
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case n := <-q.jobs:
			q.deliver(context.Background(), n)
		default:
			return
		}
	}
}

func (q *Queue) deliver(ctx context.Context, n Notification) {
	defer q.inFlight.Add(-1)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	log := q.log.WithField("schedule_id", scheduleID(n)).WithField("subject", n.Subject)
	err := q.sender.Send(ctx, n)
	switch {
	case err == nil:
		q.sent.Add(1)
		log.Info("email sent")
	case errors.Is(err, ErrNotConfigured):
		q.skipped.Add(1)
		log.Warn("mail transport not configured, email skipped")
	default:
		q.failed.Add(1)
		log.WithField("error", err.Error()).Error("error sending email")
	}
}

// Stats is a snapshot of delivery counters.
type Stats struct {
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Skipped int64 `json:"skipped"`
	Dropped int64 `json:"dropped"`
	Pending int64 `json:"pending"`
}

func (q *Queue) Stats() Stats {
	return Stats{
		Sent:    q.sent.Load(),
		Failed:  q.failed.Load(),
		Skipped: q.skipped.Load(),
		Dropped: q.dropped.Load(),
		Pending: q.inFlight.Load(),
	}
}

func scheduleID(n Notification) string {
	if n.Schedule == nil {
		return ""
	}
	return n.Schedule.ID
}
