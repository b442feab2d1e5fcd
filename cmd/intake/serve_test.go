package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"support-intake-go/internal/logger"
	"support-intake-go/internal/notify"
)

type countingSender struct{ sent atomic.Int64 }

func (c *countingSender) Send(context.Context, notify.Notification) error {
	c.sent.Add(1)
	return nil
}

// fakeServer blocks in ListenAndServe until Shutdown, and runs onShutdown
// the way an in-flight request would complete during the grace period.
type fakeServer struct {
	closed     chan struct{}
	onShutdown func()
	listenErr  error
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.closed
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.onShutdown != nil {
		f.onShutdown()
	}
	close(f.closed)
	return nil
}

func TestServeUntilDone_DeliversNotificationsFromDrainingRequests(t *testing.T) {
	sender := &countingSender{}
	q := notify.NewQueue(sender, 4, logger.Discard())
	srv := &fakeServer{
		closed: make(chan struct{}),
		onShutdown: func() {
			q.Enqueue(notify.Notification{Subject: "Callback Scheduled"})
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, q, logger.Discard().Entry) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serveUntilDone: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilDone did not return")
	}
	if got := sender.sent.Load(); got != 1 {
		t.Fatalf("sent = %d, want 1", got)
	}
}

func TestServeUntilDone_ListenError(t *testing.T) {
	q := notify.NewQueue(&countingSender{}, 1, logger.Discard())
	boom := errors.New("address already in use")
	srv := &fakeServer{closed: make(chan struct{}), listenErr: boom}

	err := serveUntilDone(context.Background(), srv, q, logger.Discard().Entry)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
