package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"support-intake-go/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the notification worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log.WithField("service", "support-intake-go")
	log.WithField("backend", a.cfg.Storage.Backend).WithField("data_dir", a.cfg.Storage.DataDir).Info("starting service")

	handler := api.NewHandler(api.Deps{
		Processor:      a.proc,
		Log:            a.log,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		MaxUploadBytes: a.cfg.Server.MaxUploadMB << 20,
		Queue:          a.queue,
	})
	log.WithField("addr", a.cfg.Server.Addr).Info("listening")
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	if err := serveUntilDone(ctx, srv, a.queue, log); err != nil {
		log.WithField("error", err.Error()).Error("server terminated")
		return err
	}
	st := a.queue.Stats()
	log.WithField("emails_sent", st.Sent).WithField("emails_failed", st.Failed).Info("stopped")
	return nil
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type worker interface {
	Run(ctx context.Context) error
}

// serveUntilDone runs srv and w until ctx is cancelled or srv fails. The
// worker keeps its own context and is stopped only after Shutdown returns,
// so notifications enqueued by requests finishing during shutdown are still
// delivered by the final drain.
func serveUntilDone(ctx context.Context, srv httpServer, w worker, log *logrus.Entry) error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(workerCtx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopWorker()
		return err
	})
	return g.Wait()
}
