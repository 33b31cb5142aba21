package alert

import (
	"context"
	"log/slog"
	"time"
)

// Notifier is the delivery side of an alert, satisfied by the webhook
// notifier.
type Notifier interface {
	Send(ctx context.Context, eventType string, data interface{}) error
}

// Worker periodically runs the curfew engine and delivers whatever trips.
type Worker struct {
	engine   *Engine
	notifier Notifier
	logger   *slog.Logger
	interval time.Duration
	done     chan struct{}

	// OnAlert, when set, receives each triggered alert in addition to the
	// notifier. The event hub hangs off this.
	OnAlert func(Alert)
}

func NewWorker(engine *Engine, notifier Notifier, logger *slog.Logger, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &Worker{
		engine:   engine,
		notifier: notifier,
		logger:   logger.With("component", "alert"),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start blocks until the context is cancelled or Stop is called. Run it on
// its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("curfew alert worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("curfew alert worker stopped")
			return
		case <-w.done:
			w.logger.Info("curfew alert worker stopped")
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) process(ctx context.Context) {
	alerts := w.engine.Evaluate()
	for _, alert := range alerts {
		w.logger.Info("curfew alert triggered",
			"alert_id", alert.ID,
			"identity_id", alert.IdentityID,
			"key", alert.Key,
			"count", alert.Count,
			"severity", alert.Severity,
		)

		if w.OnAlert != nil {
			w.OnAlert(alert)
		}

		if err := w.notifier.Send(ctx, "alert.triggered", alert); err != nil {
			w.logger.Error("failed to deliver alert",
				"alert_id", alert.ID,
				"error", err,
			)
		}
	}
}
