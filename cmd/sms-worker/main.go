// cmd/sms-worker/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/stkpush-relay/internal/callback"
	"github.com/example/stkpush-relay/internal/config"
	"github.com/example/stkpush-relay/internal/queue"
)

// sms-worker drains the relay's SMS topic. Delivery goes through the same
// Notifier contract the relay uses; the log notifier stands in until an SMS
// provider is wired.
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadWorker()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	r := queue.NewSMSReader(cfg.KafkaBrokers, cfg.SMSTopic, cfg.GroupID)
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier callback.Notifier = callback.LogNotifier{}
	slog.Info("sms-worker started", "topic", cfg.SMSTopic, "group", cfg.GroupID)

	err = queue.DrainSMS(ctx, r, func(ctx context.Context, s queue.SMS) error {
		return notifier.Notify(ctx, s.Phone, s.Message)
	})
	if err != nil {
		slog.Error("sms-worker stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("sms-worker stopped")
}
