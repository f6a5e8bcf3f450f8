// stkpush-relay/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/stkpush-relay/internal/callback"
	"github.com/example/stkpush-relay/internal/config"
	"github.com/example/stkpush-relay/internal/gateway"
	"github.com/example/stkpush-relay/internal/handlers"
	"github.com/example/stkpush-relay/internal/payment"
	"github.com/example/stkpush-relay/internal/probe"
	"github.com/example/stkpush-relay/internal/queue"
)

type APIServer struct {
	cfg    *config.Config
	router http.Handler
	bus    *queue.Bus
}

func NewAPIServer(cfg *config.Config) *APIServer {
	s := &APIServer{cfg: cfg}

	gw := gateway.NewClient(cfg.GatewayURL, cfg.GatewayUsername, cfg.GatewayPassword, cfg.GatewayTimeout)

	var (
		ledger   callback.Ledger   = callback.LogLedger{}
		notifier callback.Notifier = callback.LogNotifier{}
	)
	if cfg.KafkaEnabled() {
		s.bus = queue.New(cfg.KafkaBrokers, cfg.KafkaLedgerTopic, cfg.KafkaSMSTopic)
		ledger = queue.Ledger{Bus: s.bus}
		notifier = queue.Notifier{Bus: s.bus}
		slog.Info("kafka sinks enabled", "brokers", cfg.KafkaBrokers)
	}

	s.router = handlers.NewRouter(handlers.Deps{
		Initiator: payment.NewInitiator(gw, payment.Settings{
			ChannelID:       cfg.ChannelID,
			Provider:        cfg.Provider,
			CallbackURL:     cfg.CallbackURL,
			ReferencePrefix: cfg.ReferencePrefix,
			PhonePrefix:     cfg.PhonePrefix,
			Currency:        cfg.Currency,
			PaymentType:     cfg.PaymentType,
		}),
		Receiver: callback.NewReceiver(ledger, notifier, cfg.Currency),
		Prober: probe.New(gw, &http.Client{Timeout: 10 * time.Second}, probe.Settings{
			Region:      cfg.Region,
			UsernameSet: cfg.GatewayUsername != "",
			PasswordSet: cfg.GatewayPassword != "",
			ChannelID:   cfg.ChannelID,
			Provider:    cfg.Provider,
			Phone:       cfg.ProbePhone,
			InternetURL: cfg.ProbeInternetURL,
		}),
	})
	return s
}

func (s *APIServer) Start(ctx context.Context) error {
	slog.Info("relay starting", "addr", s.cfg.HTTPAddr, "region", s.cfg.Region)

	server := &http.Server{
		Addr:        s.cfg.HTTPAddr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// a payment request may wait the full gateway timeout
		WriteTimeout: s.cfg.GatewayTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "err", err)
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			slog.Error("kafka writer close", "err", err)
		}
	}
	return nil
}

func main() {
	slog.SetDefault(slog.New(handlers.NewLogHandler(slog.NewJSONHandler(os.Stdout, nil))))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewAPIServer(cfg).Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}
