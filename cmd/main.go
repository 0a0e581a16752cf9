package main

import (
	"context"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/yakoovad/planner/internal/api"
	"github.com/yakoovad/planner/internal/config"
	"github.com/yakoovad/planner/internal/db"
	"github.com/yakoovad/planner/internal/events"
	"github.com/yakoovad/planner/internal/notify"
	"github.com/yakoovad/planner/internal/repository"
	"github.com/yakoovad/planner/internal/service"
	"github.com/yakoovad/planner/internal/telemetry"
	"github.com/yakoovad/planner/pkg/logger"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serviceName     = "planner"
	version         = "v0.1.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	os.Exit(start())
}

// start returns the process exit code. Deferred cleanup, including the
// final log flush, runs before main exits.
func start() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, log); err != nil {
		log.Error("planner stopped", zap.Error(err))
		return 1
	}

	log.Info("planner stopped")
	return 0
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting application", zap.String("version", version))

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return errors.Wrap(err, "setup tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	log.Info("database connection established")

	if cfg.MigrateOnStart {
		applied, err := db.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		log.Info("migrations applied", zap.Int("count", applied))
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	links, err := service.NewLinks(cfg.Links.APIBaseURL, cfg.Links.ParticipantBaseURL, cfg.Links.WebBaseURL)
	if err != nil {
		return err
	}

	notifier := notify.NewEmailNotifier(newSender(cfg, log), cfg.Notify.Timeout)

	transactor := db.NewPgxTransactor(pool)

	tripRepo := repository.NewPgxTripRepository(pool)
	participantRepo := repository.NewPgxParticipantRepository(pool)

	trips := service.NewTripService(transactor, links).
		WithTripRepo(tripRepo).
		WithParticipantRepo(participantRepo).
		WithNotifier(notifier).
		WithPublisher(publisher)
	confirmations := service.NewConfirmationService(links).
		WithTripRepo(tripRepo).
		WithParticipantRepo(participantRepo).
		WithNotifier(notifier).
		WithPublisher(publisher).
		WithConcurrency(cfg.Notify.Concurrency)

	healthChecker, err := api.NewHealthChecker(version, api.PostgresCheck(pool))
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.NewHandler(log).
		WithTripService(trips).
		WithConfirmationService(confirmations).
		WithHealthChecker(healthChecker).
		RegisterRoutes(e)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		return errors.Wrap(err, "serve http")
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Wrap(e.Shutdown(shutdownCtx), "shutdown http")
}

func newSender(cfg *config.Config, log *zap.Logger) notify.Sender {
	switch cfg.Mail.Driver {
	case config.MailDriverMailerSend:
		log.Info("sending email through mailersend")
		return notify.NewMailerSendSender(cfg.Mail.MailerSendAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	case config.MailDriverSMTP:
		log.Info("sending email through smtp", zap.String("host", cfg.Mail.SMTPHost), zap.Int("port", cfg.Mail.SMTPPort))
		return notify.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPass,
			cfg.Mail.FromName, cfg.Mail.FromAddress)
	default:
		log.Info("emails are written to the log")
		return notify.NewLogSender(log.Named("mail"))
	}
}

func newPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewNATSPublisher(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Info("publishing events to nats", zap.String("url", cfg.NATSURL))

	return publisher, nil
}
