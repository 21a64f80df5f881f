// Package server wires the EastSecure backend together: database, session
// issuer, notifier, scan queue, HTTP API, gRPC health and housekeeping, and
// runs them until SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/auth"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"github.com/dmitrijs2005/eastsecure/internal/server/httpapi"
	"github.com/dmitrijs2005/eastsecure/internal/server/jobs"
	"github.com/dmitrijs2005/eastsecure/internal/server/notify"
	"github.com/dmitrijs2005/eastsecure/internal/server/oauth"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eastsecure/internal/server/scanner"
	"github.com/dmitrijs2005/eastsecure/internal/server/services"
	"github.com/dmitrijs2005/eastsecure/internal/server/storage"

	gs "github.com/dmitrijs2005/eastsecure/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	queue   jobs.Queue
	scans   *services.ScanService
	cleanup *services.CleanupService
	handler http.Handler
}

// NewApp connects to the database, applies migrations and builds every
// component. Nothing is started until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	queue, err := newQueue(c, logger.With("module", "scan_queue"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var archive services.ReportArchive
	if c.ArchiveEnabled() {
		archive = storage.NewS3Archive(c)
	}

	n := newNotifier(c, logger.With("module", "notify"))
	identity := services.NewIdentityService(db, m, c)
	scans := services.NewScanService(db, m, scanner.NewClient(c.ScannerURL, c.ScannerTimeout), queue, archive, logger.With("module", "scans"))

	handler := httpapi.NewRouter(httpapi.Deps{
		Identity:     identity,
		Verification: services.NewVerificationService(db, m, n, c),
		Requests:     services.NewServiceRequestService(db, m),
		Scans:        scans,
		Contact:      services.NewContactService(db, m, n, logger.With("module", "contact")),
		Blog:         services.NewBlogService(db, m),
		OAuth:        oauth.NewRegistry(c),
		Issuer:       newIssuer(c, db, m),
		DB:           db,
		Logger:       logger.With("module", "http"),
		Config:       c,
	})

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		queue:   queue,
		scans:   scans,
		cleanup: services.NewCleanupService(db, m, logger.With("module", "cleanup")),
		handler: handler,
	}, nil
}

func newIssuer(c *config.Config, db *sql.DB, m repomanager.RepositoryManager) auth.Issuer {
	if c.SessionStrategy == config.SessionDatabase {
		return auth.NewStoreIssuer(db, m, c.SessionTTL)
	}
	return auth.NewJWTIssuer(c.SecretKey, c.SessionTTL)
}

// newNotifier falls back to logging codes when no SendGrid key is set, which
// is what local development wants.
func newNotifier(c *config.Config, l logging.Logger) notify.Notifier {
	if c.SendGridAPIKey == "" {
		return notify.NewLogNotifier(l)
	}
	return notify.NewSendGridNotifier(c.SendGridAPIKey, c.MailFromName, c.MailFromAddress, c.ContactInbox, c.SendGridSandbox)
}

func newQueue(c *config.Config, l logging.Logger) (jobs.Queue, error) {
	if c.ScanQueueBackend == config.QueueAMQP {
		q, err := jobs.NewAMQPQueue(c.AMQPURL, c.AMQPQueue, c.ScanWorkers, l)
		if err != nil {
			return nil, fmt.Errorf("scan queue: %w", err)
		}
		return q, nil
	}
	return jobs.NewMemoryQueue(c.ScanQueueSize, c.ScanWorkers, l), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startWorkers runs scan jobs under a context that outlives the signal, so
// buffered jobs finish when the queue is closed during shutdown.
func (app *App) startWorkers(ctx context.Context) error {
	return app.queue.Start(context.WithoutCancel(ctx), func(ctx context.Context, job jobs.ScanJob) error {
		return app.scans.Execute(ctx, job.ScanID)
	})
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.startWorkers(ctx); err != nil {
		app.logger.Error(ctx, "scan workers", "error", err)
		return
	}

	scheduler, err := app.cleanup.Schedule(ctx, app.config.CleanupSchedule)
	if err != nil {
		app.logger.Error(ctx, "cleanup schedule", "error", err)
		return
	}
	scheduler.Start()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	<-scheduler.Stop().Done()

	app.logger.Info(ctx, "Draining scan queue...")
	if err := app.queue.Close(); err != nil {
		app.logger.Error(ctx, "close scan queue", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close db", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
