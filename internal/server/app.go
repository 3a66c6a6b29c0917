// Package server wires the BioGuard backend together: database and
// migrations, photo storage, login throttling, access-event publishing,
// the REST API and the gRPC health service, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/config"
	"github.com/dmitrijs2005/bioguard/internal/server/events"
	"github.com/dmitrijs2005/bioguard/internal/server/limiter"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bioguard/internal/server/rest"
	"github.com/dmitrijs2005/bioguard/internal/server/services"
	"github.com/dmitrijs2005/bioguard/internal/server/storage"
	"github.com/dmitrijs2005/bioguard/internal/server/tracing"

	gs "github.com/dmitrijs2005/bioguard/internal/server/grpc"
)

const (
	serviceName        = "bioguard"
	healthCheckPeriod  = 10 * time.Second
	memoryPhotoBackend = "memory"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	hub      *events.Hub
	closers  []io.Closer
	shutdown tracing.ShutdownFunc

	userService        *services.UserService
	peopleService      *services.PeopleService
	accessLogService   *services.AccessLogService
	recognitionService *services.RecognitionService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	shutdown, err := tracing.Setup(ctx, c.TraceEndpoint, serviceName, Version)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newPhotoStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("photo storage init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, shutdown: shutdown}

	lim := app.newLimiter()
	publisher := app.newPublisher()

	app.userService = services.NewUserService(db, rm, lim, logger, c)
	app.peopleService = services.NewPeopleService(db, rm, store, logger)
	app.accessLogService = services.NewAccessLogService(db, rm, publisher, logger)
	app.recognitionService = services.NewRecognitionService(db, rm, app.accessLogService)

	if err := app.userService.EnsureAdmin(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("admin seed error: %w", err)
	}

	return app, nil
}

func newPhotoStore(ctx context.Context, c *config.Config) (storage.PhotoStore, error) {
	if c.S3BaseEndpoint == memoryPhotoBackend {
		return storage.NewMemoryStore(), nil
	}

	s3, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3, nil
}

// newLimiter picks the login throttling backend: none when disabled, Redis
// when an address is configured, process memory otherwise.
func (app *App) newLimiter() limiter.Limiter {
	c := app.config
	if c.LoginMaxAttempts <= 0 {
		return limiter.Nop{}
	}

	opts := limiter.Options{MaxAttempts: c.LoginMaxAttempts, Window: c.LoginLockout}
	if c.RedisAddr == "" {
		return limiter.NewMemoryLimiter(opts)
	}

	rdb := limiter.NewRedis(c.RedisAddr, c.RedisPassword, c.RedisDB)
	app.closers = append(app.closers, rdb)
	return limiter.NewRedisLimiter(rdb, opts)
}

// newPublisher always feeds the websocket hub and adds Kafka when brokers
// are configured.
func (app *App) newPublisher() events.Publisher {
	app.hub = events.NewHub(64)
	if len(app.config.KafkaBrokers) == 0 {
		return app.hub
	}

	kp := events.NewKafkaPublisher(app.config.KafkaBrokers, app.config.KafkaTopic, app.logger)
	app.closers = append(app.closers, kp)
	return events.Fanout{app.hub, kp}
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
	h := rest.NewHandler(rest.HandlerDeps{
		Users:         app.userService,
		People:        app.peopleService,
		Logs:          app.accessLogService,
		Recognition:   app.recognitionService,
		Hub:           app.hub,
		Logger:        app.logger,
		SecretKey:     app.config.SecretKey,
		MaxPhotoBytes: app.config.MaxPhotoBytes,
	})

	s := rest.NewServer(app.config.EndpointAddrHTTP, h, app.logger, bodyLimit(app.config.MaxPhotoBytes))
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, healthCheckPeriod)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// bodyLimit leaves room for a base64 encoded photo plus form fields.
func bodyLimit(maxPhotoBytes int64) string {
	if maxPhotoBytes <= 0 {
		return ""
	}
	return fmt.Sprintf("%dK", (maxPhotoBytes*4/3)/1024+64)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", Version)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases connections opened by NewApp. Errors are logged.
func (app *App) Close() {
	ctx := context.Background()

	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil

	if app.shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := app.shutdown(shutdownCtx); err != nil {
			app.logger.Warn(ctx, "tracer shutdown failed", "error", err)
		}
		cancel()
		app.shutdown = nil
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "db close failed", "error", err)
		}
		app.db = nil
	}
}
