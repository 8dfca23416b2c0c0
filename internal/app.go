package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"user-directory-api/config"
	"user-directory-api/internal/application/ports"
	"user-directory-api/internal/application/services"
	"user-directory-api/internal/infrastructure/cache"
	"user-directory-api/internal/infrastructure/db/postgres"
	"user-directory-api/internal/infrastructure/db/postgres/user"
	"user-directory-api/internal/infrastructure/filestore"
	"user-directory-api/internal/infrastructure/metrics"
	"user-directory-api/internal/infrastructure/mq"
	"user-directory-api/internal/interface/api/rest"
	"user-directory-api/internal/interface/api/rest/middleware"
	"user-directory-api/pkg/rmqconsumer"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	files      *filestore.FileStore
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	events     ports.EventPublisher
	mq         *mq.RabbitMQ
	mqConsumer ports.RMQConsumer
}

func NewApp(ctx context.Context) (*App, error) {
	// config
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// logger
	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize zap logger: %w", err)
	}

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))
	r.Use(middleware.CORS(cfg.CORSOrigins()))

	// httpServer
	httpSrv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		return nil, fmt.Errorf("DB config error: %w", err)
	}
	if cfg.DB.Migrate {
		migrateDsn, _ := cfg.MigrateDSN()
		if err = postgres.Migrate(logger, migrateDsn); err != nil {
			return nil, err
		}
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn)
	if err != nil {
		return nil, err
	}

	// attachments
	files, err := filestore.New(logger, cfg.Storage.Dir)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		db:       dbPool,
		files:    files,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		events:   mq.NewLogPublisher(logger),
	}

	if cfg.MQEnabled() {
		if err = app.initMQ(ctx); err != nil {
			app.Close()
			return nil, err
		}
	} else {
		logger.Info("RABBITMQ_HOST not set, user events are only logged")
	}

	return app, nil
}

func (a *App) initMQ(ctx context.Context) error {
	rabbitDsn, err := a.cfg.AMQPDSN()
	if err != nil {
		return fmt.Errorf("RabbitMQ config error: %w", err)
	}

	rbMQ := mq.New(a.cfg.MQ, a.logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect to rabbitMQ: %w", err)
	}
	a.mq, a.events = rbMQ, rbMQ
	if err = rbMQ.Init(); err != nil {
		return fmt.Errorf("failed init rabbitMQ: %w", err)
	}

	if !a.cfg.MQ.ConsumerEnabled {
		return nil
	}
	consumer := rmqconsumer.New(a.cfg.MQ, a.logger, rbMQ.GetConn())
	if err = consumer.Connect(rabbitDsn); err != nil {
		return fmt.Errorf("failed to connect rabbitMQ consumer: %w", err)
	}
	if err = consumer.Init(); err != nil {
		return fmt.Errorf("failed to init rabbitMQ consumer: %w", err)
	}
	a.mqConsumer = consumer

	return nil
}

func newLogger(env string) (*zap.Logger, error) {
	switch env {
	case gin.ReleaseMode, "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.mq != nil {
		a.mq.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name,
			zap.String("addr", a.httpSrv.Addr),
			zap.String("public_url", a.cfg.BaseURL()),
			zap.String("storage_root", a.files.Root()),
		)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})
	}

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
		return err
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// repos
	userRepo := cache.NewUserRepository(
		user.NewRepository(a.db),
		a.cfg.Cache.Size,
		a.cfg.Cache.TTL,
		a.mCounter,
	)

	// services
	attachmentService := services.NewAttachmentService(
		a.files,
		a.cfg.BaseURL(),
		a.cfg.Storage.MaxUploadBytes,
		a.mCounter,
	)
	userService := services.NewUserService(userRepo, attachmentService, a.events, a.mCounter, a.logger)

	// bound multipart parsing; the upload limit itself is checked per file
	a.router.MaxMultipartMemory = a.cfg.Storage.MaxUploadBytes

	// controllers
	rest.NewUserController(a.router, userService, attachmentService,
		a.cfg.Storage.MaxUploadBytes+rest.FormOverhead, a.logger)
	rest.NewFileController(a.router, attachmentService, a.logger)
	rest.NewOpsController(a.router, a.db, a.logger)
}

func (a *App) Logger() *zap.Logger { return a.logger }
