package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/supplier-imports/internal/cfg"
	v1Http "github.com/DRSN-tech/supplier-imports/internal/delivery/v1/http"
	"github.com/DRSN-tech/supplier-imports/internal/infrastructure/auth"
	"github.com/DRSN-tech/supplier-imports/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/supplier-imports/internal/infrastructure/minio"
	"github.com/DRSN-tech/supplier-imports/internal/infrastructure/providers"
	"github.com/DRSN-tech/supplier-imports/internal/infrastructure/scraper"
	"github.com/DRSN-tech/supplier-imports/internal/metrics"
	s3Repo "github.com/DRSN-tech/supplier-imports/internal/repository/minio"
	"github.com/DRSN-tech/supplier-imports/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/supplier-imports/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/supplier-imports/internal/repository/redis"
	redisConv "github.com/DRSN-tech/supplier-imports/internal/repository/redis/converter"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
	"github.com/DRSN-tech/supplier-imports/pkg/closer"
	"github.com/DRSN-tech/supplier-imports/pkg/clients"
	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/DRSN-tech/supplier-imports/pkg/postgres"
	"github.com/DRSN-tech/supplier-imports/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	shutdownTimeout = 15 * time.Second
	cleanupTimeout  = 5 * time.Second
	topicTimeout    = 10 * time.Second
)

// App владеет всеми зависимостями сервиса и их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	outboxWorker *kafka.OutboxWorker
	imagesInfra  *minioInfra.MinioInfrastructure

	// bgCtx ограничивает фоновую очистку MinIO и отменяется последним
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// NewApp поднимает подключения и собирает граф зависимостей.
// Ресурсы, открытые до ошибки, закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   log,
		closer:   closer.NewCloser(cleanupTimeout),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}

	if err := a.init(); err != nil {
		bgCancel()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			log.Warnf("partial init cleanup: %v", closeErr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger

	db, err := initPGDB(log, cfg)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	txManager := tr.NewManager(db.Pool)

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
	supplierRepo := pgdb.NewSupplierRepo(db.Pool, pgdbConv.SupplierConverter{})
	jobRepo := pgdb.NewImportJobRepo(db.Pool, pgdbConv.ImportJobConverter{})
	itemRepo := pgdb.NewImportJobItemRepo(db.Pool, pgdbConv.ImportJobItemConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
	profileRepo := pgdb.NewProfileRepo(db.Pool)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return e.Wrap(whereami.WhereAmI(), err)
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	a.imagesInfra = minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, cfg.Scraper, log, a.bgCtx)
	a.closer.Add("minio cleanup", a.imagesInfra.WaitForCleanup)

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error {
		return redisClient.Close()
	})
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ExternalProductConverter{}, cfg.Import, log)
	lockRepo := redis.NewLockRepo(redisClient, cfg.Import)

	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error {
		return producer.Close()
	})
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// Топик может создаваться оператором кластера; воркер повторит отправку позже
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}
	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, log, producer, cfg.Kafka, db.Dsn)

	extractor := scraper.NewExtractor(cfg.Scraper, log)
	registry := providers.NewDefaultRegistry(extractor, cfg.Providers, log)

	appMetrics := metrics.New()

	importUC := usecase.NewImportUC(
		registry,
		productRepo,
		categoryRepo,
		supplierRepo,
		jobRepo,
		itemRepo,
		outboxRepo,
		cacheRepo,
		lockRepo,
		a.imagesInfra,
		txManager,
		appMetrics,
		log,
	)
	authUC := usecase.NewAuthUC(auth.NewGoTrueAuth(cfg.Auth, log), profileRepo, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, cfg.Http, appMetrics, log)
	router.Init(importUC, authUC)

	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return nil
}

// Run запускает HTTP-сервер и outbox-воркер и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(a.bgCtx)
	defer workerCancel()
	a.outboxWorker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop(workerCancel)

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// stop сначала перестаёт принимать запросы, затем останавливает воркер и закрывает ресурсы в обратном порядке.
func (a *App) stop(stopWorker context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(ctx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	stopWorker()
	a.outboxWorker.Wait()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Warnf("%v", err)
	}
	a.bgCancel()
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(context.Background(), cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
