package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/auth"
	"recruit-backend/internal/dashboard"
	"recruit-backend/internal/events"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/lifecycle"
	"recruit-backend/internal/queue"
	"recruit-backend/internal/screening"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/server"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/storage/db"
	"recruit-backend/internal/shared/storage/object"
	localstore "recruit-backend/internal/shared/storage/object/local"
	s3store "recruit-backend/internal/shared/storage/object/s3"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/users"
)

const scoringTimeout = 20 * time.Second

// App holds shared dependencies and the HTTP router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Store   object.Store
	Events  events.Publisher
	Redis   *redis.Client
	Limiter middleware.Limiter
	Queue   queue.Client
	Machine lifecycle.Machine

	UsersRepo        users.Repo
	JobsRepo         jobs.Repo
	ApplicationsRepo applications.Repo
	InterviewsRepo   interviews.Repo

	UsersService        *users.Service
	JobsService         *jobs.Service
	ApplicationsService *applications.Service
	InterviewsService   *interviews.Service
	DashboardService    *dashboard.Service
	Screening           *screening.Processor
	Dispatcher          *screening.AsyncDispatcher

	closers []func(context.Context) error
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Queue:   queueClient,
		Machine: lifecycle.Machine{Strict: cfg.LifecycleStrict},
	}
	if sqlDB != nil {
		app.closers = append(app.closers, func(context.Context) error { return sqlDB.Close() })
	}

	app.Events = buildEvents(app, cfg)
	app.Limiter = buildLimiter(app, cfg)
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Identity:     app.UsersService,
		Limiter:      app.Limiter,
		Health:       func(ctx context.Context) error { return db.Ping(ctx, app.DB) },
		Auth:         auth.NewHandler(app.UsersService, cfg.JWTTTL),
		GoogleAuth:   buildGoogle(cfg, app.UsersService),
		Users:        users.NewHandler(app.UsersService),
		Jobs:         jobs.NewHandler(app.JobsService),
		Applications: applications.NewHandler(app.ApplicationsService),
		Interviews:   interviews.NewHandler(app.InterviewsService),
		Dashboard:    dashboard.NewHandler(app.DashboardService),
	})

	return app, nil
}

// Close drains background screening and releases connections in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.ScreeningQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.ScreeningQueueURL, cfg.AWSRegion)
}

func buildEvents(app *App, cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.LogPublisher{}
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaEventsTopic})
	if err != nil {
		telemetry.Warn("bootstrap.kafka_disabled", map[string]any{"error": err.Error()})
		return events.LogPublisher{}
	}
	app.closers = append(app.closers, func(context.Context) error { return pub.Close() })
	return pub
}

func buildLimiter(app *App, cfg config.Config) middleware.Limiter {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return middleware.NewRateLimiter(nil)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	app.Redis = client
	app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	return middleware.NewRedisLimiter(client)
}

func buildGoogle(cfg config.Config, accounts auth.GoogleAccounts) *auth.GoogleService {
	if strings.TrimSpace(cfg.GoogleClientID) == "" {
		return nil
	}
	return auth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, accounts, cfg.JWTTTL)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
		app.InterviewsRepo = &interviews.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ApplicationsRepo = applications.NewMemoryRepo()
		app.InterviewsRepo = interviews.NewMemoryRepo()
	}

	userSvc := users.NewService(app.UsersRepo)

	jobSvc := jobs.NewService(app.JobsRepo)
	jobSvc.Applications = app.ApplicationsRepo
	jobSvc.Dependents = []jobs.Dependent{app.InterviewsRepo, app.ApplicationsRepo}
	jobSvc.Machine = app.Machine
	jobSvc.Events = app.Events

	appSvc := applications.NewService(app.ApplicationsRepo, jobSvc, app.Store)
	appSvc.Machine = app.Machine
	appSvc.Events = app.Events
	appSvc.Dependents = []applications.Dependent{app.InterviewsRepo}
	appSvc.Applicants = userSvc

	ivSvc := interviews.NewService(app.InterviewsRepo, appSvc)
	ivSvc.Machine = app.Machine
	ivSvc.Events = app.Events

	processor := screening.NewProcessor(appSvc, jobSvc, app.Store)
	if url := strings.TrimSpace(app.Config.ScreeningURL); url != "" {
		processor.Scorer = screening.NewRemoteScorer(url, app.Config.ScreeningToken, scoringTimeout)
	}
	if app.Queue != nil {
		appSvc.Screening = screening.QueueDispatcher{Client: app.Queue}
	} else {
		dispatcher := screening.NewAsyncDispatcher(processor, app.Config.ScreeningWorkers, 0)
		dispatcher.Start()
		appSvc.Screening = dispatcher
		app.Dispatcher = dispatcher
		app.closers = append(app.closers, dispatcher.Close)
	}

	app.UsersService = userSvc
	app.JobsService = jobSvc
	app.ApplicationsService = appSvc
	app.InterviewsService = ivSvc
	app.Screening = processor
	app.DashboardService = &dashboard.Service{
		Applications: app.ApplicationsRepo,
		Jobs:         jobSvc,
		Interviews:   ivSvc,
		Users:        userSvc,
	}
}
