package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/grim/internal/identity/application/oauth"
	"github.com/felixgeelhaar/grim/internal/identity/application/session"
	identity "github.com/felixgeelhaar/grim/internal/identity/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/application/commands"
	"github.com/felixgeelhaar/grim/internal/productivity/application/optimistic"
	"github.com/felixgeelhaar/grim/internal/productivity/application/queries"
	"github.com/felixgeelhaar/grim/internal/productivity/application/services"
	"github.com/felixgeelhaar/grim/internal/productivity/application/store"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/grim/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/grim/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/grim/pkg/config"
	"github.com/felixgeelhaar/grim/pkg/observability"
)

// maxHealthyPending is the queue depth above which the commit queue reports degraded.
const maxHealthyPending = 100

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Remote store
	DBConn      database.Connection
	DBDriver    database.Driver
	RedisClient *redis.Client
	Breaker     *persistence.Breaker
	TaskGateway task.Gateway
	GoalGateway goal.Gateway

	// Commit queue and outcome events
	EventBus        *eventbus.InProcessEventBus
	EventPublisher  eventbus.Publisher
	OutboxRepo      outbox.Repository
	CommitProcessor *outbox.Processor

	// Identity
	SessionStore identity.SessionStore
	Sessions     *session.Manager
	AuthService  *oauth.Service

	// Sync core
	Store  *store.Store
	Engine *optimistic.Engine

	// Command handlers
	CreateTaskHandler *commands.CreateTaskHandler
	UpdateTaskHandler *commands.UpdateTaskHandler
	TaskBoardHandler  *commands.BoardHandler
	GoalHandler       *commands.GoalHandler
	PlanHandler       *commands.PlanHandler
	SeedHandler       *commands.SeedHandler

	// Query handlers
	ListTasksHandler   *queries.ListTasksHandler
	GetTaskHandler     *queries.GetTaskHandler
	BoardQueryHandler  *queries.BoardHandler
	GoalGridHandler    *queries.GoalGridHandler
	DashboardHandler   *queries.DashboardHandler
	InitiativesHandler *queries.InitiativesHandler
	DayPlanHandler     *queries.DayPlanHandler

	detach  func()
	closers []func() error
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.connectDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.connectRedis(ctx); err != nil {
		c.closeAll()
		return nil, err
	}
	if err := c.wirePublishers(); err != nil {
		c.closeAll()
		return nil, err
	}

	factory := NewRepositoryFactory(c.DBConn, c.RedisClient, cfg, c.Metrics, logger)
	c.Breaker = factory.Breaker()
	c.TaskGateway = factory.TaskGateway()
	c.GoalGateway = factory.GoalGateway()

	// Commit queue: applies queued mutations to the remote store and
	// publishes the outcome.
	c.OutboxRepo = outbox.NewMemoryRepository()
	c.CommitProcessor = outbox.NewProcessor(
		c.OutboxRepo,
		persistence.NewCommitApplier(c.TaskGateway, c.GoalGateway, logger),
		c.EventPublisher,
		outbox.ProcessorConfig{
			PollInterval:     cfg.CommitPollInterval,
			BatchSize:        cfg.CommitBatchSize,
			MaxRetries:       cfg.CommitMaxRetries,
			RetryBackoffBase: cfg.CommitBackoffBase,
			RetryBackoffMax:  cfg.CommitBackoffMax,
			Retention:        cfg.CommitRetention,
			CleanupInterval:  cfg.CommitCleanupInterval,
		},
		logger,
	).WithMetrics(c.Metrics)

	// Identity
	sessionStore, err := factory.SessionStore()
	if err != nil {
		c.closeAll()
		return nil, err
	}
	c.SessionStore = sessionStore
	c.Sessions = session.NewManager(sessionStore, logger)
	if cfg.OAuthConfigured() {
		c.AuthService, err = oauth.NewService(oauth.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			AuthURL:      cfg.OAuthAuthURL,
			TokenURL:     cfg.OAuthTokenURL,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       oauth.ScopesFromEnv(cfg.OAuthScopes),
		})
		if err != nil {
			c.closeAll()
			return nil, fmt.Errorf("failed to configure oauth: %w", err)
		}
	}

	// Sync core
	c.Store = store.New()
	c.Engine = optimistic.New(c.Store, c.TaskGateway, c.GoalGateway, c.CommitProcessor, optimistic.Config{
		BootstrapTimeout: cfg.BootstrapTimeout,
		FailureBuffer:    cfg.FailureBuffer,
	}, logger).WithMetrics(c.Metrics)
	c.EventBus.RegisterConsumer(c.Engine.FailureConsumer())
	c.detach = c.Engine.Attach(c.Sessions)

	c.wireHandlers()
	c.registerHealthChecks()

	return c, nil
}

func (c *Container) connectDatabase(ctx context.Context) error {
	driver, err := database.ParseDriver(c.Config.DatabaseDriver)
	if err != nil {
		return err
	}
	dbCfg := database.Config{
		Driver:     driver,
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	}
	if dbCfg.URL == "" && dbCfg.Driver == "" {
		dbCfg.Driver = database.DriverSQLite
	}
	if dbCfg.ResolveDriver() == database.DriverSQLite {
		if dbCfg.SQLitePath == "" {
			dbCfg.SQLitePath = database.DefaultSQLitePath()
		}
		if dbCfg.SQLitePath != database.MemoryPath {
			if dbCfg.SQLitePath, err = security.ValidateFilePath(dbCfg.SQLitePath); err != nil {
				return fmt.Errorf("SQLITE_PATH: %w", err)
			}
		}
	}

	conn, err := database.NewConnection(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.closers = append(c.closers, conn.Close)
	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

// connectRedis is optional in development unless sessions live in Redis.
func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	required := !c.Config.IsDevelopment() || c.Config.SessionStore == config.SessionStoreRedis

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if required {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, continuing without Redis", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		if required {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, continuing without Redis", "error", err)
		return nil
	}

	c.RedisClient = client
	c.closers = append(c.closers, client.Close)
	c.Logger.Info("connected to Redis")
	return nil
}

// wirePublishers fans commit outcomes out to the in-process bus and, when
// configured, RabbitMQ.
func (c *Container) wirePublishers() error {
	c.EventBus = eventbus.NewInProcessEventBus(c.Logger)
	targets := []eventbus.Publisher{c.EventBus}

	if c.Config.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQExchange, c.Logger)
		switch {
		case err == nil:
			targets = append(targets, rabbit)
			c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(rabbit.Ping))
		case c.Config.IsDevelopment():
			c.Logger.Warn("RabbitMQ not available, publishing in-process only", "error", err)
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}

	fanout := eventbus.NewFanoutPublisher(targets...)
	c.EventPublisher = fanout
	c.closers = append(c.closers, fanout.Close)
	return nil
}

func (c *Container) wireHandlers() {
	st := c.Store

	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.Engine)
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(c.Engine)
	c.TaskBoardHandler = commands.NewBoardHandler(c.Engine, st)
	c.GoalHandler = commands.NewGoalHandler(c.Engine)
	c.PlanHandler = commands.NewPlanHandler(c.Engine)
	c.SeedHandler = commands.NewSeedHandler(c.Engine, st)

	c.ListTasksHandler = queries.NewListTasksHandler(st)
	c.GetTaskHandler = queries.NewGetTaskHandler(st)
	c.BoardQueryHandler = queries.NewBoardHandler(st)
	c.GoalGridHandler = queries.NewGoalGridHandler(st)
	c.DashboardHandler = queries.NewDashboardHandler(st, c.Engine.Schedule(),
		services.NewPriorityEngine(services.DefaultPriorityEngineConfig()))
	c.InitiativesHandler = queries.NewInitiativesHandler(st)
	c.DayPlanHandler = queries.NewDayPlanHandler(st, c.Engine.Schedule())
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.DatabaseHealthChecker(c.DBConn.Ping))
	if c.RedisClient != nil {
		c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}
	c.Health.Register("commit_queue", observability.CommitQueueHealthChecker(c.commitQueueStats, maxHealthyPending))
}

func (c *Container) commitQueueStats(ctx context.Context) (observability.CommitQueueStats, error) {
	pending, err := c.CommitProcessor.Pending(ctx)
	if err != nil {
		return observability.CommitQueueStats{}, err
	}
	dead, err := c.CommitProcessor.DeadLetters(ctx, 0)
	if err != nil {
		return observability.CommitQueueStats{}, err
	}
	stats := observability.CommitQueueStats{Pending: pending, Dead: len(dead)}
	if len(dead) > 0 && dead[0].DeadLetterReason != nil {
		stats.LastFailure = fmt.Sprintf("%s %s: %s", dead[0].RoutingKey, dead[0].AggregateID, *dead[0].DeadLetterReason)
	}
	return stats, nil
}

// Start runs the commit processor until ctx is done or Close is called.
func (c *Container) Start(ctx context.Context) error {
	return c.CommitProcessor.Start(ctx)
}

// Restore reloads the stored session, if any, and waits for its data. It
// returns nil with no session when nobody is signed in.
func (c *Container) Restore(ctx context.Context) (*identity.Session, error) {
	s, err := c.Sessions.Restore(ctx)
	if err != nil || s == nil {
		return s, err
	}
	if err := c.Engine.WaitForLoad(ctx); err != nil {
		return s, fmt.Errorf("load board: %w", err)
	}
	return s, nil
}

// Drain blocks until every queued commit is applied or dead-lettered, up
// to COMMIT_DRAIN_TIMEOUT.
func (c *Container) Drain(ctx context.Context) error {
	timeout := c.Config.CommitDrainTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.CommitProcessor.Drain(ctx)
}

// Close drains the commit queue and releases every resource.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if err := c.Drain(ctx); err != nil {
		c.Logger.Warn("commits left unapplied at shutdown", "error", err)
		errs = append(errs, err)
	}
	c.CommitProcessor.Stop()
	if c.detach != nil {
		c.detach()
	}
	errs = append(errs, c.closeAll())
	return errors.Join(errs...)
}

func (c *Container) closeAll() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
