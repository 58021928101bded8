package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"colors-app-go/internal/config"
	"colors-app-go/internal/db"
	feelingdomain "colors-app-go/internal/domain/feeling"
	groupdomain "colors-app-go/internal/domain/group"
	nudgedomain "colors-app-go/internal/domain/nudge"
	supportdomain "colors-app-go/internal/domain/support"
	userdomain "colors-app-go/internal/domain/user"
	"colors-app-go/internal/metrics"
	"colors-app-go/internal/push/expo"
	"colors-app-go/internal/repository/inmemory"
	feelingrepo "colors-app-go/internal/repository/postgres/feeling"
	grouprepo "colors-app-go/internal/repository/postgres/group"
	nudgerepo "colors-app-go/internal/repository/postgres/nudge"
	userrepo "colors-app-go/internal/repository/postgres/user"
	redisrepo "colors-app-go/internal/repository/redis"
	"colors-app-go/internal/scheduler"
	"colors-app-go/internal/storage/s3"
	"colors-app-go/internal/transport/httpserver"
	"colors-app-go/internal/transport/httpserver/handler"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/handler/feelings"
	"colors-app-go/internal/transport/httpserver/handler/groups"
	"colors-app-go/internal/transport/httpserver/handler/nudges"
	authmw "colors-app-go/internal/transport/httpserver/middleware"
	"colors-app-go/pkg/logger"
	"gorm.io/gorm"
)

const (
	limiterCleanupEvery = 10 * time.Minute
	limiterIdle         = 30 * time.Minute
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	redis      *redisrepo.Client
	scheduler  *scheduler.Scheduler
	limiter    *authmw.RateLimiter
	stop       context.CancelFunc
}

// feelingGate lets the nudge service ask about feelings even though the
// feeling service itself needs the nudge service for user timezones.
type feelingGate struct {
	feelings *feelingdomain.Service
}

func (g *feelingGate) HasLoggedOn(ctx context.Context, userID string, day time.Time) (bool, error) {
	return g.feelings.HasLoggedOn(ctx, userID, day)
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, db: dbConn}
	if err := a.init(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.log
	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		applied, err := db.Migrate(a.db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("db: migrations applied", "count", len(applied), "files", applied)
	}

	appMetrics := metrics.New()
	checks := map[string]common.Pinger{"db": dbPinger{db: a.db}}

	var locker nudgedomain.Locker = inmemory.NewLocker()
	if cfg.Redis.Addr != "" {
		log.Info("app: connecting to redis", "addr", cfg.Redis.Addr)
		client, err := redisrepo.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.redis = client
		locker = client
		checks["redis"] = client
	}

	var avatars common.Avatars
	if cfg.Avatars.Bucket != "" {
		store, err := s3.NewAvatars(ctx, cfg.Avatars)
		if err != nil {
			return fmt.Errorf("avatars: %w", err)
		}
		avatars = store
	} else {
		log.Info("app: avatar uploads disabled, AVATARS_BUCKET not set")
	}

	window, err := nudgedomain.ParseWindow(cfg.Nudge.WindowStart, cfg.Nudge.WindowEnd)
	if err != nil {
		return fmt.Errorf("nudge window: %w", err)
	}

	userService := userdomain.NewService(userrepo.NewPostgres(a.db))
	groupService := groupdomain.NewService(
		grouprepo.NewPostgres(a.db),
		groupdomain.WithCache(inmemory.NewInMemoryGroupCache(), cfg.GroupCache),
	)

	gate := &feelingGate{}
	nudgeService := nudgedomain.NewService(
		nudgerepo.NewPostgres(a.db),
		gate,
		expo.NewClient(cfg.Push),
		locker,
		log.With("component", "nudge"),
		nudgedomain.WithWindow(window),
		nudgedomain.WithLockTTL(cfg.Nudge.LockTTL),
		nudgedomain.WithObserver(appMetrics),
	)
	feelingService := feelingdomain.NewService(feelingrepo.NewPostgres(a.db), groupService, nudgeService)
	gate.feelings = feelingService

	supportService := supportdomain.NewService(supportdomain.DefaultCatalog(), groupService, feelingService, nil)

	handlers := handler.New(
		common.New(userService, avatars, checks, log),
		groups.New(groupService, feelingService, supportService, appMetrics, log),
		feelings.New(feelingService, appMetrics, log),
		nudges.New(nudgeService, log),
	)

	a.limiter = authmw.NewRateLimiter(cfg.RateLimit.SupportPerMinute, cfg.RateLimit.SupportBurst, log)
	router := httpserver.NewRouter(cfg, handlers, httpserver.Middlewares{
		Auth:           authmw.NewSupabaseAuth(cfg.Supabase, userService, log).Middleware,
		SupportLimiter: a.limiter,
	}, appMetrics, log)

	a.httpServer = httpserver.New(cfg, router)

	if cfg.Nudge.CronEnabled {
		sched, err := scheduler.New(cfg.Nudge, nudgeService, log)
		if err != nil {
			return err
		}
		a.scheduler = sched
	}

	return nil
}

// Start launches background work: the nudge cron (when enabled) and the
// rate limiter sweep.
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel

	if a.scheduler != nil {
		a.log.Info("scheduler: starting", "assign", a.cfg.Nudge.AssignCron, "dispatch", a.cfg.Nudge.DispatchCron)
		a.scheduler.Start()
	}

	go func() {
		ticker := time.NewTicker(limiterCleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.limiter.Cleanup(limiterIdle)
			}
		}
	}()
}

// Shutdown stops background work, waiting for running jobs until ctx expires.
func (a *App) Shutdown(ctx context.Context) {
	if a.stop != nil {
		a.stop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.db == nil {
		return firstErr
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type dbPinger struct {
	db *gorm.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
