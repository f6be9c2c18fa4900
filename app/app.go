package app

import (
	"context"
	"fmt"
	"time"

	"workshop_tool_tracker/config"
	"workshop_tool_tracker/db"
	"workshop_tool_tracker/lock"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/metrics"
	"workshop_tool_tracker/migrate"
	"workshop_tool_tracker/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client // nil 表示未启用 redis
	Config   config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Services *services.Services
}

// New connects to the database (and redis when configured) and assembles
// the router with its middleware. Routes are registered by the caller.
func New(ctx context.Context, cfg config.Config, logg *logger.Logger) (*App, error) {
	dbConn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return nil, multierr.Append(fmt.Errorf("redis: %w", err), multierr.Combine(rdb.Close(), db.Close(dbConn)))
		}
	}

	return Assemble(cfg, logg, dbConn, rdb), nil
}

// Assemble builds an App over already opened connections.
func Assemble(cfg config.Config, logg *logger.Logger, dbConn *gorm.DB, rdb *redis.Client) *App {
	if logg == nil {
		logg = logger.Nop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var locker lock.Locker = lock.NopLocker{}
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, cfg.Borrow.LockTTL)
	}

	svc := services.New(services.Options{
		Repo:         db.NewRepo(dbConn),
		Locker:       locker,
		Metrics:      m,
		Logger:       logg,
		OverdueAfter: cfg.Borrow.OverdueAfter,
	})

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(requestID(logg), requestLogger(logg), observe(m), recovery(logg, cfg.App.IsProd()))
	useCORS(r, cfg.App.WebOrigin)

	return &App{
		Router:   r,
		DB:       dbConn,
		RDB:      rdb,
		Config:   cfg,
		Log:      logg,
		Metrics:  m,
		Registry: reg,
		Services: svc,
	}
}

// Ping checks the database and, when enabled, redis.
func (a *App) Ping(ctx context.Context) error {
	err := db.Ping(ctx, a.DB)
	if a.RDB != nil {
		err = multierr.Append(err, a.RDB.Ping(ctx).Err())
	}
	return err
}

func (a *App) Close() error {
	var err error
	if a.RDB != nil {
		err = multierr.Append(err, a.RDB.Close())
	}
	return multierr.Append(err, db.Close(a.DB))
}

// NewLogger builds the service logger from APP/LOG settings.
func NewLogger(cfg config.AppConfig, service string) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: service,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
}

// Migrate brings the schema up to date: goose migrations on postgres,
// gorm AutoMigrate on sqlite.
func (a *App) Migrate(ctx context.Context) error {
	if a.Config.DB.Driver == config.DriverSQLite {
		return db.Migrate(a.DB.WithContext(ctx))
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	return migrate.Up(ctx, sqlDB, a.Log)
}
