package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/canxing/crm-admin/config"
	"github.com/canxing/crm-admin/internal/cache"
	authHdl "github.com/canxing/crm-admin/internal/handler/auth"
	custHdl "github.com/canxing/crm-admin/internal/handler/customer"
	statsHdl "github.com/canxing/crm-admin/internal/handler/stats"
	authSrv "github.com/canxing/crm-admin/internal/service/auth"
	custSrv "github.com/canxing/crm-admin/internal/service/customer"
	statsSrv "github.com/canxing/crm-admin/internal/service/stats"
	"github.com/canxing/crm-admin/pkg/middleware"
	"github.com/canxing/crm-admin/pkg/model"
	"github.com/canxing/crm-admin/pkg/utils"
)

// App 进程级资源集合，显式构造、显式关闭，不藏全局单例
type App struct {
	cfg *config.Config
	log *logrus.Logger
	srv *http.Server
	rdb *redis.Client
	db  *gorm.DB
}

// InitApp 按依赖顺序组装：日志 -> redis -> mysql -> service -> handler -> router
func InitApp(cfg *config.Config) (*App, error) {
	l := newLogger(cfg.Log)

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		l.Errorf("failed to connect redis: %v", err)
		return nil, err
	}

	db, err := newGorm(cfg.Sql)
	if err != nil {
		l.Errorf("failed to connect mysql: %v", err)
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.Customer{},
		&model.EmployeeTarget{},
	); err != nil {
		l.Errorf("failed to migrate schema: %v", err)
		return nil, err
	}

	tm := utils.NewTokenManager(
		cfg.Jwt.AccessSecret, cfg.Jwt.RefreshSecret,
		cfg.Jwt.AccessTTL(), cfg.Jwt.RefreshTTL(),
	)
	cacheSvc := cache.NewService(rdb, l)

	authService := authSrv.NewService(
		authSrv.NewStore(db), cacheSvc, tm,
		authSrv.Config{
			SessionTTL: cfg.Jwt.UserInfoTTL(),
			CaptchaTTL: cfg.Jwt.CaptchaTTL(),
		}, l)
	customerService := custSrv.NewService(db, l)
	statsService := statsSrv.NewService(statsSrv.NewStore(db), l)

	gin.SetMode(ginMode(cfg.Server.Mode))
	engine := gin.New()
	engine.Use(
		middleware.Recovery(l),
		middleware.AccessLog(l),
		middleware.Metrics("crm_admin"),
	)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMW := middleware.Auth(tm, cacheSvc, authService, l)
	api := engine.Group("/api")
	authHdl.NewHandler(authService, l).RouterRegister(api, authMW)
	custHdl.NewHandler(customerService, l).RouterRegister(api, authMW, l)
	statsHdl.NewHandler(statsService, l).RouterRegister(api, authMW)

	return &App{
		cfg: cfg,
		log: l,
		rdb: rdb,
		db:  db,
		srv: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: engine,
		},
	}, nil
}

// Run 阻塞式启动HTTP服务
func (a *App) Run() error {
	a.log.Infof("listening on %s", a.cfg.Server.Addr)
	if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 先停HTTP再断存储连接
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down")
	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Errorf("http shutdown error: %v", err)
	}
	if err := a.rdb.Close(); err != nil {
		a.log.Errorf("redis close error: %v", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Errorf("sql close error: %v", err)
		}
	}
	return nil
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	l := logrus.New()
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMs) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMs) * time.Millisecond,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func newGorm(cfg config.SqlConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.Dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeMins) * time.Minute)
	return db, nil
}

func ginMode(mode string) string {
	if mode == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
