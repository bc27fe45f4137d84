// Package app 组装配置、存储、服务与路由
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"BlackByte_Forum/internal/config"
	"BlackByte_Forum/internal/handler"
	"BlackByte_Forum/internal/pkg"
	"BlackByte_Forum/internal/repository/mysql"
	"BlackByte_Forum/internal/repository/redis"
	"BlackByte_Forum/internal/router"
	"BlackByte_Forum/internal/service"
	"BlackByte_Forum/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reconcileLock    = "reconcile"
	reconcileLockTTL = 30 * time.Minute
	janitorInterval  = time.Hour
	shutdownTimeout  = 10 * time.Second
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *goredis.Client
	Files  storage.FileStorage
	Router *gin.Engine

	Users      *service.UserService
	Sessions   *service.SessionService
	Relayer    *service.OutboxRelayer
	Reconciler *service.CounterReconciler

	lock        *redis.DistLock
	sessionRepo *mysql.SessionRepository
	producer    *pkg.KafkaProducer
}

// New 按配置连接数据库、redis 与文件存储
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := mysql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var rdb *goredis.Client
	if cfg.RedisEnabled() {
		rdb, err = redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			if cfg.Session.Store == "redis" {
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			// 会话不依赖 redis 时降级运行，只关闭邮箱验证
			zap.L().Warn("Redis unavailable, email verification disabled", zap.Error(err))
			rdb = nil
		}
	}

	files, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return Build(cfg, db, rdb, files), nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.FileStorage, error) {
	if cfg.Storage.Type == "minio" {
		return storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			PublicURL: cfg.MinIO.PublicURL,
		})
	}
	return storage.NewLocal(cfg.Storage.LocalDir, cfg.Storage.PublicPath)
}

// Build 用已建立的连接组装服务与路由；rdb 可以为 nil
func Build(cfg *config.Config, db *gorm.DB, rdb *goredis.Client, files storage.FileStorage) *App {
	switch cfg.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	a := &App{Config: cfg, DB: db, Redis: rdb, Files: files}

	userRepo := &mysql.UserRepository{DB: db}

	var sessionStore service.SessionStore
	if cfg.Session.Store == "redis" && rdb != nil {
		sessionStore = &redis.SessionRepository{RDB: rdb}
	} else {
		a.sessionRepo = &mysql.SessionRepository{DB: db}
		sessionStore = a.sessionRepo
	}

	a.Users = service.NewUserService(userRepo)
	a.Sessions = service.NewSessionService(sessionStore, userRepo, pkg.NewCookieSigner(cfg.Session.Secret), cfg.Session.TTL)
	forums := service.NewForumService(&mysql.ForumRepository{DB: db}, files)
	posts := service.NewPostService(&mysql.PostRepository{DB: db}, files)
	replies := service.NewReplyService(&mysql.ReplyRepository{DB: db})
	uploads := service.NewUploadService(files)

	var sender service.Sender = service.LogSender
	if len(cfg.Kafka.Brokers) > 0 {
		a.producer = pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		sender = service.KafkaSender(a.producer)
	}
	a.Relayer = service.NewOutboxRelayer(&mysql.OutboxRepository{DB: db}, sender, cfg.Outbox.BatchSize, cfg.Outbox.Interval)
	a.Reconciler = service.NewCounterReconciler(&mysql.CounterReconcileRepo{DB: db}, 500)

	var emailHandler *handler.EmailHandler
	if rdb != nil {
		a.lock = &redis.DistLock{RDB: rdb}
		var mailer pkg.Mailer = pkg.LogMailer{}
		if cfg.SMTP.Host != "" {
			mailer = pkg.NewSMTPMailer(pkg.SMTPConfig{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
			})
		}
		emails := service.NewEmailService(&redis.EmailRepository{RDB: rdb}, userRepo, mailer)
		emailHandler = handler.NewEmailHandler(emails)
	}

	deps := router.Deps{
		Users: handler.NewUserHandler(a.Users, a.Sessions, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		}),
		Forums: handler.NewForumHandler(forums),
		Posts: handler.NewPostHandler(posts, handler.UploadLimits{
			MaxSize:  cfg.Upload.MaxSize,
			MaxFiles: cfg.Upload.MaxFiles,
		}),
		Replies:        handler.NewReplyHandler(replies),
		Uploads:        handler.NewUploadHandler(uploads, cfg.Upload.MaxSize),
		Email:          emailHandler,
		Sessions:       a.Sessions,
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodySize:    int64(cfg.Upload.MaxFiles)*cfg.Upload.MaxSize + 1<<20,
	}
	if _, ok := files.(*storage.Local); ok {
		deps.UploadDir = cfg.Storage.LocalDir
		deps.PublicPath = cfg.Storage.PublicPath
	}
	a.Router = router.InitRouter(deps)
	return a
}

func (a *App) Migrate() error {
	return mysql.AutoMigrate(a.DB)
}

// SeedAdmin 未配置 admin.email 时跳过
func (a *App) SeedAdmin(ctx context.Context) error {
	if a.Config.Admin.Email == "" {
		return nil
	}
	created, err := a.Users.EnsureAdmin(ctx, a.Config.Admin.Email, a.Config.Admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		zap.L().Info("Admin user created", zap.String("email", a.Config.Admin.Email))
	}
	return nil
}

// Serve 启动 HTTP 服务与 outbox 投递，ctx 取消后优雅退出
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.HTTP.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.Relayer.Run(bgCtx)
	if a.sessionRepo != nil {
		go a.runSessionJanitor(bgCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runSessionJanitor 定期清理数据库中过期会话
func (a *App) runSessionJanitor(ctx context.Context) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.sessionRepo.DeleteExpired(ctx, time.Now())
			if err != nil {
				zap.L().Warn("Session cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zap.L().Debug("Expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

// Reconcile 显式计数修复；有 redis 时用分布式锁避免多实例同时执行
func (a *App) Reconcile(ctx context.Context) (service.ReconcileReport, error) {
	if a.lock != nil {
		token := uuid.NewString()
		acquired, err := a.lock.Acquire(ctx, reconcileLock, token, reconcileLockTTL)
		if err != nil {
			return service.ReconcileReport{}, fmt.Errorf("acquire reconcile lock: %w", err)
		}
		if !acquired {
			return service.ReconcileReport{}, errors.New("another reconcile is running")
		}
		defer func() {
			if err := a.lock.Release(context.Background(), reconcileLock, token); err != nil {
				zap.L().Warn("Release reconcile lock failed", zap.Error(err))
			}
		}()
	}
	return a.Reconciler.Run(ctx)
}

func (a *App) Close() error {
	var errs []error
	if err := a.producer.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
