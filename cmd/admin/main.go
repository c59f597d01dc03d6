package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-account-service/internal/core/cache"
	"go-account-service/internal/core/config"
	"go-account-service/internal/core/database"
	"go-account-service/internal/core/logger"
	"go-account-service/internal/core/server"
	"go-account-service/internal/domain"
	"go-account-service/internal/repo"
	"go-account-service/internal/service"
	"go-account-service/internal/token"
	"go-account-service/internal/transport/http/router"
)

func main() {
	var (
		bootstrapEmail    = flag.String("create-superuser", "", "create a superuser with this email and exit")
		bootstrapPassword = flag.String("password", "", "password for -create-superuser")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Token{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
	}

	svc := buildAccountService(cfg, db, log)

	// Bootstrap mode: the first superuser has to come from somewhere
	// other than the staff-guarded HTTP surface.
	if *bootstrapEmail != "" {
		u, err := svc.CreateSuperuser(context.Background(), *bootstrapEmail, *bootstrapPassword)
		if err != nil {
			log.Fatal("create superuser failed", zap.Error(err))
		}
		log.Info("superuser created", zap.String("id", u.ID), zap.String("email", u.Email))
		return
	}

	r := router.NewAdminEngine(log, svc)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	log.Info("admin api starting", zap.String("addr", addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

func buildAccountService(cfg *config.Config, db *gorm.DB, log *zap.Logger) *service.AccountService {
	var c *cache.Cache
	if cfg.Redis.Enable {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	users := repo.NewUserRepo(db)
	tokens := repo.NewTokenRepo(db)
	issuer := token.NewIssuer(tokens, users, c,
		cfg.Auth.TokenBytes,
		time.Duration(cfg.Auth.TokenCacheTTLSec)*time.Second,
	)
	return service.NewAccountService(users, issuer, cfg.Auth.MinPasswordLen, log)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
