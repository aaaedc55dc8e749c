package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"miniwiki/internal/archive"
	"miniwiki/internal/auth"
	"miniwiki/internal/config"
	apphttp "miniwiki/internal/http"
	"miniwiki/internal/repository/sqlite"
	"miniwiki/internal/service"
	"miniwiki/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.SessionSecret) == "" {
		logger.Fatalf("auth session secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := sqlite.NewAccountRepository(db)
	pageRepo := sqlite.NewPageRepository(db)

	if err := accountRepo.Init(ctx); err != nil {
		logger.Fatalf("init account repository: %v", err)
	}
	if err := pageRepo.Init(ctx); err != nil {
		logger.Fatalf("init page repository: %v", err)
	}

	hasher, err := buildHasher(cfg)
	if err != nil {
		logger.Fatalf("setup password hasher: %v", err)
	}
	tokens, err := buildTokenCodec(cfg)
	if err != nil {
		logger.Fatalf("setup session tokens: %v", err)
	}

	accountService := service.NewAccountService(accountRepo, hasher, tokens)
	pageService := service.NewPageService(pageRepo)

	var (
		storageSvc storage.Service
		archiver   archive.Manager
	)
	if cfg.Archive.Bucket != "" {
		storageSvc, err = buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup archive storage: %v", err)
		}
		archiver = archive.NewManager(archive.Config{
			MaxConcurrent: 2,
			UploadOptions: storage.UploadOptions{
				Bucket:    cfg.Archive.Bucket,
				KeyPrefix: cfg.Archive.KeyPrefix,
			},
			Logger: logger,
		}, storageSvc)
		if err := archiver.Start(ctx); err != nil {
			logger.Fatalf("start archiver: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		accountService,
		pageService,
		archiver,
		storageSvc,
		cfg.Archive.Bucket,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if archiver != nil {
		archiver.Shutdown()
	}

	logger.Info("bye")
}

func buildHasher(cfg config.Config) (auth.PasswordHasher, error) {
	switch cfg.Auth.PasswordHasher {
	case "", "hmac":
		return auth.NewHMACHasher(nil), nil
	case "argon2":
		return auth.NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", cfg.Auth.PasswordHasher)
	}
}

func buildTokenCodec(cfg config.Config) (auth.TokenCodec, error) {
	secret := strings.TrimSpace(cfg.Auth.SessionSecret)
	switch cfg.Auth.TokenCodec {
	case "", "hmac":
		return auth.NewHMACTokenCodec(secret, nil)
	case "jwt":
		ttl := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
		return auth.NewJWTTokenCodec(secret, ttl)
	default:
		return nil, fmt.Errorf("unknown token codec %q", cfg.Auth.TokenCodec)
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Archive.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving revisions to s3 bucket %s (region %s)", cfg.Archive.Bucket, cfg.Archive.Region)
	return storage.NewS3Service(client), nil
}
