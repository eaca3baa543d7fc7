package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	api "github.com/keyfold/keyfold-server/internal/api/http"
	"github.com/keyfold/keyfold-server/internal/config"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
	"github.com/keyfold/keyfold-server/internal/permission"
	"github.com/keyfold/keyfold-server/internal/repository/postgres"
	"github.com/keyfold/keyfold-server/internal/server"
	"github.com/keyfold/keyfold-server/internal/service"
	"github.com/keyfold/keyfold-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	orgRepo := postgres.NewOrgRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	consumerKeyRepo := postgres.NewConsumerKeyRepository(db)
	projectKeyRepo := postgres.NewProjectKeyRepository(db)
	consumerSecretRepo := postgres.NewConsumerSecretRepository(db)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	permissions := permission.New(orgRepo, projectRepo)

	orgService := service.NewOrg(userRepo, []byte(cfg.EncryptionKey), logger)
	consumerKeyService := service.NewConsumerKey(db, consumerKeyRepo, userRepo, orgService, permissions, logger)
	projectKeyService := service.NewProjectKey(db, projectKeyRepo, projectRepo, userRepo, permissions, logger)
	consumerSecretService := service.NewConsumerSecret(consumerSecretRepo, permissions, logger)

	router := api.NewRouter(api.RouterParams{
		TokenManager:   tokenManager,
		ConsumerKeys:   consumerKeyService,
		ProjectKeys:    projectKeyService,
		ConsumerSecret: consumerSecretService,
		Logger:         logger,
	})

	httpServer := server.NewHTTPServer(router, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
