package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tdp/internal/config"
	"tdp/internal/modules/mdsubmission"
	"tdp/internal/repo/rprequest"
	"tdp/internal/server/handlers/ustvahandler"
	"tdp/internal/server/routers"
	"tdp/internal/services/svsubmission"
	redisinfra "tdp/pkg/infra/redis"
	"tdp/pkg/lmstfy"
	"tdp/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "config file path")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := rprequest.NewDB(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to connect mysql: %v", err)
	}
	repo := rprequest.NewRepository(db)

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	pubsub, err := redisinfra.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer pubsub.Close()

	submissionModule := mdsubmission.NewSubmissionModule(lmstfyClient, pubsub, cfg.Queue.Name, cfg.Queue.TTL)
	submissionService := svsubmission.NewSubmissionService(repo, submissionModule, zapLogger)
	handler := ustvahandler.NewUstvaHandler(submissionService, cfg.Server.MaxWait)

	engine := routers.SetupRoutes(handler)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(server, cfg.Server.ShutdownTimeout)
	case err := <-serverErrChan:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Application stopped")
}

func gracefulShutdown(server *http.Server, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}
}
