package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ourxmas/payment-service/internal/config"
	"github.com/ourxmas/payment-service/internal/handler"
	"github.com/ourxmas/payment-service/internal/middleware"
	"github.com/ourxmas/payment-service/internal/repository"
	"github.com/ourxmas/payment-service/internal/service"
	"github.com/ourxmas/payment-service/internal/utils/email"
)

func main() {
	// .env is optional; environment variables win either way
	godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	var notifier service.Notifier
	if cfg.NotificationsEnabled() {
		notifier = email.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, notifier, logger)
	h := handler.NewHandler(svc, logger, cfg.Version)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.LoggingMiddleware(logger))

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/ready", h.Ready).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	webhookRouter := api.PathPrefix("/webhook").Subrouter()
	webhookRouter.Use(middleware.APIKeyMiddleware(cfg))
	webhookRouter.HandleFunc("/sepay", h.Webhook).Methods("POST")

	api.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions/export", h.ExportTransactions).Methods("GET")
	api.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")

	api.HandleFunc("/user-sessions", h.CreateUserSession).Methods("POST")
	api.HandleFunc("/user-sessions", h.ListUserSessions).Methods("GET")
	api.HandleFunc("/user-sessions/count/total", h.CountUserSessions).Methods("GET")
	api.HandleFunc("/user-sessions/phone/{phone}", h.GetUserSessionsByPhone).Methods("GET")
	api.HandleFunc("/user-sessions/{id}", h.GetUserSession).Methods("GET")
	api.HandleFunc("/user-sessions/{id}", h.UpdateUserSession).Methods("PUT")
	api.HandleFunc("/user-sessions/{id}", h.DeleteUserSession).Methods("DELETE")

	// Daily transaction summary at midnight
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 0 * * *", func() {
		svc.LogDailySummary(time.Now().AddDate(0, 0, -1))
	}); err != nil {
		logger.Fatalf("Failed to schedule daily summary: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
