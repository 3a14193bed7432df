package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trellobot/api"
	"trellobot/database"
	"trellobot/integrations"
	"trellobot/internal/config"
	"trellobot/internal/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook receiver",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Invalid configuration", zap.Error(err))
	}

	db := database.Init(cfg.DatabasePath)
	sqlDB, _ := db.DB()

	router := gin.New()
	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	apiHandler := &api.Handler{
		DB:      db,
		Started: time.Now(),
	}
	router.POST("/webhook", apiHandler.TrelloWebhookHandler)
	router.HEAD("/webhook", apiHandler.TrelloWebhookHandler)
	router.GET("/webhook", apiHandler.TrelloWebhookHandler)
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/deliveries", apiHandler.ListDeliveriesHandler)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	zap.L().Info("Starting server", zap.String("port", cfg.Port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	// Give the server a moment to start
	time.Sleep(250 * time.Millisecond)

	trelloClient := integrations.NewTrelloClient(cfg.TrelloAPIKey, cfg.TrelloToken, cfg.CallbackURL())

	webhookIDs := make(map[string]string)
	if len(cfg.BoardIDs) > 0 {
		zap.L().Info("Registering Trello webhook for boards", zap.Strings("boardIDs", cfg.BoardIDs))

		for _, boardID := range cfg.BoardIDs {
			webhook, err := trelloClient.RegisterWebhook(context.Background(), boardID)
			if err != nil {
				zap.L().Fatal("Failed to register webhook on startup for board", zap.String("boardID", boardID), zap.Error(err))
			}
			row := models.Webhook{
				ID:          webhook.ID,
				BoardID:     boardID,
				CallbackURL: cfg.CallbackURL(),
				Description: webhook.Description,
			}
			if result := db.Save(&row); result.Error != nil {
				zap.L().Error("Failed to record registered webhook", zap.String("webhookID", webhook.ID), zap.Error(result.Error))
			}
			webhookIDs[boardID] = webhook.ID
		}
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}

		for boardID, webhookID := range webhookIDs {
			if err := trelloClient.DeleteWebhook(context.Background(), webhookID); err != nil {
				zap.L().Error("Error deleting webhook for board", zap.String("boardID", boardID), zap.Error(err))
			} else {
				if result := db.Delete(&models.Webhook{ID: webhookID}); result.Error != nil {
					zap.L().Error("Error removing webhook record", zap.String("webhookID", webhookID), zap.Error(result.Error))
				}
				zap.L().Info("Successfully deleted webhook for board", zap.String("boardID", boardID))
			}
		}

		if sqlDB != nil {
			if err := sqlDB.Close(); err != nil {
				zap.L().Error("Error closing database", zap.Error(err))
			} else {
				zap.L().Info("Database connection closed.")
			}
		}
		close(done)
	}

	go func() {
		sig := <-sigCh
		once.Do(func() {
			cleanup(sig.String())
		})

		// if a second signal is caught, exit immediately
		go func() {
			<-sigCh
			zap.L().Info("Second interrupt signal received. Exiting immediately.")
			os.Exit(1)
		}()
	}()

	<-done
	zap.L().Info("Exiting...")
}
