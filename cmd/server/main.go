package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/resumeforge/forge/config"
	"github.com/resumeforge/forge/internal/api/v1/handlers"
	"github.com/resumeforge/forge/internal/app"
	"github.com/resumeforge/forge/internal/conversion"
	"github.com/resumeforge/forge/internal/db"
	"github.com/resumeforge/forge/internal/db/repos"
	"github.com/resumeforge/forge/internal/generation"
	"github.com/resumeforge/forge/internal/logger"
	"github.com/resumeforge/forge/internal/services"
	"github.com/resumeforge/forge/internal/storage"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()
	logger.Initialize()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.New(db.OptionsFromEnv())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	jobRepo := repos.NewJobRepository(database)

	masterTemplate, err := generation.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		logger.Fatalf("Failed to load master template: %v", err)
	}

	generator, err := generation.NewClient(cfg.OpenAIAPIKey, cfg.Model, masterTemplate)
	if err != nil {
		logger.Fatalf("Failed to create generation client: %v", err)
	}

	converter, err := conversion.NewClient(conversion.Options{
		BaseURL: cfg.ConvertBaseURL,
		APIKey:  cfg.ConvertAPIKey,
	})
	if err != nil {
		logger.Fatalf("Failed to create conversion client: %v", err)
	}

	store, err := storage.New(ctx, cfg.ArtifactBucket, cfg.ArtifactBaseURL)
	if err != nil {
		logger.Fatalf("Failed to create artifact store: %v", err)
	}

	jobService := services.NewJobService(jobRepo)
	worker := services.NewWorker(jobRepo, generator, converter, store, cfg)
	jobService.SetNotify(worker.Wake)

	var wg sync.WaitGroup
	wg.Add(1)
	go worker.Run(ctx, &wg)

	fiberApp := app.New(handlers.NewJobHandler(jobService))

	go func() {
		<-ctx.Done()
		if err := fiberApp.Shutdown(); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
		}
	}()

	logger.Infof("Listening on %s", cfg.ListenAddress)
	if err := fiberApp.Listen(cfg.ListenAddress); err != nil {
		logger.Errorf("Server error: %v", err)
	}

	stop()
	wg.Wait()
}
