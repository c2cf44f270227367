package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/podcast-content/internal/cleanup"
	"github.com/codebuildervaibhav/podcast-content/internal/generate"
	"github.com/codebuildervaibhav/podcast-content/internal/handlers"
	"github.com/codebuildervaibhav/podcast-content/internal/queue"
	"github.com/codebuildervaibhav/podcast-content/internal/storage"
)

// Config represents the dev server configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Processing struct {
		DelaySeconds int `yaml:"delay_seconds"`
	} `yaml:"processing"`

	Storage struct {
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
		Database  string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Server.Port = 8000
	cfg.Server.Host = "0.0.0.0"
	cfg.Workers.Count = 2
	cfg.Processing.DelaySeconds = 10
	cfg.Storage.TempDir = "temp"
	cfg.Storage.OutputDir = "output"
	cfg.Storage.Database = "devserver.db"
	cfg.Cleanup.IntervalMinutes = 60
	cfg.Cleanup.MaxAgeHours = 24
	cfg.Limits.MaxFileSizeMB = 20
	return cfg
}

// loadConfig loads configuration from a YAML file, using defaults when
// the file is absent.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "config/devserver.yaml", "config file path")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureDirs(config.Storage.TempDir, config.Storage.OutputDir); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}
	if dir := filepath.Dir(config.Storage.Database); dir != "." {
		if err := cleanup.EnsureDirs(dir); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	log.Println("Initializing components...")

	store, err := storage.NewJobStore(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize job store: %v", err)
	}
	defer store.Close()

	generator := generate.NewGenerator(config.Storage.OutputDir)

	workerPool := queue.NewWorkerPool(config.Workers.Count, generator, store)
	workerPool.ProcessingDelay = time.Duration(config.Processing.DelaySeconds) * time.Second
	workerPool.Start()

	cleanupScheduler := cleanup.NewScheduler(
		[]string{config.Storage.TempDir, config.Storage.OutputDir},
		time.Duration(config.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(config.Cleanup.MaxAgeHours)*time.Hour,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: (config.Limits.MaxFileSizeMB + 1) * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	uploadHandler := handlers.NewUploadHandler(workerPool, store, config.Storage.TempDir)
	statusHandler := handlers.NewStatusHandler(store)
	downloadHandler := handlers.NewDownloadHandler(config.Storage.OutputDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/api/upload", uploadHandler.Handle)
	app.Get("/api/status/:job_id", statusHandler.Handle)
	app.Get("/api/download/:filename", downloadHandler.Handle)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Dev server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /api/upload               - Upload audio file")
	log.Println("   GET  /api/status/:job_id       - Check job status")
	log.Println("   GET  /api/download/:filename   - Download generated file")
	log.Println("   GET  /health                   - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
