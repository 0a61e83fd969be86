package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"flightdelay/db"
	qhttp "flightdelay/http"
	"flightdelay/logger"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
	Training qhttp.TrainingConfig `yaml:"training"`
	Log      logger.Config        `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logger
	zlog, err := logger.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	zlog.Info("database initialized", zap.String("path", config.Database.Path))

	// 4. Load the model artifact. Serving without a model is not an option,
	// so a missing or corrupt artifact is fatal at startup.
	artifact, err := ml.LoadArtifact(config.Model.Path)
	if err != nil {
		zlog.Fatal("failed to load model artifact", zap.String("path", config.Model.Path), zap.Error(err))
	}
	store := ml.NewStore(artifact)
	zlog.Info("model artifact loaded",
		zap.String("name", artifact.ModelName),
		zap.Time("trained_at", artifact.TrainedAt),
		zap.Int("data_points", artifact.DataPoints))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Hot-reload the artifact when it is replaced on disk
	go func() {
		if err := store.Watch(ctx, config.Model.Path, zlog); err != nil && ctx.Err() == nil {
			zlog.Warn("model watcher stopped", zap.Error(err))
		}
	}()

	// 6. Monitoring feed
	hub := monitoring.NewHub(zlog)
	go hub.Run(ctx)

	// 7. Start HTTP server
	api, err := qhttp.NewAPI(store, zlog, hub, config.Training)
	if err != nil {
		zlog.Fatal("failed to build API", zap.Error(err))
	}
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	server := qhttp.NewServer(serverConfig, api)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 8. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		zlog.Warn("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
