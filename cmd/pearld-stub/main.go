package main

import (
	"os"

	"github.com/pearldata/pearlctl/internal/config"
	"github.com/pearldata/pearlctl/internal/pkg/logger"
	"github.com/pearldata/pearlctl/internal/stub"
)

func main() {
	configPath := os.Getenv("PEARL_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "console",
	})

	srv := stub.New(stub.Config{
		Port:      cfg.Stub.Port,
		JWTSecret: cfg.Stub.JWTSecret,
		TokenTTL:  cfg.StubTokenExpiration(),
	}, logger.Default())

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}
