package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/oldmonad/cloudinv/internal/app"
	"github.com/oldmonad/cloudinv/pkg/config/env"
	cerrors "github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"github.com/oldmonad/cloudinv/pkg/ports/cli"
	"go.uber.org/zap"
)

const envFile = ".env"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// a missing .env is fine, the environment may already be populated
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cerrors.NewErrEnvLoad(envFile, err)
	}

	cfg, err := env.SetupConfigurations()
	if err != nil {
		return cerrors.NewErrConfigSetup(err)
	}
	defer func() { _ = logger.Log.Sync() }()

	appInstance := app.NewApp(*cfg)
	if err := cli.NewCommand(appInstance, cfg.HttpPort).Execute(); err != nil {
		logger.Log.Debug("Command failed", zap.Error(err))
		return err
	}
	return nil
}
