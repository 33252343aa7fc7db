package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/soocke/fastlabel-go/app"
	"github.com/soocke/fastlabel-go/config"
	"github.com/soocke/fastlabel-go/detector"
	"github.com/soocke/fastlabel-go/domain/labels"
	"github.com/soocke/fastlabel-go/headless"
	"github.com/soocke/fastlabel-go/ui/images"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path of the JSON config file")
	dir := flag.String("dir", "", "image folder to open")
	scan := flag.Bool("scan", false, "detect boxes in every image of -dir without a window and exit")
	debugFlag := flag.Bool("debug", false, "verbose logging and periodic runtime stats")
	flag.Parse()

	envErr := godotenv.Load()
	cfg, cfgErr := config.Load(*cfgPath)
	cfg.ApplyEnv()
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn(".env not loaded", "error", envErr)
	}
	if cfgErr != nil {
		logger.Warn("config not loaded, using defaults", "path", *cfgPath, "error", cfgErr)
	}

	if *scan {
		if err := runScan(cfg, *dir, logger); err != nil {
			logger.Error("scan failed", "error", err)
			os.Exit(1)
		}
		return
	}

	application := app.NewApp(cfg, *cfgPath, *dir, logger)
	application.Start()
}

func runScan(cfg *config.Config, dir string, logger *slog.Logger) error {
	if dir == "" {
		return errors.New("-scan needs -dir")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	s := &headless.Scanner{
		Logger: logger,
		Runner: detector.NewWorker(cfg, logger, images.NewCache(logger, cfg.ImageCacheSize).Load),
		Store:  labels.NewStore(cfg.LabelDir),
		Out:    os.Stdout,
	}
	_, err := s.Run(ctx, dir)
	return err
}
