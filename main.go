package main

import (
	"embed"
	"flag"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"restui/internal/config"
	"restui/internal/logger"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := flag.String("config", os.Getenv("RESTUI_CONFIG"), "path to config file (yaml or toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Writers:    cfg.Log.Writer,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}

	return wails.Run(&options.App{
		Title:  "restui",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind:       app.bindings(),
		Logger:     logger.NewWailsAdapter(log),
		LogLevel:   wailsLevel(cfg.Log.Level),
	})
}

func wailsLevel(level string) wailslogger.LogLevel {
	switch level {
	case "trace":
		return wailslogger.TRACE
	case "debug":
		return wailslogger.DEBUG
	case "warn", "warning":
		return wailslogger.WARNING
	case "error":
		return wailslogger.ERROR
	default:
		return wailslogger.INFO
	}
}
