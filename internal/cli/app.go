// Package cli wires configuration, logging and use cases for the commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bnema/batchdl/internal/application/usecase"
	"github.com/bnema/batchdl/internal/cli/styles"
	"github.com/bnema/batchdl/internal/domain/build"
	"github.com/bnema/batchdl/internal/infrastructure/config"
	"github.com/bnema/batchdl/internal/infrastructure/diskspace"
	"github.com/bnema/batchdl/internal/infrastructure/filesystem"
	"github.com/bnema/batchdl/internal/infrastructure/httpfetch"
	"github.com/bnema/batchdl/internal/infrastructure/render"
	"github.com/bnema/batchdl/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config     *config.Config
	ConfigFile string
	Theme      *styles.Theme
	BuildInfo  build.Info

	// Use cases
	RunBatchUC *usecase.RunBatchUseCase

	// Context with logger
	ctx        context.Context
	console    *logging.ConsoleGate
	logCleanup func()
}

// NewApp builds the application from a loaded configuration manager.
func NewApp(mgr *config.Manager, info build.Info) (*App, error) {
	cfg := mgr.Get()

	logger, console, logCleanup, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	ctx := logging.WithContext(context.Background(), logger)

	minFree, err := cfg.Download.MinFreeSpaceBytes()
	if err != nil {
		logCleanup()
		return nil, err
	}

	userAgent := cfg.Download.UserAgent
	if userAgent == "" {
		userAgent = info.UserAgent()
	}

	fs := filesystem.New()
	downloader := usecase.NewDownloadFileUseCase(
		httpfetch.New(nil, userAgent),
		fs,
		NewEventLogger(),
	)
	runBatch := usecase.NewRunBatchUseCase(downloader, fs, usecase.RunBatchOptions{
		Placeholder:  cfg.Download.PlaceholderName,
		MinFreeSpace: minFree,
		DiskSpace:    diskspace.New(),
	})

	return &App{
		Config:     cfg,
		ConfigFile: mgr.ConfigFileUsed(),
		Theme:      styles.NewTheme(),
		BuildInfo:  info,
		RunBatchUC: runBatch,
		ctx:        ctx,
		console:    console,
		logCleanup: logCleanup,
	}, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, *logging.ConsoleGate, func(), error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
	logCfg.Format = cfg.Logging.Format

	fileCfg := logging.FileConfig{
		Enabled:    cfg.Logging.EnableFileLog,
		Dir:        cfg.Logging.LogDir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
	if fileCfg.Enabled && fileCfg.Dir == "" {
		dir, err := config.GetLogDir()
		if err != nil {
			return zerolog.Nop(), nil, nil, fmt.Errorf("resolve log directory: %w", err)
		}
		fileCfg.Dir = dir
	}

	logger, console, cleanup, err := logging.NewWithFile(logCfg, fileCfg, nil)
	if err != nil {
		return zerolog.Nop(), nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger, console, cleanup, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.logCleanup != nil {
		a.logCleanup()
	}
	return nil
}

// Context returns the root context carrying the application logger.
func (a *App) Context() context.Context {
	return a.ctx
}

// NewDisplay creates the progress display configured for w. A live display
// mutes console logs below error until it is closed; failures still reach
// the summary and the log file.
func (a *App) NewDisplay(w io.Writer) (render.Display, error) {
	mode, err := render.ParseMode(string(a.Config.Display.Mode))
	if err != nil {
		return nil, err
	}
	mode = render.Resolve(mode, w)

	display, err := render.New(mode, w, render.Options{
		BarWidth:  a.Config.Display.BarWidth,
		LogFormat: a.Config.Logging.Format,
	})
	if err != nil {
		return nil, err
	}
	if !mode.Live() || a.console == nil {
		return display, nil
	}
	return &mutedDisplay{Display: display, unmute: a.console.Mute()}, nil
}

// mutedDisplay unmutes the console once the display is closed.
type mutedDisplay struct {
	render.Display
	unmute func()
}

func (d *mutedDisplay) Close() error {
	defer d.unmute()
	return d.Display.Close()
}
