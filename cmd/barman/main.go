package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/lemonbar/manager/internal/bar"
	"github.com/lemonbar/manager/internal/control"
	"github.com/lemonbar/manager/internal/modules"
	"github.com/lemonbar/manager/pkg/config"
	"github.com/lemonbar/manager/pkg/logger"
)

func main() {
	var configPath string
	var debug bool
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.BoolVar(&debug, "debug", false, "dump the resolved configuration and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if debug {
		spew.Dump(cfg)
		return
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	states, closers, err := modules.Build(cfg.Modules, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to build modules", zap.Error(err))
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	renderer, err := bar.StartProcess(cfg.Bar.Command, cfg.Bar.Args, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to start renderer", zap.Error(err))
	}

	injected := bar.NewPushSource()

	sched, err := bar.New(renderer, states, zapLogger,
		bar.WithMaxIdle(cfg.Scheduler.MaxIdle),
		bar.WithControl(injected),
	)
	if err != nil {
		_ = renderer.Close()
		zapLogger.Fatal("Failed to create scheduler", zap.Error(err))
	}

	zapLogger.Info("Starting bar manager",
		zap.String("run_id", sched.RunID()),
		zap.Int("modules", len(states)))

	var ctrl *control.Server
	if cfg.Control.Enabled {
		ctrl = control.NewServer(sched, injected, zapLogger)
		go func() {
			zapLogger.Info("Starting control API", zap.Int("port", cfg.Control.Port))
			if err := ctrl.Serve(cfg.Control.Port); err != nil {
				zapLogger.Error("Control API failed", zap.Error(err))
			}
		}()
	}

	if rdb := control.ProvideRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		bridge := control.NewEventBridge(rdb, cfg.Redis.Channel, injected, zapLogger)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				zapLogger.Error("Redis event bridge failed", zap.Error(err))
			}
		}()
	}

	runErr := sched.Run(ctx)

	if ctrl != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ctrl.Shutdown(sctx); err != nil {
			zapLogger.Error("Failed to shutdown control API", zap.Error(err))
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		zapLogger.Fatal("Scheduler loop failed", zap.Error(runErr))
	}

	zapLogger.Info("Shutdown complete")
}
