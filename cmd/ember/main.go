package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/embercore/ember/internal/asset"
	"github.com/embercore/ember/internal/config"
	"github.com/embercore/ember/internal/engine"
	"github.com/embercore/ember/internal/persist"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCmd() *cobra.Command {
	cfgPath := "config/ember.toml"
	if p := os.Getenv("EMBER_CONFIG"); p != "" {
		cfgPath = p
	}

	root := &cobra.Command{
		Use:     "ember",
		Short:   "Ember real-time engine",
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "path to config file")
	root.AddCommand(newHistoryCmd(&cfgPath))
	return root
}

func newHistoryCmd(cfgPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scene saves (postgres backend only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return history(*cfgPath, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of saves to list")
	return cmd
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, level, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bound the assembly phase; the postgres backend connects here.
	newCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rt, err := engine.New(newCtx, cfg, log, engine.Options{
		ConfigPath: cfgPath,
		Level:      level,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.Run(ctx)
}

func history(cfgPath string, limit int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Persistence.Backend != "postgres" {
		return fmt.Errorf("save history requires the postgres backend, config uses %q", cfg.Persistence.Backend)
	}
	scenePath, err := asset.NewResolver(cfg.Engine.AssetDir).Path(cfg.Scene.Name)
	if err != nil {
		return fmt.Errorf("scene.name: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Persistence, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := persist.NewHistoryRepo(db).Recent(ctx, scenePath, limit)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Printf("no saves recorded for %s\n", scenePath)
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %8d bytes  %s\n", e.SavedAt.Format("2006-01-02 15:04:05"), e.Size, e.Path)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	atom := zap.NewAtomicLevelAt(level)

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = atom

	log, err := zapCfg.Build()
	if err != nil {
		return nil, atom, err
	}
	return log, atom, nil
}
