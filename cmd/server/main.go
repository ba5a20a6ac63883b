package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/mc-attributes/internal/server"
	"github.com/OCharnyshevich/mc-attributes/internal/server/config"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	listAttributes := flag.Bool("list-attributes", false, "print the attribute registry and exit")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "server port")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for saved entities")
	flag.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend (file|sqlite)")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "ticks per second")
	flag.IntVar(&cfg.SyncInterval, "sync-interval", cfg.SyncInterval, "ticks between attribute sync passes")
	flag.IntVar(&cfg.SaveInterval, "save-interval", cfg.SaveInterval, "ticks between saves (0 saves only on shutdown)")
	flag.StringVar(&cfg.AttributesFile, "attributes", cfg.AttributesFile, "YAML file with extra or overriding attribute definitions")
	flag.StringVar(&cfg.GameDataFile, "game-data", cfg.GameDataFile, "minecraft-data attributes.json to import")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	flag.IntVar(&cfg.Ocelots, "ocelots", cfg.Ocelots, "ocelots spawned when storage is empty")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	// Precedence: flags > environment > config file > defaults.
	fileCfg := config.DefaultConfig()
	if err := config.LoadFile(*configPath, fileCfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.ParseEnv(fileCfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	config.Merge(cfg, fileCfg, explicit)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if *listAttributes {
		reg, err := server.BuildRegistry(cfg, log)
		if err != nil {
			log.Error("build attribute registry", "error", err)
			os.Exit(1)
		}
		for _, a := range reg.All() {
			fmt.Printf("%4d  %-36s min=%g max=%g default=%g syncable=%t\n",
				a.ID(), a.Name(), a.Min(), a.Max(), a.Default(), a.Syncable())
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Error("create server", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
