package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/OCharnyshevich/mc-attributes/internal/server/attrsync"
	"github.com/OCharnyshevich/mc-attributes/internal/server/config"
	"github.com/OCharnyshevich/mc-attributes/internal/server/conn"
	"github.com/OCharnyshevich/mc-attributes/internal/server/storage"
	"github.com/OCharnyshevich/mc-attributes/internal/server/world"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/gamedata"
)

// extraAttributeBase is the first id given to attributes imported from
// minecraft-data that are not builtins.
const extraAttributeBase = 100

// Server accepts operator connections and runs the world.
type Server struct {
	cfg   *config.Config
	log   *slog.Logger
	store storage.Store
	world *world.World
}

// New initializes the attribute registry, opens storage and restores the
// saved entities.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	reg, err := BuildRegistry(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	w := world.New(cfg, log, reg, attrsync.New(log), store)
	if err := w.Load(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &Server{
		cfg:   cfg,
		log:   log,
		store: store,
		world: w,
	}, nil
}

// BuildRegistry fills the process-wide registry with the builtins, the
// extra attributes of cfg.GameDataFile and the overrides of
// cfg.AttributesFile, then freezes it. Once frozen it is returned as is.
func BuildRegistry(cfg *config.Config, log *slog.Logger) (*attribute.Registry, error) {
	attribute.Init()
	reg := attribute.Default()
	if reg.Frozen() {
		return reg, nil
	}
	if err := Configure(reg, cfg, log); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}

// Configure adds the minecraft-data extras and the YAML overrides named by
// cfg to reg.
func Configure(reg *attribute.Registry, cfg *config.Config, log *slog.Logger) error {
	if cfg.GameDataFile != "" {
		data, err := gamedata.LoadAttributes(cfg.GameDataFile)
		if err != nil {
			return err
		}
		known := func(resource string) bool {
			_, ok := reg.ByName(resource)
			return ok
		}
		extras := gamedata.Definitions(data, extraAttributeBase, known)
		if err := reg.AddDefinitions(extras); err != nil {
			return fmt.Errorf("register game data attributes: %w", err)
		}
		log.Info("registered game data attributes", "file", cfg.GameDataFile, "count", len(extras))
	}

	if cfg.AttributesFile != "" {
		overrides, err := config.LoadAttributeOverrides(cfg.AttributesFile)
		if err != nil {
			return err
		}
		if err := reg.AddDefinitions(overrides); err != nil {
			return fmt.Errorf("register attribute overrides: %w", err)
		}
		log.Info("registered attribute overrides", "file", cfg.AttributesFile, "count", len(overrides))
	}
	return nil
}

// World returns the server's world.
func (s *Server) World() *world.World { return s.world }

// Start begins listening for connections and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.store.Close()
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve runs the world and accepts connections on listener until ctx is
// cancelled. The world is saved and storage closed before it returns.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	worldDone := make(chan error, 1)
	go func() { worldDone <- s.world.Run(ctx) }()

	s.log.Info("server started",
		"addr", listener.Addr().String(),
		"storage", s.cfg.Storage,
		"tickRate", s.cfg.TickRate,
		"attributes", s.world.Registry().Len(),
	)

	// Close listener when context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		c, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("server shutting down")
				break
			}
			s.log.Error("accept connection", "error", err)
			continue
		}

		connection := conn.NewConnection(ctx, c, s.log, s.world)
		go connection.Handle()
	}

	runErr := <-worldDone
	if err := s.store.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close storage: %w", err)
	}
	return runErr
}
