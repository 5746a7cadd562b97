// Package main provides the game server binary: it loads content, opens the
// character store, and serves the game over websockets.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/config"
	"github.com/thornvale/mud/internal/frontend/ws"
	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/combat"
	"github.com/thornvale/mud/internal/game/command"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/enemy"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/loop"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/game/session"
	"github.com/thornvale/mud/internal/game/world"
	"github.com/thornvale/mud/internal/observability"
	"github.com/thornvale/mud/internal/server"
	"github.com/thornvale/mud/internal/storage/file"
	"github.com/thornvale/mud/internal/storage/postgres"
)

// Exit codes.
const (
	exitOK      = 0
	exitContent = 1
	exitConfig  = 2
	exitRuntime = 3
)

// characterStore is the persistence surface shared by the frontend, the
// command router, and the combat engine. Both the plain file store and the
// postgres-mirrored store satisfy it.
type characterStore interface {
	Authenticate(name, password string) (*character.Character, error)
	Create(name, password string, loc character.Location) (*character.Character, error)
	Save(c *character.Character) error
	SetPassword(c *character.Character, newPassword string) error
}

func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return exitConfig
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting game server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("contentDir", cfg.Content.Dir),
		zap.String("playersDir", cfg.Players.Dir),
	)

	// Load and validate the content tree.
	contentStart := time.Now()
	store, err := content.Load(cfg.Content.Dir)
	if err != nil {
		logger.Error("loading content", zap.String("dir", cfg.Content.Dir), zap.Error(err))
		return exitContent
	}
	counts := store.Counts()
	logger.Info("content loaded",
		zap.Int("areas", counts.Areas),
		zap.Int("rooms", counts.Rooms),
		zap.Int("items", counts.Items),
		zap.Int("npcs", counts.NPCs),
		zap.Int("enemies", counts.Enemies),
		zap.Int("quests", counts.Quests),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// The starting room must exist in the loaded world.
	if _, ok := store.Room(cfg.Game.DefaultRespawnRoom); !ok {
		logger.Error("default respawn room not found in content",
			zap.String("room", cfg.Game.DefaultRespawnRoom))
		return exitContent
	}

	// Open the character store; files are the source of truth.
	files, err := file.NewStore(cfg.Players.Dir, cfg.Game.SaveRetries, logger)
	if err != nil {
		logger.Error("opening character store", zap.String("dir", cfg.Players.Dir), zap.Error(err))
		return exitRuntime
	}

	lifecycle := server.NewLifecycle(logger)

	// Optional postgres mirror: character snapshots are shadowed to a
	// queryable table, never read back at runtime.
	var chars characterStore = files
	if cfg.Database.Enabled {
		dbStart := time.Now()
		if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
			logger.Error("applying database migrations", zap.Error(err))
			return exitRuntime
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connecting to database", zap.Error(err))
			return exitRuntime
		}
		logger.Info("character mirror connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		chars = postgres.NewMirroredStore(files, postgres.NewCharacterMirror(pool.DB()), logger)

		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for range ticker.C {
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
				return nil
			},
			StopFn: func() {
				pool.Close()
			},
		})
	}

	// Game state and services.
	enemies := enemy.NewManager()
	w := world.NewState(store, enemies, logger)
	inv := inventory.NewService(store, cfg.Game.InventoryCapacity)
	quests := quest.NewService(store, inv)
	respawns := enemy.NewRespawnQueue()
	sessions := session.NewRegistry(logger)
	bus := event.NewBus(sessions, logger)

	engine := combat.NewEngine(store, w, inv, quests, respawns, sessions, chars,
		cfg.Game, rand.New(rand.NewSource(time.Now().UnixNano())), logger)

	var gameLoop *loop.Loop
	router, err := command.NewRouter(command.Deps{
		Content:    store,
		World:      w,
		Inventory:  inv,
		Quests:     quests,
		Combat:     engine,
		Sessions:   sessions,
		Characters: chars,
		Cfg:        cfg.Game,
		Logger:     logger,
		OnQuit: func(s *session.Session) {
			// Runs on the loop goroutine mid-dispatch; the removal is
			// queued so the farewell events drain to the outbox first.
			go func() { _ = gameLoop.Submit(func() { sessions.Remove(s.ID) }) }()
		},
	})
	if err != nil {
		logger.Error("building command router", zap.Error(err))
		return exitRuntime
	}

	gameLoop = loop.New(loop.Deps{
		Router:     router,
		Bus:        bus,
		Sessions:   sessions,
		Engine:     engine,
		World:      w,
		Respawns:   respawns,
		Inventory:  inv,
		Characters: chars,
		Cfg:        cfg.Game,
		Logger:     logger,
	})

	loopCtx, stopLoop := context.WithCancel(ctx)
	lifecycle.Add("gameloop", &server.FuncService{
		StartFn: func() error { return gameLoop.Run(loopCtx) },
		StopFn:  stopLoop,
	})

	frontend := ws.NewServer(gameLoop, chars, sessions, cfg.Server, cfg.Game, logger)
	lifecycle.Add("websocket", frontend)

	logger.Info("game server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return exitRuntime
	}
	return exitOK
}
