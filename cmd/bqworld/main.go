package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1jgo/bqworld/internal/config"
	"github.com/l1jgo/bqworld/internal/core/event"
	coresys "github.com/l1jgo/bqworld/internal/core/system"
	"github.com/l1jgo/bqworld/internal/data"
	"github.com/l1jgo/bqworld/internal/handler"
	gonet "github.com/l1jgo/bqworld/internal/net"
	"github.com/l1jgo/bqworld/internal/net/packet"
	"github.com/l1jgo/bqworld/internal/observe"
	"github.com/l1jgo/bqworld/internal/persist"
	"github.com/l1jgo/bqworld/internal/scripting"
	"github.com/l1jgo/bqworld/internal/system"
	"github.com/l1jgo/bqworld/internal/world"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("BQWORLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.WorldID)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Metrics
	var metrics *observe.Metrics
	if cfg.Metrics.Enabled {
		mp, shutdownMetrics, err := observe.InitProvider(sigCtx, observe.ProviderConfig{
			ServiceName:    cfg.Server.Name,
			ServiceVersion: version,
		})
		if err != nil {
			return fmt.Errorf("metrics provider: %w", err)
		}
		defer shutdownMetrics(context.Background())
		if metrics, err = observe.NewMetrics(mp); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// 4. Static data
	printSection("Data")
	cat, err := data.LoadCatalog(cfg.Data.YAMLDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("Item kinds", cat.Items.Count())
	printStat("Mob kinds", cat.Mobs.Count())
	printStat("Npc kinds", cat.Npcs.Count())

	worldMap, err := data.LoadWorldMap(cfg.Data.MapFile, cat)
	if err != nil {
		return fmt.Errorf("load world map: %w", err)
	}
	printStat("Zone groups", len(worldMap.Groups()))

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()
	printOK("Lua formulas loaded")
	fmt.Println()

	// 5. World
	printSection("World")
	seed := time.Now().UnixNano()
	engine.Seed(seed)
	w := world.New(cfg.Server.WorldID, worldMap, event.NewBus(), rand.New(rand.NewSource(seed)), log)
	spawn := system.NewSpawnManager(w, cat, worldMap, cfg.World, log)
	combat := system.NewCombatResolver(w, cat, engine, spawn, cfg.World, metrics, log)
	if err := spawn.Start(); err != nil {
		return fmt.Errorf("populate world: %w", err)
	}
	mobAreas, chestAreas := spawn.Areas()
	printStat("Mobs", w.Entities.Count(world.TypeMob))
	printStat("Npcs", w.Entities.Count(world.TypeNpc))
	printStat("Items", w.Entities.Count(world.TypeItem))
	printStat("Mob areas", len(mobAreas))
	printStat("Chest areas", len(chestAreas))
	fmt.Println()

	g, gctx := errgroup.WithContext(context.Background())

	// 6. Character store
	var (
		saver  *system.Saver
		loader handler.Loader
		loads  <-chan system.LoadResult
	)
	saverCtx, stopSaver := context.WithCancel(context.Background())
	defer stopSaver()
	if cfg.Database.Enabled {
		printSection("Database")
		dbCtx, cancel := context.WithTimeout(sigCtx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")
		applied, err := persist.RunMigrations(dbCtx, db.Pool, log)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("Migrations applied (%d new)", applied))
		fmt.Println()

		repo := persist.NewCharacterRepo(db, cfg.Auth.BcryptCost, cfg.Auth.RequirePassword)
		saver = system.NewSaver(repo, cfg.Database, metrics, log)
		loader, loads = saver, saver.Results()
		g.Go(func() error { return saver.Run(saverCtx) })
	}

	// 7. Handlers
	sessions := gonet.NewSessionStore()
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config:   cfg,
		Log:      log,
		World:    w,
		Catalog:  cat,
		Combat:   combat,
		Spawn:    spawn,
		Sessions: sessions,
		Metrics:  metrics,
		Loader:   loader,
	}
	handler.RegisterAll(pktReg, deps)

	// 8. Network
	netServer := gonet.NewServer(gonet.SessionOptions{
		InQueueSize:    cfg.Network.InQueueSize,
		OutQueueSize:   cfg.Network.OutQueueSize,
		MaxMessageSize: cfg.Network.MaxMessageSize,
		WriteTimeout:   cfg.Network.WriteTimeout,
		ReadTimeout:    cfg.Network.ReadTimeout,
	}, log)
	mux := http.NewServeMux()
	mux.Handle(cfg.Network.Path, netServer)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	}
	httpSrv := &http.Server{
		Addr:              cfg.Network.BindAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// 9. Systems
	runner := coresys.NewRunner(log)
	inputSys := system.NewInputSystem(netServer, pktReg, sessions, cfg.Network.MaxPacketsPerTick, loads, log)
	inputSys.OnDisconnect = func(sess *gonet.Session) { handler.HandleDisconnect(sess, deps) }
	inputSys.OnLoaded = func(sess *gonet.Session, res system.LoadResult) { handler.FinishLoad(sess, res, deps) }
	runner.Register(inputSys)
	runner.Register(system.NewTimerSystem(w))
	runner.Register(system.NewRegenSystem(combat, cfg.World.RegenInterval()))
	runner.Register(system.NewZoneFlushSystem(w, metrics))
	runner.Register(system.NewOutputSystem(w, metrics))
	var persistSys *system.PersistenceSystem
	if saver != nil {
		persistSys = system.NewPersistenceSystem(w, saver, cfg.Database.SaveEveryTicks, log)
		runner.Register(persistSys)
	}

	// 10. Game loop
	printSection("Ready")
	printReady(fmt.Sprintf("Listening on %s%s", cfg.Network.BindAddress, cfg.Network.Path))
	printReady(fmt.Sprintf("Game loop running (tick: %s)", cfg.World.TickRate))
	fmt.Println()

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ticker.C:
			start := time.Now()
			runner.Tick(cfg.World.TickRate)
			metrics.RecordTick(time.Since(start))
		case <-sigCtx.Done():
			log.Info("shutdown signal received")
			break loop
		case <-gctx.Done():
			log.Error("background service stopped", zap.Error(context.Cause(gctx)))
			break loop
		}
	}

	if persistSys != nil {
		persistSys.SaveAllPlayers()
	}
	netServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	stopSaver()
	err = g.Wait()
	log.Info("server stopped", zap.Uint64("ticks", runner.Ticks()))
	return err
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

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
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
