package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"skirmish/internal/adapter/errorsink"
	httpadapter "skirmish/internal/adapter/http"
	metricsinmem "skirmish/internal/adapter/metrics/inmemory"
	"skirmish/internal/adapter/replaylog"
	gormrepo "skirmish/internal/adapter/repo/gorm"
	"skirmish/internal/adapter/repo/memory"
	sqliterepo "skirmish/internal/adapter/repo/sqlite"
	staticschemas "skirmish/internal/adapter/schemas/static"
	"skirmish/internal/adapter/simulator"
	"skirmish/internal/adapter/ws"
	"skirmish/internal/app/gameaction"
	"skirmish/internal/app/observe"
	"skirmish/internal/app/ports"
	"skirmish/internal/app/replay"
	"skirmish/internal/app/schemas"
	"skirmish/internal/config"
	"skirmish/internal/domain/rules"
	"skirmish/migrations"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		hlog.Fatalf("config: %v", err)
	}
	config.ApplyLogLevel(cfg.LogLevel)

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		hlog.Fatalf("tuning: %v", err)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		hlog.Fatalf("store: %v", err)
	}
	defer st.close()

	registry := simulator.NewEngineRegistry(rules.NewEngine(tuning))
	defer registry.Close()
	archive := replaylog.NewWriter(filepath.Join(cfg.DataDir, "replays"))
	defer archive.Close()
	hub := ws.NewHub()
	defer hub.Close()
	kpiRecorder := metricsinmem.NewRecorder()

	manager := gameaction.NewManager(gameaction.Deps{
		TxManager:   st.tx,
		Games:       st.games,
		Log:         st.log,
		Archive:     archive,
		Hub:         hub,
		Errors:      &errorsink.Logger{Component: "gameaction"},
		Metrics:     kpiRecorder,
		TurnTimeout: cfg.TurnTimeout(),
	}, func(gameID string) ports.Simulator {
		return simulator.NewClient(registry, gameID)
	})
	if cfg.DevMutator != "" {
		hlog.Warnf("gameaction: every submission runs with mutator %s", cfg.DevMutator)
		manager.Mutator = cfg.DevMutator
	}
	manager.OnEvict = registry.Forget
	manager.OnError = func(err error) {
		hlog.Warnf("gameaction: submission failed: %v", err)
	}

	h := httpadapter.Handler{
		Games:       manager,
		ObserveUC:   observe.UseCase{Games: st.games},
		ReplayUC:    replay.UseCase{Log: st.log, TurnTimeout: cfg.TurnTimeout()},
		SchemasUC:   schemas.UseCase{Provider: staticschemas.Provider{Root: cfg.SchemasDir}},
		KPI:         kpiRecorder,
		CORSOrigins: cfg.CORSOrigins,
	}

	observers := &http.Server{Addr: cfg.ObserverAddr, Handler: observerMux(hub), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		hlog.Infof("skirmish observers listening on %s", cfg.ObserverAddr)
		if err := observers.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hlog.Errorf("observer server: %v", err)
		}
	}()
	defer observers.Shutdown(context.Background())

	s := server.Default(server.WithHostPorts(cfg.Addr))
	h.RegisterRoutes(s)

	hlog.Infof("skirmish server listening on %s (store=%s)", cfg.Addr, st.kind)
	s.Spin()
}

func observerMux(hub *ws.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/v1/observe", hub)
	return mux
}

type store struct {
	kind  string
	tx    ports.TxManager
	games ports.GameRepository
	log   ports.ActionLogRepository
	close func()
}

// openStore picks postgres when a DSN is set, then sqlite, then memory.
func openStore(ctx context.Context, cfg config.Server) (store, error) {
	switch {
	case cfg.DBDSN != "":
		db, err := gormrepo.OpenPostgres(cfg.DBDSN)
		if err != nil {
			return store{}, fmt.Errorf("open postgres: %w", err)
		}
		if err := gormrepo.ApplyMigrations(ctx, db, migrations.Postgres, "postgres"); err != nil {
			return store{}, fmt.Errorf("migrate postgres: %w", err)
		}
		return store{
			kind:  "postgres",
			tx:    gormrepo.NewTxManager(db),
			games: gormrepo.NewGameRepo(db),
			log:   gormrepo.NewActionLogRepo(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	case cfg.SQLitePath != "":
		db, err := sqliterepo.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return store{}, fmt.Errorf("open sqlite: %w", err)
		}
		return store{
			kind:  "sqlite",
			tx:    sqliterepo.NewTxManager(db),
			games: sqliterepo.NewGameRepo(db),
			log:   sqliterepo.NewActionLogRepo(db),
			close: func() { _ = db.Close() },
		}, nil
	default:
		mem := memory.NewStore()
		return store{
			kind:  "memory",
			tx:    memory.NewTxManager(mem),
			games: memory.NewGameRepo(mem),
			log:   memory.NewActionLogRepo(mem),
			close: func() {},
		}, nil
	}
}
