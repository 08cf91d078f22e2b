package main

import (
	"context"
	"errors"
	"log"
	"time"

	economymem "github.com/djasnowski/myrefell-sub002/internal/adapter/economy/memory"
	staticeffects "github.com/djasnowski/myrefell-sub002/internal/adapter/effects/static"
	httpadapter "github.com/djasnowski/myrefell-sub002/internal/adapter/http"
	metricsinmem "github.com/djasnowski/myrefell-sub002/internal/adapter/metrics/inmemory"
	npcmem "github.com/djasnowski/myrefell-sub002/internal/adapter/npc/memory"
	gormrepo "github.com/djasnowski/myrefell-sub002/internal/adapter/repo/gorm"
	"github.com/djasnowski/myrefell-sub002/internal/adapter/tasks/inproc"
	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
	"github.com/djasnowski/myrefell-sub002/internal/app/queue"
	"github.com/djasnowski/myrefell-sub002/internal/app/worldclock"
	"github.com/djasnowski/myrefell-sub002/internal/app/worldjobs"
	"github.com/djasnowski/myrefell-sub002/internal/domain/action"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/app/server"
)

type config struct {
	DBDSN           string        `env:"MYREFELL_DB_DSN"`
	ListenAddr      string        `env:"MYREFELL_LISTEN_ADDR" envDefault:":8080"`
	MigrationsDir   string        `env:"MYREFELL_MIGRATIONS_DIR" envDefault:"./migrations"`
	TuningPath      string        `env:"MYREFELL_TUNING_PATH"`
	EffectsPath     string        `env:"MYREFELL_EFFECTS_PATH"`
	TickInterval    time.Duration `env:"MYREFELL_TICK_INTERVAL" envDefault:"24h"`
	TickPoll        time.Duration `env:"MYREFELL_TICK_POLL" envDefault:"1m"`
	ReapInterval    time.Duration `env:"MYREFELL_REAP_INTERVAL" envDefault:"1m"`
	QueueWorkers    int           `env:"MYREFELL_QUEUE_WORKERS" envDefault:"8"`
	InventorySlots  int           `env:"MYREFELL_INVENTORY_SLOTS" envDefault:"24"`
	NPCCapacity     int           `env:"MYREFELL_NPC_CAPACITY" envDefault:"200"`
	NPCStartingFood int           `env:"MYREFELL_NPC_STARTING_FOOD" envDefault:"500"`
	TaskBuffer      int           `env:"MYREFELL_TASK_BUFFER" envDefault:"64"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse config: %v", err)
	}

	records, clocks, txManager := mustBuildRepos(cfg)
	tuning := mustLoadTuning(cfg.TuningPath)
	effects := mustLoadEffects(cfg.EffectsPath)
	economy := economymem.NewLedger(cfg.InventorySlots)
	roster := npcmem.NewRoster(cfg.NPCCapacity, cfg.NPCStartingFood, nil)
	kpiRecorder := metricsinmem.NewRecorder()

	dispatcher := inproc.New(cfg.TaskBuffer)
	defer dispatcher.Close()

	worker := queue.Worker{
		TxManager: txManager,
		Records:   records,
		Effects:   effects,
		Economy:   economy,
		Metrics:   kpiRecorder,
		Tuning:    tuning,
		Now:       time.Now,
	}
	manager := queue.Manager{
		TxManager: txManager,
		Records:   records,
		Tasks:     dispatcher,
		Metrics:   kpiRecorder,
		Tuning:    tuning,
		Now:       time.Now,
	}
	scheduler := worldclock.Scheduler{
		TxManager:    txManager,
		Clocks:       clocks,
		Tasks:        dispatcher,
		TickInterval: cfg.TickInterval,
		Now:          time.Now,
	}
	consumer := worldjobs.Consumer{NPCs: roster}

	dispatcher.HandleLane(ports.LaneQueue, cfg.QueueWorkers, func(ctx context.Context, task ports.Task) error {
		return worker.Run(ctx, task.QueueID())
	})
	dispatcher.HandleLane(ports.LaneWorld, 1, consumer.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reapLoop(ctx, manager, cfg.ReapInterval)
	go tickLoop(ctx, scheduler, cfg.TickPoll)

	h := httpadapter.Handler{
		Queue:    manager,
		Calendar: scheduler,
		KPI:      kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.ListenAddr))
	h.RegisterRoutes(s)

	log.Printf("myrefell server listening on %s", cfg.ListenAddr)
	s.Spin()
}

func mustBuildRepos(cfg config) (ports.QueueRecordRepository, ports.WorldClockRepository, ports.TxManager) {
	if cfg.DBDSN == "" {
		log.Fatal("MYREFELL_DB_DSN is required")
	}
	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	return gormrepo.NewQueueRecordRepo(db), gormrepo.NewWorldClockRepo(db), gormrepo.NewTxManager(db)
}

func mustLoadTuning(path string) action.Tuning {
	if path == "" {
		return action.DefaultTuning()
	}
	tuning, err := action.LoadTuning(path)
	if err != nil {
		log.Fatalf("load tuning %s: %v", path, err)
	}
	return tuning
}

func mustLoadEffects(path string) staticeffects.Provider {
	if path == "" {
		return staticeffects.Provider{}
	}
	provider, err := staticeffects.Load(path)
	if err != nil {
		log.Fatalf("load effects %s: %v", path, err)
	}
	return provider
}

// reapLoop periodically fails active queues whose worker stopped reporting
// progress. This is the recovery path for lost run_queue dispatches.
func reapLoop(ctx context.Context, manager queue.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := manager.ReapStale(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("reap stale queues: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("reaped %d stale queue(s)", count)
			}
		}
	}
}

// tickLoop polls the world clock and advances it once per tick interval.
// ProcessTick is a no-op when the interval has not elapsed, so running
// several server instances against one database stays safe.
func tickLoop(ctx context.Context, scheduler worldclock.Scheduler, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			advanced, err := scheduler.ProcessTick(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("process world tick: %v", err)
				continue
			}
			if advanced {
				log.Printf("world clock advanced one week")
			}
		}
	}
}
