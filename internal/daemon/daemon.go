package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cat-time-bot/cattime/internal/api"
	"github.com/cat-time-bot/cattime/internal/app"
	"github.com/cat-time-bot/cattime/internal/app/achievement"
	"github.com/cat-time-bot/cattime/internal/app/attendance"
	"github.com/cat-time-bot/cattime/internal/app/season"
	"github.com/cat-time-bot/cattime/internal/app/stats"
	"github.com/cat-time-bot/cattime/internal/bot"
	"github.com/cat-time-bot/cattime/internal/domain"
	"github.com/cat-time-bot/cattime/internal/health"
	"github.com/cat-time-bot/cattime/internal/infra/scheduler"
	"github.com/cat-time-bot/cattime/internal/infra/sqlite"
	"github.com/cat-time-bot/cattime/pkg/logger"
)

// Daemon is the cattime runtime. It wires together all services.
type Daemon struct {
	Config Config
	Log    *zap.Logger
	DB     *sqlite.DB
	Engine *app.Engine
	Server *api.Server
	Bot    *bot.Bot
	Runner *scheduler.Runner
	Health *health.Checker

	notifier domain.Notifier
	cancel   context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}, logger.DefaultServiceName)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := sqlite.Open(Home())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	attLedger := attendance.NewLedger(db, db, log.Named("attendance"))
	achEngine := achievement.NewEngine(db, db,
		achievement.NewRandomTextProvider(time.Now().UnixNano()),
		log.Named("achievement"))
	seasonLedger := season.NewLedger(db, db, db, db, log.Named("season"))
	aggregator := stats.NewAggregator(db, db, log.Named("stats"))

	engine := app.NewEngine(attLedger, achEngine, seasonLedger, aggregator,
		db, db, db, log.Named("engine"))

	checker := health.NewChecker(db, Home())

	srv := api.NewServer(engine, db, log.Named("api"))
	srv.SetHealth(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	d := &Daemon{
		Config: cfg,
		Log:    log,
		DB:     db,
		Engine: engine,
		Server: srv,
		Health: checker,
	}

	if cfg.Bot.Enabled {
		token := BotToken()
		if token == "" {
			return nil, fmt.Errorf("bot enabled but CATTIME_BOT_TOKEN is not set")
		}
		tg, err := bot.New(token, engine, cfg.Bot.ChatID, cfg.Bot.Debug, log.Named("bot"))
		if err != nil {
			return nil, err
		}
		d.Bot = tg
		d.notifier = tg
	}

	d.Runner = scheduler.NewRunner(scheduler.DefaultConfig(), []scheduler.Job{
		{Name: "season-rollover", Hour: cfg.Schedule.RolloverHour, Run: d.runRollover},
		{Name: "daily-digest", Hour: cfg.Schedule.DigestHour, Run: d.runDigest},
	}, log.Named("scheduler"))

	return d, nil
}

// runRollover executes the daily season pass and announces the result.
func (d *Daemon) runRollover(day time.Time) error {
	report, err := d.Engine.RunSeasonRollover()
	if err != nil {
		return err
	}
	d.announce(bot.RenderRollover(report)...)
	return nil
}

// runDigest builds and announces the evening digest for today.
func (d *Daemon) runDigest(day time.Time) error {
	digest, err := d.Engine.RunDailyDigest(day)
	if err != nil {
		return err
	}
	if text := bot.RenderDigest(digest); text != "" {
		d.announce(text)
	}
	return nil
}

func (d *Daemon) announce(messages ...string) {
	if d.notifier == nil {
		return
	}
	for _, text := range messages {
		if err := d.notifier.Announce(text); err != nil {
			d.Log.Error("announce failed", zap.Error(err))
		}
	}
}

// Serve starts the HTTP server, bot and scheduler, blocking until
// shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)
	go d.Runner.Start(ctx)
	if d.Bot != nil {
		go d.Bot.Start(ctx)
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	d.Log.Info("serving", zap.String("addr", addr),
		zap.Bool("bot", d.Bot != nil),
		zap.Bool("metrics", d.Config.Telemetry.Prometheus))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops a running daemon.
func (d *Daemon) Shutdown() {
	if d.cancel != nil {
		d.cancel()
	}
}
