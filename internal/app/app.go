package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"pagewatch/internal/config"
	"pagewatch/internal/render"
	"pagewatch/internal/runtime/supervisor"
	"pagewatch/internal/storage"
	"pagewatch/internal/task/scheduler"
	kit "pagewatch/internal/transport"
	"pagewatch/internal/watch"
	logx "pagewatch/pkg/logx"
)

const watchJob = "watch.check"

type App struct {
	cfgm *config.ConfigManager

	log  logx.Logger
	logs *logx.Service

	store   storage.Store
	sender  kit.Sender
	source  *swapSource
	tracker *watch.Tracker
	sched   *scheduler.Service
}

// New loads the config and wires every component. Nothing runs until
// RunOnce or Run is called.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return build(cfgm, cfg)
}

func build(cfgm *config.ConfigManager, cfg *config.Config) (*App, error) {
	bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram"))
	sender, err := buildSender(cfg, bootLog)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	logSvc, log := logx.New(mapLogConfig(cfg), sender, chatTarget(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	appLog := log.With(logx.String("comp", "app"))

	if sender == nil {
		appLog.Warn("telegram credentials missing; notifications will be skipped",
			logx.String("env", config.EnvBotToken+"/"+config.EnvChatID),
		)
	}

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	rc, err := mapRenderConfig(cfg)
	if err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}
	renderer, err := render.NewHTTP(rc, log.With(logx.String("comp", "render")))
	if err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}
	src := newSwapSource(renderer)

	a := &App{
		cfgm:   cfgm,
		log:    appLog,
		logs:   logSvc,
		store:  store,
		sender: sender,
		source: src,
		tracker: watch.NewTracker(trackerSettings(cfg), src, store, sender,
			log.With(logx.String("comp", "tracker"))),
		sched: scheduler.New(mapSchedulerConfig(cfg), log.With(logx.String("comp", "scheduler"))),
	}
	appLog.Info("configured",
		logx.String("url", rc.URL),
		logx.Strings("keywords", config.ParseKeywords(cfg.Keywords)),
		logx.String("storage", sc.Driver),
	)
	return a, nil
}

// RunOnce performs a single check. The error is non-nil only when the
// history could not be saved.
func (a *App) RunOnce(ctx context.Context) (watch.Report, error) {
	rep, err := a.tracker.Run(ctx)
	a.logReport(rep, err)
	return rep, err
}

func (a *App) logReport(rep watch.Report, err error) {
	fields := []logx.Field{
		logx.Bool("extracted", rep.Extracted),
		logx.Int("matches", rep.Matches),
		logx.Int("new_keywords", rep.NewKeywords),
		logx.Int("new_contexts", rep.NewContexts),
		logx.Bool("notified", rep.Notified),
		logx.Bool("saved", rep.Saved),
		logx.Duration("took", rep.Took),
	}
	if err != nil {
		a.log.Error("check finished with error", append(fields, logx.Err(err))...)
		return
	}
	a.log.Info("check finished", fields...)
}

// Run checks on the configured schedule until ctx is done, applying config
// file changes as they happen. A failing background goroutine stops Run
// and its error is returned.
func (a *App) Run(ctx context.Context) error {
	cfg := a.cfgm.Get()
	sup := supervisor.New(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)

	job := func(ctx context.Context) { _, _ = a.RunOnce(ctx) }
	if err := a.sched.Register(watchJob, cfg.Schedule.Every, job); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := a.sched.Start(sup.Context()); err != nil {
		return err
	}

	updates := a.cfgm.Subscribe(1)
	sup.Go("config.watch", a.cfgm.Watch)
	sup.Go("config.apply", func(ctx context.Context) error {
		cur := cfg
		for {
			select {
			case <-ctx.Done():
				return nil
			case next, ok := <-updates:
				if !ok {
					return nil
				}
				a.apply(cur, next)
				cur = next
			}
		}
	})
	if cfg.RunOnStart() {
		sup.Go("watch.initial", func(ctx context.Context) error {
			job(ctx)
			return nil
		})
	}

	sdNotify(a.log, daemon.SdNotifyReady)
	a.log.Info("watching", logx.String("schedule", cfg.Schedule.Every), logx.Any("next", a.sched.Next(watchJob)))

	<-sup.Context().Done()
	return a.shutdown(sup, updates, shutdownTimeout)
}

const shutdownTimeout = 15 * time.Second

// shutdown stops the scheduler and every supervised goroutine. It returns
// the first goroutine failure, if any.
func (a *App) shutdown(sup *supervisor.Supervisor, updates chan *config.Config, timeout time.Duration) error {
	sdNotify(a.log, daemon.SdNotifyStopping)
	a.log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	a.sched.Stop(stopCtx)
	a.cfgm.Unsubscribe(updates)
	if err := sup.Stop(stopCtx); errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("supervisor stop timed out", logx.Int64("active", sup.Active()))
	}
	if err := sup.Err(); err != nil {
		a.log.Error("background goroutine failed", logx.Err(err))
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// apply hot-reloads the parts of the config that can change at runtime.
// Storage and Telegram credential changes need a restart.
func (a *App) apply(oldCfg, newCfg *config.Config) {
	changed, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(changed) == 0 {
		return
	}
	a.log.Info("config reloaded", append(attrs, logx.Strings("changed", changed))...)

	for _, section := range changed {
		switch section {
		case "logging":
			a.logs.Apply(mapLogConfig(newCfg))
		case "source":
			rc, err := mapRenderConfig(newCfg)
			if err != nil {
				a.log.Warn("source reload rejected", logx.Err(err))
				continue
			}
			r, err := render.NewHTTP(rc, a.log.With(logx.String("comp", "render")))
			if err != nil {
				a.log.Warn("source reload rejected", logx.Err(err))
				continue
			}
			a.source.Set(r)
		case "schedule":
			if err := a.sched.Register(watchJob, newCfg.Schedule.Every, func(ctx context.Context) { _, _ = a.RunOnce(ctx) }); err != nil {
				a.log.Warn("schedule reload rejected", logx.Err(err))
			}
			if oldCfg.Schedule.Timezone != newCfg.Schedule.Timezone {
				a.log.Warn("schedule.timezone change takes effect after restart")
			}
		case "storage", "telegram":
			a.log.Warn("config section change takes effect after restart", logx.String("section", section))
		}
	}
	// Keywords, match knobs and the label are read by the tracker per run.
	// The chat target stays as wired at start-up.
	s := trackerSettings(newCfg)
	s.Target = a.tracker.Settings().Target
	a.tracker.Apply(s)
}

func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}
