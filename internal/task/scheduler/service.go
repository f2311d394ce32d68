package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "pagewatch/pkg/logx"
)

type Config struct {
	// Timezone is an IANA name; empty means local time.
	Timezone string
}

// Job is one scheduled unit of work. ctx is cancelled on Stop.
type Job func(ctx context.Context)

type entry struct {
	spec ParsedSpec
	job  Job
	id   cron.EntryID
}

// Service owns a robfig/cron instance and a set of named jobs.
type Service struct {
	mu  sync.Mutex
	cfg Config
	log logx.Logger

	parser  cron.Parser
	c       *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	entries map[string]*entry
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg: cfg,
		log: log,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser:  cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		entries: map[string]*entry{},
	}
}

// Register adds or replaces the job called name. It may be called before or
// after Start.
func (s *Service) Register(name, schedule string, job Job) error {
	spec, err := ParseSchedule(schedule)
	if err != nil {
		return err
	}
	if _, err := s.parser.Parse(spec.CronSpec()); err != nil {
		return fmt.Errorf("invalid cron %q: %w", spec.CronSpec(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[name]; ok && s.c != nil {
		s.c.Remove(old.id)
	}
	e := &entry{spec: spec, job: job}
	s.entries[name] = e
	if s.c != nil {
		if err := s.addLocked(name, e); err != nil {
			delete(s.entries, name)
			return err
		}
	}
	s.log.Info("schedule registered", logx.String("name", name), logx.String("spec", spec.CronSpec()), logx.String("kind", spec.Source))
	return nil
}

// Start begins triggering registered jobs.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	loc := time.Local
	if tz := strings.TrimSpace(s.cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("scheduler timezone: %w", err)
		}
		loc = l
	}

	cl := cronLogger{log: s.log}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.c = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	for name, e := range s.entries {
		if err := s.addLocked(name, e); err != nil {
			return err
		}
	}
	s.c.Start()
	s.log.Info("service started", logx.String("tz", loc.String()), logx.Int("schedules", len(s.entries)))
	return nil
}

func (s *Service) addLocked(name string, e *entry) error {
	job := e.job
	ctx := s.ctx
	id, err := s.c.AddFunc(e.spec.CronSpec(), func() { job(ctx) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	e.id = id
	return nil
}

// Next returns the next trigger time of name (zero if unknown or stopped).
func (s *Service) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok || s.c == nil {
		return time.Time{}
	}
	return s.c.Entry(e.id).Next
}

// Stop stops triggering and waits for running jobs until ctx is done.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	c := s.c
	cancel := s.cancel
	s.c = nil
	s.cancel = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	done := c.Stop().Done()
	if cancel != nil {
		cancel()
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
