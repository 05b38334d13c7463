package collector

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// every fires at a fixed delay after the previous activation.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// Poller runs a task on a fixed interval until stopped. It is owned by a
// single screen, which must call Stop when it goes away.
type Poller struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context)
	cron     *cron.Cron
	chain    cron.Chain
	logger   *logrus.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func NewPoller(name string, interval time.Duration, task func(ctx context.Context), logger *logrus.Logger) *Poller {
	cronLogger := cron.PrintfLogger(logger)
	recoverer := cron.Recover(cronLogger)
	cronScheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(recoverer),
	)

	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		cron:     cronScheduler,
		chain:    cron.NewChain(recoverer),
		logger:   logger,
	}
}

// Start schedules the task and runs it once right away.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return nil
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)

	p.logger.WithFields(logrus.Fields{
		"poller":   p.name,
		"interval": p.interval,
	}).Debug("Starting poller")

	job := cron.FuncJob(func() {
		p.run(ctx)
	})
	p.cron.Schedule(every(p.interval), job)
	p.cron.Start()

	// The first run goes through the same recovery chain as scheduled ones.
	first := p.chain.Then(job)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		first.Run()
	}()

	return nil
}

// Stop cancels the task context and waits for running tasks. It is safe to
// call more than once and before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	started := p.started
	cancel := p.cancel
	p.mu.Unlock()

	if !started {
		return
	}

	cancel()
	<-p.cron.Stop().Done()
	p.wg.Wait()

	p.logger.WithField("poller", p.name).Debug("Poller stopped")
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	p.task(ctx)

	p.logger.WithFields(logrus.Fields{
		"poller":      p.name,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Poll cycle completed")
}
