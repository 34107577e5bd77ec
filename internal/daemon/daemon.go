// Package daemon runs the long-lived matching service: single-instance
// locking, the HTTP API, periodic cache sweeping, and notifications.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"dinger/internal/config"
	"dinger/internal/history"
	"dinger/internal/logging"
	"dinger/internal/matchcache"
	"dinger/internal/matcher"
	"dinger/internal/notifications"
	"dinger/internal/statsapi"
)

const sweepInterval = time.Minute

// Daemon coordinates the matching service and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	matcher  *matcher.Matcher
	cache    *matchcache.Cache
	store    *history.Store
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with its full dependency graph wired from config.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	notifier := notifications.NewService(cfg)

	client, err := statsapi.New(cfg.StatsAPI.BaseURL,
		statsapi.WithLogger(logger),
		statsapi.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.StatsAPI.TimeoutSeconds) * time.Second}),
		statsapi.WithMinInterval(time.Duration(cfg.StatsAPI.MinIntervalMillis)*time.Millisecond),
		statsapi.WithRetry(cfg.StatsAPI.MaxAttempts,
			time.Duration(cfg.StatsAPI.RetryBaseMillis)*time.Millisecond,
			time.Duration(cfg.StatsAPI.RetryMaxMillis)*time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("build stats api client: %w", err)
	}

	cache := matchcache.New(matchcache.Options{
		ContentTTL: time.Duration(cfg.Matcher.ContentTTLSeconds) * time.Second,
		ResultTTL:  time.Duration(cfg.Matcher.ResultTTLSeconds) * time.Second,
		MaxContent: cfg.Matcher.MaxContentEntries,
		MaxResults: cfg.Matcher.MaxResultEntries,
	})

	matcherOpts := []matcher.Option{
		matcher.WithLogger(logger),
		matcher.WithPolicy(matcher.Policy{
			MinScore:        cfg.Matcher.MinScore,
			RelaxedMinScore: cfg.Matcher.RelaxedMinScore,
			TemporalWindow:  time.Duration(cfg.Matcher.TemporalWindowSeconds) * time.Second,
		}),
	}

	var store *history.Store
	if cfg.History.Enabled && cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		matcherOpts = append(matcherOpts, matcher.WithRecorder(store))
	}

	fetcher := &notifyingFetcher{inner: client, notifier: notifier}
	m := matcher.New(fetcher, cache, matcherOpts...)

	lockPath := filepath.Join(cfg.Paths.StateDir, "dingerd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		matcher:  m,
		cache:    cache,
		store:    store,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the instance lock and launches the API server and the
// periodic cache sweep.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dinger daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	go d.sweepLoop(runCtx)

	d.running.Store(true)
	d.logger.Info("dinger daemon started", logging.String("lock", d.lockPath))
	if err := d.notifier.NotifyDaemonStarted(runCtx, d.cfg.Paths.APIBind); err != nil {
		d.logger.Warn("start notification failed", logging.Error(err))
	}
	return nil
}

// Stop halts the API server and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("dinger daemon stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.notifier.NotifyDaemonStopped(ctx); err != nil {
		d.logger.Warn("stop notification failed", logging.Error(err))
	}
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.matcher.Sweep()
		}
	}
}

// notifyingFetcher decorates the gateway with an alert on retry exhaustion.
type notifyingFetcher struct {
	inner    statsapi.Fetcher
	notifier notifications.Service
}

func (f *notifyingFetcher) FetchGameContent(ctx context.Context, gamePK int64) (*statsapi.GameContent, error) {
	content, err := f.inner.FetchGameContent(ctx, gamePK)
	var exhausted *statsapi.ExhaustedError
	if errors.As(err, &exhausted) {
		_ = f.notifier.NotifyFetchExhausted(ctx, gamePK, exhausted.Err)
	}
	return content, err
}
