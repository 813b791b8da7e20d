package shell

import (
	"context"
	"log/slog"
	"time"
)

// RolloverWatcher resets the shell's daily sales view when the calendar
// day changes, so a shift running past midnight doesn't keep showing
// yesterday's numbers.
type RolloverWatcher struct {
	Shell    *Shell
	Logger   *slog.Logger
	Interval time.Duration

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRolloverWatcher creates a watcher polling at the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewRolloverWatcher(sh *Shell, logger *slog.Logger, interval time.Duration) *RolloverWatcher {
	if interval <= 0 {
		interval = time.Minute
	}

	return &RolloverWatcher{
		Shell:    sh,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to
// gracefully shut it down.
func (w *RolloverWatcher) Start() {
	go w.run()
	w.Logger.Info("rollover watcher started", "interval", w.Interval)
}

// Stop shuts down the background worker. Blocks until any in-progress
// refresh has finished.
func (w *RolloverWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.Logger.Info("rollover watcher stopped")
}

func (w *RolloverWatcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	day := w.currentDay()

	for {
		select {
		case <-ticker.C:
			// The marker only advances once the new day's view is in
			// place, so a failed refetch is retried on the next tick.
			if today := w.currentDay(); today != day && w.rollover() {
				day = today
			}
		case <-w.stopCh:
			return
		}
	}
}

// currentDay returns the calendar day marker compared across ticks.
func (w *RolloverWatcher) currentDay() string {
	return w.Now().Format("2006-01-02")
}

// rollover clears the day view and refetches it. Clearing comes first:
// yesterday's sales must never outlive the day even when the server is
// unreachable. Reports whether the new day's view is settled.
func (w *RolloverWatcher) rollover() bool {
	if w.Shell.State() == LoggedOut {
		return true
	}

	w.Logger.Info("day changed, resetting daily sales view")
	w.Shell.ResetDay()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.Shell.RefreshToday(ctx); err != nil {
		w.Logger.Error("failed to refresh daily sales after rollover", "error", err)
		return false
	}
	return true
}
