package monitor

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredAliasDeactivator flips every active alias whose expiry is before now.
type ExpiredAliasDeactivator interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpiryMonitor periodically marks expired aliases inactive, so that aliases
// nobody requests after their expiry still end up flagged.
type ExpiryMonitor struct {
	aliases  ExpiredAliasDeactivator
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewExpiryMonitor creates and returns a new instance of ExpiryMonitor.
func NewExpiryMonitor(aliases ExpiredAliasDeactivator, interval time.Duration, logger *slog.Logger) *ExpiryMonitor {
	return &ExpiryMonitor{
		aliases:  aliases,
		interval: interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start runs a sweep immediately, then one per interval, until ctx is done.
// It blocks; a non-positive interval returns at once.
func (m *ExpiryMonitor) Start(ctx context.Context) {
	if m.interval <= 0 {
		m.logger.Info("expiry monitor disabled")
		return
	}
	m.logger.Info("starting expiry monitor", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("expiry monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep deactivates the aliases expired at the time of the call and returns how many.
func (m *ExpiryMonitor) Sweep(ctx context.Context) int64 {
	n, err := m.aliases.DeactivateExpired(ctx, m.now())
	if err != nil {
		m.logger.Error("expiry sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		m.logger.Info("expired aliases deactivated", "count", n)
	}
	return n
}
