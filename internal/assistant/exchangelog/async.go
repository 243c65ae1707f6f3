package exchangelog

import (
	"context"
	"sync"
	"time"

	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/metrics"
)

const DefaultWriteTimeout = 3 * time.Second

// AsyncLogger runs each write on its own goroutine with a bounded timeout.
// Failures are logged and counted, never returned.
type AsyncLogger struct {
	repo    Repository
	timeout time.Duration
	logger  logger.Logger
	wg      sync.WaitGroup
}

func NewAsyncLogger(repo Repository, timeout time.Duration, log logger.Logger) *AsyncLogger {
	if repo == nil {
		repo = NopRepository{}
	}
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &AsyncLogger{
		repo:    repo,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "exchangelog", "sink": repo.Name()}),
	}
}

// Log returns immediately. The write is detached from the caller's context
// so a finished request does not cancel its own log entry.
func (a *AsyncLogger) Log(ex Exchange) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.ExchangeLogFailures.WithLabelValues(a.repo.Name()).Inc()
				a.logger.Error("exchange log panicked", map[string]interface{}{
					"exchangeId": ex.ID,
					"panic":      r,
				})
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.repo.LogExchange(ctx, ex); err != nil {
			for _, sink := range failedSinks(err, a.repo.Name()) {
				metrics.ExchangeLogFailures.WithLabelValues(sink).Inc()
			}
			a.logger.Warn("exchange log write failed", map[string]interface{}{
				"exchangeId": ex.ID,
				"sessionId":  ex.SessionID,
				"error":      err.Error(),
			})
			return
		}

		a.logger.Debug("exchange logged", map[string]interface{}{"exchangeId": ex.ID})
	}()
}

// Close waits for in-flight writes or until ctx is done.
func (a *AsyncLogger) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
