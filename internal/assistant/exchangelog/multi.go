package exchangelog

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "bailey-assistant/internal/common/errors"
)

// MultiRepository writes every exchange to all sinks concurrently. A failing
// sink does not stop the others; all failures are joined.
type MultiRepository struct {
	sinks []Repository
}

func NewMultiRepository(sinks ...Repository) *MultiRepository {
	return &MultiRepository{sinks: sinks}
}

func (m *MultiRepository) Name() string { return "multi" }

func (m *MultiRepository) Len() int { return len(m.sinks) }

func (m *MultiRepository) LogExchange(ctx context.Context, ex Exchange) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, sink := range m.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.LogExchange(ctx, ex); err != nil {
				wrapped := sinkError(sink.Name(), err)
				mu.Lock()
				errs = append(errs, wrapped)
				mu.Unlock()
				return wrapped
			}
			return nil
		})
	}

	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

func sinkError(sink string, err error) *apperrors.StandardError {
	stdErr := apperrors.NewExchangeLogFailedError(sink, err)
	stdErr.Metadata = map[string]interface{}{"sink": sink}
	return stdErr
}

// failedSinks names each sink behind err, using fallback when a failure
// carries no sink.
func failedSinks(err error, fallback string) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var sinks []string
		for _, e := range joined.Unwrap() {
			sinks = append(sinks, failedSinks(e, fallback)...)
		}
		return sinks
	}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		if sink, ok := stdErr.Metadata["sink"].(string); ok {
			return []string{sink}
		}
	}
	return []string{fallback}
}
