package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/metrics"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// Instrumented bounds every fetch with a timeout and reports latency and
// failures. Timeout policy lives here rather than in the analytics engine.
type Instrumented struct {
	next    Gateway
	timeout time.Duration
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewInstrumented decorates next. A zero timeout leaves the caller context untouched.
func NewInstrumented(next Gateway, timeout time.Duration, rec *metrics.Recorder, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{next: next, timeout: timeout, metrics: rec, logger: logger}
}

// Fetch implements Gateway.
func (g *Instrumented) Fetch(ctx context.Context, collection Collection, query Query) ([]record.Record, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := g.next.Fetch(ctx, collection, query)
	elapsed := time.Since(start)
	g.metrics.ObserveFetch(string(collection), elapsed, err)

	if err != nil {
		return nil, err
	}

	g.logger.Debug("records fetched",
		zap.String("collection", string(collection)),
		zap.String("query", query.Key()),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", elapsed))
	return rows, nil
}
