package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator counting instructions per program, opcode and
// outcome code, and measuring how long each program takes.
type Metrics struct {
	instructions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

var _ ledger.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors.
// Collectors already registered by another Metrics instance are shared.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	instructions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timevault",
		Name:      "instructions_total",
		Help:      "Number of processed instructions.",
	}, []string{"program", "opcode", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "timevault",
		Name:      "instruction_duration_seconds",
		Help:      "Time spent processing an instruction.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
	}, []string{"program"})

	var ok bool
	c, err := register(reg, instructions)
	if err != nil {
		return nil, err
	}
	if instructions, ok = c.(*prometheus.CounterVec); !ok {
		return nil, errors.Wrapf(errors.ErrType, "collector %T", c)
	}
	if c, err = register(reg, duration); err != nil {
		return nil, err
	}
	if duration, ok = c.(*prometheus.HistogramVec); !ok {
		return nil, errors.Wrapf(errors.ErrType, "collector %T", c)
	}
	return &Metrics{instructions: instructions, duration: duration}, nil
}

// register returns the collector that ends up registered, which is the
// existing one if an equal collector was registered before.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return are.ExistingCollector, nil
	}
	return nil, errors.Wrap(errors.ErrState, err.Error())
}

// Process records the outcome of the instruction.
func (m *Metrics) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte, next ledger.Program) error {
	start := time.Now()
	err := next.Process(ctx, accounts, data)

	program, _ := timevault.ProgramID(ctx)
	code := strconv.FormatUint(uint64(errors.Code(err)), 10)
	m.instructions.WithLabelValues(program.String(), opcode(data), code).Inc()
	m.duration.WithLabelValues(program.String()).Observe(time.Since(start).Seconds())
	return err
}
