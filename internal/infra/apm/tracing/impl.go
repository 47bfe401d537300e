package tracing

import (
	"context"

	"go.elastic.co/apm"

	"github.com/kalyan021004/todoboard/internal/domain/tracing"
)

// NewTracer returns a tracing.Tracer backed by the process-wide APM tracer.
func NewTracer() tracing.Tracer {
	return &apmTracer{underlying: apm.DefaultTracer}
}

type apmTracer struct {
	underlying *apm.Tracer
}

func (t *apmTracer) BackgroundTx(name string) tracing.Transaction {
	return &apmTx{tx: t.underlying.StartTransaction(name, "backgroundjob")}
}

type apmTx struct {
	tx *apm.Transaction
}

func (t *apmTx) Context() context.Context {
	return apm.ContextWithTransaction(context.Background(), t.tx)
}

func (t *apmTx) End() {
	t.tx.End()
}

// NoopTracer is for tests.
type NoopTracer struct{}

func (n NoopTracer) BackgroundTx(name string) tracing.Transaction {
	return noopTx{}
}

type noopTx struct{}

func (n noopTx) Context() context.Context {
	return context.Background()
}

func (n noopTx) End() {}
