package tracing

import "context"

// Transaction is one traced unit of background work. Context carries the
// trace so downstream instrumented clients attach their spans to it.
type Transaction interface {
	Context() context.Context
	End()
}

// Tracer starts transactions for work that happens outside any request,
// like the sweep and the leader lock loop.
type Tracer interface {
	BackgroundTx(name string) Transaction
}
