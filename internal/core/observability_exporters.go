package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ExpvarMetricsRecorder publishes per-operation counters and cumulative
// latency through the expvar registry. Each recorder claims a unique map
// name so tests can construct several without publish collisions.
type ExpvarMetricsRecorder struct {
	vars *expvar.Map
}

var expvarSeq atomic.Int64

// NewExpvarMetricsRecorder publishes a fresh expvar map and returns a
// recorder writing into it.
func NewExpvarMetricsRecorder() *ExpvarMetricsRecorder {
	name := fmt.Sprintf("aquacore_service_metrics_%d", expvarSeq.Add(1))
	return &ExpvarMetricsRecorder{vars: expvar.NewMap(name)}
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	r.vars.Add(operation+"_"+outcome, 1)
	r.vars.Add(operation+"_micros", duration.Microseconds())
}

// Value returns the current counter value for a key, for tests.
func (r *ExpvarMetricsRecorder) Value(key string) int64 {
	v := r.vars.Get(key)
	if v == nil {
		return 0
	}
	if iv, ok := v.(*expvar.Int); ok {
		return iv.Value()
	}
	return 0
}

// JSONTraceTracer emits one JSON line per finished span to a writer. It is a
// lightweight stand-in for a full tracing backend and is safe for concurrent
// use.
type JSONTraceTracer struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewJSONTraceTracer returns a tracer writing span records to w.
func NewJSONTraceTracer(w io.Writer) *JSONTraceTracer {
	return &JSONTraceTracer{w: w, now: time.Now}
}

type jsonSpan struct {
	tracer    *JSONTraceTracer
	Operation string    `json:"operation"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Error     string    `json:"error,omitempty"`
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonSpan{tracer: t, Operation: operation, StartedAt: t.now().UTC()}
}

// End finishes the span and writes its record.
func (s *jsonSpan) End(err error) {
	s.EndedAt = s.tracer.now().UTC()
	if err != nil {
		s.Error = err.Error()
	}
	payload, merr := json.Marshal(s)
	if merr != nil {
		return
	}
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.w.Write(append(payload, '\n'))
}
