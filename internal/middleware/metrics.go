package middleware

import (
	"context"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/ai"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress int64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	RateLimited        uint64
	AICalls            uint64
	AIFailures         uint64
	StreamsOpen        int64
	StreamsCompleted   uint64
	StreamsFailed      uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests()    { atomic.AddUint64(&globalMetrics.RequestsTotal, 1) }
func IncrementSuccess()     { atomic.AddUint64(&globalMetrics.RequestsSuccess, 1) }
func IncrementFailed()      { atomic.AddUint64(&globalMetrics.RequestsFailed, 1) }
func IncrementRateLimited() { atomic.AddUint64(&globalMetrics.RateLimited, 1) }

// RecordAICall counts one upstream model call.
func RecordAICall(err error) {
	atomic.AddUint64(&globalMetrics.AICalls, 1)
	if err != nil {
		atomic.AddUint64(&globalMetrics.AIFailures, 1)
	}
}

// StreamOpened marks an SSE response as started. The returned func must be
// called exactly once when the stream ends.
func StreamOpened() func(err error) {
	atomic.AddInt64(&globalMetrics.StreamsOpen, 1)
	return func(err error) {
		atomic.AddInt64(&globalMetrics.StreamsOpen, -1)
		if err != nil {
			atomic.AddUint64(&globalMetrics.StreamsFailed, 1)
			return
		}
		atomic.AddUint64(&globalMetrics.StreamsCompleted, 1)
	}
}

// Uptime is the time since process start.
func Uptime() time.Duration { return time.Since(globalMetrics.StartTime) }

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadInt64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"rate_limited":         atomic.LoadUint64(&globalMetrics.RateLimited),
		"ai_calls":             atomic.LoadUint64(&globalMetrics.AICalls),
		"ai_failures":          atomic.LoadUint64(&globalMetrics.AIFailures),
		"streams_open":         atomic.LoadInt64(&globalMetrics.StreamsOpen),
		"streams_completed":    atomic.LoadUint64(&globalMetrics.StreamsCompleted),
		"streams_failed":       atomic.LoadUint64(&globalMetrics.StreamsFailed),
		"uptime_seconds":       Uptime().Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		atomic.AddInt64(&globalMetrics.RequestsInProgress, 1)
		defer atomic.AddInt64(&globalMetrics.RequestsInProgress, -1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, GetMetrics())
}

// InstrumentAI counts every model call made through c.
func InstrumentAI(c ai.Client) ai.Client { return instrumented{c} }

type instrumented struct{ ai.Client }

func (i instrumented) Complete(ctx context.Context, req ai.Request) (ai.Completion, error) {
	out, err := i.Client.Complete(ctx, req)
	RecordAICall(err)
	return out, err
}

func (i instrumented) Stream(ctx context.Context, req ai.Request) (ai.Stream, error) {
	st, err := i.Client.Stream(ctx, req)
	RecordAICall(err)
	return st, err
}
