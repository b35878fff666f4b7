package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics holds the request counters of one server instance.
// Thread-safe via atomics and mutex.
type Metrics struct {
	totalRequests  int64
	activeRequests int64
	totalErrors    int64
	totalLatencyMs int64
	maxLatencyMs   int64
	startTime      time.Time

	mu                sync.Mutex
	endpointCounts    map[string]int64
	endpointLatencies map[string]int64 // total ms per endpoint
	statusCodes       map[int]int64
	authRejections    map[string]int64 // keyed by authorization error code
}

func New() *Metrics {
	return &Metrics{
		startTime:         time.Now(),
		endpointCounts:    make(map[string]int64),
		endpointLatencies: make(map[string]int64),
		statusCodes:       make(map[int]int64),
		authRejections:    make(map[string]int64),
	}
}

// RecordAuthRejection counts a request refused by the authorization guard.
func (m *Metrics) RecordAuthRejection(code string) {
	m.mu.Lock()
	m.authRejections[code]++
	m.mu.Unlock()
}

// Middleware tracks request count, latency, active connections, and error rates.
// It must run outside the error handler's reach, so the status it records is
// read after echo has rendered any returned error.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.activeRequests, 1)
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			latencyMs := time.Since(start).Milliseconds()
			atomic.AddInt64(&m.activeRequests, -1)
			atomic.AddInt64(&m.totalRequests, 1)
			atomic.AddInt64(&m.totalLatencyMs, latencyMs)

			// lock-free CAS loop
			for {
				current := atomic.LoadInt64(&m.maxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.maxLatencyMs, current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.endpointCounts[endpoint]++
			m.endpointLatencies[endpoint] += latencyMs
			m.statusCodes[statusCode]++
			if statusCode >= 400 {
				atomic.AddInt64(&m.totalErrors, 1)
			}
			m.mu.Unlock()

			return nil
		}
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	RequestsPerSec float64          `json:"requests_per_sec"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	AuthRejections map[string]int64 `json:"auth_rejections"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.totalRequests)
	errors := atomic.LoadInt64(&m.totalErrors)
	totalLatency := atomic.LoadInt64(&m.totalLatencyMs)
	uptime := time.Since(m.startTime).Seconds()

	var avgLatency, errorRate, perSec float64
	if total > 0 {
		avgLatency = float64(totalLatency) / float64(total)
		errorRate = float64(errors) / float64(total) * 100
	}
	if uptime > 0 {
		perSec = float64(total) / uptime
	}

	m.mu.Lock()
	endpointCounts := make(map[string]int64, len(m.endpointCounts))
	endpointAvg := make(map[string]int64, len(m.endpointLatencies))
	for k, v := range m.endpointCounts {
		endpointCounts[k] = v
		if v > 0 {
			endpointAvg[k] = m.endpointLatencies[k] / v
		}
	}
	statusCodes := make(map[int]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		statusCodes[k] = v
	}
	rejections := make(map[string]int64, len(m.authRejections))
	for k, v := range m.authRejections {
		rejections[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.activeRequests),
		TotalErrors:    errors,
		ErrorRate:      errorRate,
		AvgLatencyMs:   avgLatency,
		MaxLatencyMs:   atomic.LoadInt64(&m.maxLatencyMs),
		RequestsPerSec: perSec,
		UptimeSeconds:  uptime,
		EndpointCounts: endpointCounts,
		EndpointAvgMs:  endpointAvg,
		StatusCodes:    statusCodes,
		AuthRejections: rejections,
	}
}

// Handler serves the current snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
