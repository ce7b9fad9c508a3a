package metrics

import (
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// HTTP request metrics (our own API)
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalLatency       int64

	// ClickUp API calls
	RemoteRequests int64
	RemoteErrors   int64

	// Task fetching
	PagesFetched       int64
	PageErrors         int64
	TasksFetched       int64
	TasksEnriched      int64
	EnrichmentFailures int64

	// Analyses
	AnalysesCompleted int64
	AnalysisErrors    int64
	CacheHits         int64

	// WebSocket
	WSConnections int64
	WSMessagesOut int64

	EndpointMetrics map[string]*EndpointMetrics

	StartTime time.Time
}

var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// New creates an independent metrics instance
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
	}
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementRemoteRequest counts one ClickUp API call
func (m *Metrics) IncrementRemoteRequest(success bool) {
	atomic.AddInt64(&m.RemoteRequests, 1)
	if !success {
		atomic.AddInt64(&m.RemoteErrors, 1)
	}
}

// IncrementPage counts one task listing page
func (m *Metrics) IncrementPage(tasks int, success bool) {
	if !success {
		atomic.AddInt64(&m.PageErrors, 1)
		return
	}
	atomic.AddInt64(&m.PagesFetched, 1)
	atomic.AddInt64(&m.TasksFetched, int64(tasks))
}

// IncrementEnrichment counts one enriched task
func (m *Metrics) IncrementEnrichment(success bool) {
	if success {
		atomic.AddInt64(&m.TasksEnriched, 1)
	} else {
		atomic.AddInt64(&m.EnrichmentFailures, 1)
	}
}

// IncrementAnalysis counts one finished analysis
func (m *Metrics) IncrementAnalysis(success bool) {
	if success {
		atomic.AddInt64(&m.AnalysesCompleted, 1)
	} else {
		atomic.AddInt64(&m.AnalysisErrors, 1)
	}
}

// IncrementCacheHit counts one analysis served from cache
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementWSConnection increments websocket connection gauge
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements websocket connection gauge
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageOut counts one broadcast message
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	em.Requests++
	em.TotalLatency += latencyMs
	if statusCode >= 400 {
		em.Errors++
	}
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total      int64 `json:"total"`
		Successful int64 `json:"successful"`
		Failed     int64 `json:"failed"`
	} `json:"requests"`

	ClickUp struct {
		Requests int64 `json:"requests"`
		Errors   int64 `json:"errors"`
	} `json:"clickup"`

	Fetch struct {
		Pages              int64 `json:"pages"`
		PageErrors         int64 `json:"page_errors"`
		Tasks              int64 `json:"tasks"`
		TasksEnriched      int64 `json:"tasks_enriched"`
		EnrichmentFailures int64 `json:"enrichment_failures"`
	} `json:"fetch"`

	Analyses struct {
		Completed int64 `json:"completed"`
		Errors    int64 `json:"errors"`
		CacheHits int64 `json:"cache_hits"`
	} `json:"analyses"`

	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	System struct {
		Goroutines  int    `json:"goroutines"`
		HeapAllocMB uint64 `json:"heap_alloc_mb"`
		NumGC       uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s := MetricsSnapshot{}
	s.UptimeSeconds = time.Since(m.StartTime).Seconds()
	s.StartTime = m.StartTime.Format(time.RFC3339)

	s.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	s.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	s.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)

	s.ClickUp.Requests = atomic.LoadInt64(&m.RemoteRequests)
	s.ClickUp.Errors = atomic.LoadInt64(&m.RemoteErrors)

	s.Fetch.Pages = atomic.LoadInt64(&m.PagesFetched)
	s.Fetch.PageErrors = atomic.LoadInt64(&m.PageErrors)
	s.Fetch.Tasks = atomic.LoadInt64(&m.TasksFetched)
	s.Fetch.TasksEnriched = atomic.LoadInt64(&m.TasksEnriched)
	s.Fetch.EnrichmentFailures = atomic.LoadInt64(&m.EnrichmentFailures)

	s.Analyses.Completed = atomic.LoadInt64(&m.AnalysesCompleted)
	s.Analyses.Errors = atomic.LoadInt64(&m.AnalysisErrors)
	s.Analyses.CacheHits = atomic.LoadInt64(&m.CacheHits)

	s.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	s.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	s.System.Goroutines = runtime.NumGoroutine()
	s.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	s.System.NumGC = memStats.NumGC

	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.EndpointMetrics) > 0 {
		s.Endpoints = make(map[string]EndpointMetricsSnapshot, len(m.EndpointMetrics))
		for k, v := range m.EndpointMetrics {
			em := EndpointMetricsSnapshot{Requests: v.Requests, Errors: v.Errors}
			if v.Requests > 0 {
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			s.Endpoints[k] = em
		}
	}

	return s
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy", "disabled"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// CheckDatabaseHealth checks database connectivity. A nil db means history is disabled.
func CheckDatabaseHealth(db *sql.DB) HealthStatus {
	if db == nil {
		return HealthStatus{Status: "disabled", Message: "DATABASE_URL não configurada"}
	}

	start := time.Now()
	err := db.Ping()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{Status: "unhealthy", Message: err.Error(), Latency: latency}
	}
	if latency > 100 {
		return HealthStatus{Status: "degraded", Message: "high latency", Latency: latency}
	}
	return HealthStatus{Status: "healthy", Latency: latency}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasDegraded := false
	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			return "unhealthy"
		case "degraded":
			hasDegraded = true
		}
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
