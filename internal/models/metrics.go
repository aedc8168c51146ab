package models

import "time"

// SystemMetrics is a JSON-friendly summary of the Prometheus counters.
type SystemMetrics struct {
	CacheHitRatio            float64               `json:"cacheHitRatio"`
	CacheHits                uint64                `json:"cacheHits"`
	CacheMisses              uint64                `json:"cacheMisses"`
	RequestsTotal            uint64                `json:"requestsTotal"`
	AverageRequestDurationMs float64               `json:"averageRequestDurationMs"`
	DBQueryCount             uint64                `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64               `json:"averageDbQueryDurationMs"`
	StatusTransitions        uint64                `json:"statusTransitions"`
	Revalidations            uint64                `json:"revalidations"`
	OrphansPruned            uint64                `json:"orphansPruned"`
	Queues                   map[string]QueueStats `json:"queues,omitempty"`
	Goroutines               int                   `json:"goroutines"`
	GeneratedAt              time.Time             `json:"generatedAt"`
}

// QueueStats counts background job outcomes of one queue.
type QueueStats struct {
	Succeeded int64 `json:"succeeded"`
	Retried   int64 `json:"retried"`
	Dropped   int64 `json:"dropped"`
}
