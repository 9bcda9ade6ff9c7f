package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prognoza/forecast-platform/api-gateway/config"
	"github.com/prognoza/forecast-platform/pkg/logger"
)

// InstanceHealth is the health of one backend instance.
type InstanceHealth struct {
	URL       string        `json:"url"`
	Status    string        `json:"status"` // healthy, unhealthy
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// GatewayHealth aggregates instance health into a gateway verdict.
type GatewayHealth struct {
	Gateway   string           `json:"gateway"`
	Backend   string           `json:"backend"`
	Status    string           `json:"status"` // healthy, degraded, unhealthy
	Instances []InstanceHealth `json:"instances"`
	Uptime    time.Duration    `json:"uptime_seconds"`
}

// HealthChecker probes the backend instances.
type HealthChecker struct {
	backend   config.BackendConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a checker over the configured backend.
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		backend: cfg.Backend,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		startTime: time.Now(),
	}
}

// CheckInstance probes a single backend instance.
func (h *HealthChecker) CheckInstance(ctx context.Context, baseURL string) InstanceHealth {
	start := time.Now()

	result := InstanceHealth{
		URL:       baseURL,
		Timestamp: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+h.backend.HealthCheck, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to create request: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to reach instance: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)

	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
	}

	return result
}

// CheckBackend probes all instances concurrently.
func (h *HealthChecker) CheckBackend(ctx context.Context) GatewayHealth {
	instances := make([]InstanceHealth, len(h.backend.Instances))
	var wg sync.WaitGroup

	for i, url := range h.backend.Instances {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			health := h.CheckInstance(ctx, u)
			instances[idx] = health

			if health.Status == "healthy" {
				logger.Logger.Debug().
					Str("instance", u).
					Dur("latency", health.Latency).
					Msg("Instance health check")
			} else {
				logger.Logger.Warn().
					Str("instance", u).
					Str("error", health.Error).
					Msg("Instance health check failed")
			}
		}(i, url)
	}

	wg.Wait()

	return GatewayHealth{
		Gateway:   "forecast-gateway",
		Backend:   h.backend.Name,
		Status:    overallStatus(instances),
		Instances: instances,
		Uptime:    time.Since(h.startTime),
	}
}

func overallStatus(instances []InstanceHealth) string {
	healthy := 0
	for _, inst := range instances {
		if inst.Status == "healthy" {
			healthy++
		}
	}

	switch {
	case healthy == len(instances):
		return "healthy"
	case healthy > 0:
		return "degraded"
	default:
		return "unhealthy"
	}
}

// QuickCheck reports the gateway's own liveness without probing the
// backend.
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"gateway":   "forecast-gateway",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}
