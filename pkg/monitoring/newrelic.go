package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		// Return disabled app
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// StartTransaction starts a new transaction
func (nr *NewRelicApp) StartTransaction(name string) *newrelic.Transaction {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return nil
	}
	return nr.Application.StartTransaction(name)
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Custom metric helpers

// RecordRiderCreated records a rider joining the roster
func (nr *NewRelicApp) RecordRiderCreated(vehicle, status, store string) {
	nr.RecordCustomEvent("RiderCreated", map[string]interface{}{
		"vehicle":   vehicle,
		"status":    status,
		"store":     store,
		"timestamp": time.Now().Unix(),
	})
}

// RecordRiderUpdated records a roster change
func (nr *NewRelicApp) RecordRiderUpdated(riderID, status string) {
	nr.RecordCustomEvent("RiderUpdated", map[string]interface{}{
		"rider_id": riderID,
		"status":   status,
	})
}

// RecordRiderDeleted records a rider leaving the roster
func (nr *NewRelicApp) RecordRiderDeleted(riderID string) {
	nr.RecordCustomEvent("RiderDeleted", map[string]interface{}{
		"rider_id": riderID,
	})
}

// RecordStoreSelected records the outcome of persistence selection
func (nr *NewRelicApp) RecordStoreSelected(mode, store string, connectMs float64) {
	nr.RecordCustomEvent("StoreSelected", map[string]interface{}{
		"mode":  mode,
		"store": store,
	})
	nr.RecordCustomMetric("custom/store/connect_latency_ms", connectMs)
}

// RecordRosterSize records the number of riders on the roster
func (nr *NewRelicApp) RecordRosterSize(total int64) {
	nr.RecordCustomMetric("custom/roster/size", float64(total))
}

// RecordRedisPoolStats records Redis pool statistics
func (nr *NewRelicApp) RecordRedisPoolStats(stats map[string]interface{}) {
	if hits, ok := stats["hits"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_hits", float64(hits))
	}
	if misses, ok := stats["misses"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_misses", float64(misses))
	}
	if timeouts, ok := stats["timeouts"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/timeouts", float64(timeouts))
	}
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled
}

// Agent returns the underlying application, or nil when monitoring is disabled
func (nr *NewRelicApp) Agent() *newrelic.Application {
	if !nr.IsEnabled() {
		return nil
	}
	return nr.Application
}
