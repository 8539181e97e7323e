package controller

import (
	"sync"
	"time"
)

// Default timing constants
const (
	// DefaultSyncPeriod is the default interval for re-checking successfully
	// reconciled resources. This covers drift the watch events cannot see,
	// such as integration data changing out from under the workload.
	DefaultSyncPeriod = 5 * time.Minute
)

// Global controller configuration (set once at startup)
var (
	globalSyncPeriod     = DefaultSyncPeriod
	globalSyncPeriodOnce sync.Once
)

// SetSyncPeriod sets the global sync period for all controllers.
// This should only be called once during initialization, before any controllers start.
func SetSyncPeriod(d time.Duration) {
	globalSyncPeriodOnce.Do(func() {
		globalSyncPeriod = d
	})
}

// GetSyncPeriod returns the configured sync period for controllers.
func GetSyncPeriod() time.Duration {
	return globalSyncPeriod
}
