// Package handlers contains the health checker and the reusable middleware of
// the HTTP API.
package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK TYPES
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports the state of the service.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc returns an error when the checked dependency is down.
type HealthCheckFunc func(ctx context.Context) error

// Overall states.
const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the body of GET /health. Healthy is false only when a
// required check fails; a failing optional check (the stats cache) leaves the
// service degraded but serving.
type HealthStatus struct {
	Healthy   bool                   `json:"healthy"`
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Optional bool   `json:"optional,omitempty"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

type registeredCheck struct {
	fn       HealthCheckFunc
	optional bool
}

// CompositeHealthChecker runs its checks concurrently, each under its own
// timeout.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]registeredCheck
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewCompositeHealthChecker creates a checker with no checks; it reports ok.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		checks:    make(map[string]registeredCheck),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the per-check timeout.
func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// AddCheck registers a required check.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.add(name, check, false)
}

// AddOptionalCheck registers a check whose failure only degrades the status.
func (c *CompositeHealthChecker) AddOptionalCheck(name string, check HealthCheckFunc) {
	c.add(name, check, true)
}

func (c *CompositeHealthChecker) add(name string, check HealthCheckFunc, optional bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registeredCheck{fn: check, optional: optional}
}

// Check runs every registered check and aggregates the results.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]registeredCheck, len(c.checks))
	for name, rc := range c.checks {
		checks[name] = rc
	}
	timeout := c.timeout
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, rc := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := runCheck(ctx, rc, timeout)
			mu.Lock()
			results[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	var failedRequired, failedOptional []string
	for name, res := range results {
		if res.Healthy {
			continue
		}
		if res.Optional {
			failedOptional = append(failedOptional, name)
		} else {
			failedRequired = append(failedRequired, name)
		}
	}
	sort.Strings(failedRequired)
	sort.Strings(failedOptional)

	status := HealthStatus{
		Healthy:   len(failedRequired) == 0,
		Checks:    results,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	switch {
	case len(failedRequired) > 0:
		status.Status = StatusUnhealthy
		status.Message = "failed: " + strings.Join(append(failedRequired, failedOptional...), ", ")
	case len(failedOptional) > 0:
		status.Status = StatusDegraded
		status.Message = "degraded: " + strings.Join(failedOptional, ", ")
	default:
		status.Status = StatusOK
	}
	return status
}

func runCheck(ctx context.Context, rc registeredCheck, timeout time.Duration) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := rc.fn(checkCtx)
	res := CheckResult{
		Healthy:  err == nil,
		Optional: rc.optional,
		Message:  "ok",
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		res.Message = err.Error()
	}
	return res
}

// ══════════════════════════════════════════════════════════════════════════════
// PING CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// Pinger is anything with a connectivity check (sqlite storage, redis cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a Pinger as a HealthCheckFunc.
func PingCheck(p Pinger) HealthCheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
