package health

import (
	"context"
	"fmt"
	"time"

	"aria/client/internal/focus"
)

type CheckResult struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency_ns"`
	Error   string        `json:"error,omitempty"`
}

type HealthStatus struct {
	OK        bool          `json:"ok"`
	Checks    []CheckResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

func (h HealthStatus) String() string {
	status := "OK"
	if !h.OK {
		status = "FAIL"
	}
	s := fmt.Sprintf("Health: %s\n", status)
	for _, c := range h.Checks {
		mark := "✓"
		if !c.OK {
			mark = "✗"
		}
		s += fmt.Sprintf("  %s %s (%dms)", mark, c.Name, c.Latency.Milliseconds())
		if c.Error != "" {
			s += fmt.Sprintf(" - %s", c.Error)
		}
		s += "\n"
	}
	return s
}

// CheckAll runs all health checks and returns combined status
func CheckAll(ctx context.Context, mgr *focus.Manager) HealthStatus {
	checks := []CheckResult{
		checkExecutor(ctx, mgr),
		checkChannels(mgr),
	}

	allOK := true
	for _, c := range checks {
		if !c.OK {
			allOK = false
		}
	}

	return HealthStatus{
		OK:        allOK,
		Checks:    checks,
		CheckedAt: time.Now().UTC(),
	}
}

// checkExecutor round-trips a task through the arbitration worker. A stall
// here means focus requests are no longer being served.
func checkExecutor(ctx context.Context, mgr *focus.Manager) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "executor"}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := mgr.Drain(ctx); err != nil {
		result.Error = fmt.Sprintf("worker did not respond: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	result.Latency = time.Since(start)
	result.OK = true
	return result
}

func checkChannels(mgr *focus.Manager) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "channels"}

	if len(mgr.ChannelStates()) == 0 {
		result.Error = "no channels registered"
		result.Latency = time.Since(start)
		return result
	}

	result.Latency = time.Since(start)
	result.OK = true
	return result
}
