package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts pay-run activity. All counters are atomics so the engine
// and handlers can record from any goroutine.
type Collector struct {
	runsTotal             uint64
	employeesTotal        uint64
	failuresTotal         uint64
	engineDurationMsTotal uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) RecordRun(employees, failures int, duration time.Duration) {
	atomic.AddUint64(&c.runsTotal, 1)
	atomic.AddUint64(&c.employeesTotal, uint64(employees))
	atomic.AddUint64(&c.failuresTotal, uint64(failures))
	atomic.AddUint64(&c.engineDurationMsTotal, uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() map[string]any {
	runs := atomic.LoadUint64(&c.runsTotal)
	employees := atomic.LoadUint64(&c.employeesTotal)
	failures := atomic.LoadUint64(&c.failuresTotal)
	totalMs := atomic.LoadUint64(&c.engineDurationMsTotal)
	avg := float64(0)
	if runs > 0 {
		avg = float64(totalMs) / float64(runs)
	}
	return map[string]any{
		"runsTotal":          runs,
		"employeesTotal":     employees,
		"failuresTotal":      failures,
		"avgRunDurationMs":   avg,
		"runDurationMsTotal": totalMs,
	}
}
