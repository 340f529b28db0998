package performance

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageMetrics records one completed pipeline stage
type StageMetrics struct {
	Name     string
	Items    int
	Duration time.Duration
}

// StageTimer tracks timing for a single stage run
type StageTimer struct {
	Name      string
	StartTime time.Time
}

// StageMonitor collects per-stage timings of a merge run. Stages may be timed
// from several goroutines.
type StageMonitor struct {
	logger *zap.Logger
	stages []StageMetrics
	mu     sync.RWMutex
	now    func() time.Time
}

// NewStageMonitor creates a new stage monitor
func NewStageMonitor(logger *zap.Logger) *StageMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StageMonitor{
		logger: logger,
		now:    time.Now,
	}
}

// StartStage begins timing a stage
func (sm *StageMonitor) StartStage(name string) *StageTimer {
	return &StageTimer{
		Name:      name,
		StartTime: sm.now(),
	}
}

// EndStage completes timing and records how many items the stage produced
func (sm *StageMonitor) EndStage(timer *StageTimer, items int) StageMetrics {
	metrics := StageMetrics{
		Name:     timer.Name,
		Items:    items,
		Duration: sm.now().Sub(timer.StartTime),
	}

	sm.mu.Lock()
	sm.stages = append(sm.stages, metrics)
	sm.mu.Unlock()

	sm.logger.Debug("stage completed",
		zap.String("stage", metrics.Name),
		zap.Int("items", metrics.Items),
		zap.Duration("duration", metrics.Duration))

	return metrics
}

// GetMetrics returns a copy of the recorded stages in completion order
func (sm *StageMonitor) GetMetrics() []StageMetrics {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	out := make([]StageMetrics, len(sm.stages))
	copy(out, sm.stages)
	return out
}

// Durations returns stage durations keyed by stage name
func (sm *StageMonitor) Durations() map[string]time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	durations := make(map[string]time.Duration, len(sm.stages))
	for _, stage := range sm.stages {
		durations[stage.Name] += stage.Duration
	}
	return durations
}

// GetSummary returns a formatted summary of the recorded stages
func (sm *StageMonitor) GetSummary() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if len(sm.stages) == 0 {
		return "No stage metrics available"
	}

	var b strings.Builder
	b.WriteString("Stage Summary:\n")
	var total time.Duration
	for _, stage := range sm.stages {
		fmt.Fprintf(&b, "  %-12s %6d items  %v\n", stage.Name, stage.Items, stage.Duration)
		total += stage.Duration
	}
	fmt.Fprintf(&b, "  Total: %v\n", total)
	return b.String()
}

// LogCurrentMetrics logs every recorded stage at info level
func (sm *StageMonitor) LogCurrentMetrics() {
	for _, stage := range sm.GetMetrics() {
		sm.logger.Info("stage metrics",
			zap.String("stage", stage.Name),
			zap.Int("items", stage.Items),
			zap.Duration("duration", stage.Duration))
	}
}

// Reset clears all recorded stages
func (sm *StageMonitor) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.stages = nil
}
