package measure

import "time"

// Measure collects per-step invocation timing for one pipeline.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the call durations of one step.
type Metric interface {
	AddDuration(elapsed time.Duration)
	Count() int64
	TotalDuration() time.Duration
	AVGDuration() time.Duration
}
