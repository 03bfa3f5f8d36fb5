package measure

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMeasure(t *testing.T) {
	t.Parallel()

	m := NewDefaultMeasure()
	mt := m.AddMetric("1. embed")
	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)

	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, 40*time.Millisecond, mt.TotalDuration())
	assert.Equal(t, 20*time.Millisecond, mt.AVGDuration())

	require.Same(t, mt, m.GetMetric("1. embed"))
	assert.Len(t, m.AllMetrics(), 1)
	assert.Nil(t, m.GetMetric("missing"))
}

func TestDefaultMetricZero(t *testing.T) {
	t.Parallel()

	mt := NewDefaultMeasure().AddMetric("idle")
	assert.Equal(t, time.Duration(0), mt.AVGDuration())
}

func TestDefaultMetricConcurrent(t *testing.T) {
	t.Parallel()

	mt := NewDefaultMeasure().AddMetric("busy")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mt.AddDuration(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), mt.Count())
	assert.Equal(t, 100*time.Millisecond, mt.TotalDuration())
}
