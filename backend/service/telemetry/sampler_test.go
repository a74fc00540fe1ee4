package telemetry

import (
	"errors"
	"math"
	"testing"
)

// scriptedCounters 依次返回预设读数
type scriptedCounters struct {
	readings []counterReading
	index    int
}

type counterReading struct {
	rx, tx uint64
	active bool
	err    error
}

func (c *scriptedCounters) next() (uint64, uint64, bool, error) {
	reading := c.readings[c.index]
	if c.index < len(c.readings)-1 {
		c.index++
	}
	return reading.rx, reading.tx, reading.active, reading.err
}

func TestSamplerComputesMbpsFromDeltas(t *testing.T) {
	t.Parallel()

	counters := &scriptedCounters{readings: []counterReading{
		{rx: 1_000_000, tx: 500_000, active: true},
		{rx: 2_000_000, tx: 750_000, active: true},
	}}
	sampler := NewSampler(counters.next)

	sampler.Sample()
	if speed := sampler.Last(); speed.DownloadSpeed != 0 || speed.UploadSpeed != 0 {
		t.Fatalf("first sample must only prime the baseline, got %+v", speed)
	}

	sampler.Sample()
	speed := sampler.Last()
	if speed.DownloadSpeed <= 0 || speed.UploadSpeed <= 0 {
		t.Fatalf("expected positive speed after second sample, got %+v", speed)
	}
	// 1 MB 差值按 8 Mbit 计，上传应为下载的 1/4
	ratio := speed.DownloadSpeed / speed.UploadSpeed
	if math.Abs(ratio-4) > 0.01 {
		t.Fatalf("expected download/upload ratio 4, got %f (%+v)", ratio, speed)
	}
}

func TestSamplerReportsZeroWhenOffline(t *testing.T) {
	t.Parallel()

	counters := &scriptedCounters{readings: []counterReading{
		{rx: 1000, tx: 1000, active: true},
		{rx: 5000, tx: 5000, active: true},
		{active: false},
	}}
	sampler := NewSampler(counters.next)

	sampler.Sample()
	sampler.Sample()
	if speed := sampler.Last(); speed.DownloadSpeed == 0 {
		t.Fatalf("expected nonzero speed while online, got %+v", speed)
	}

	sampler.Sample()
	if speed := sampler.Last(); speed.DownloadSpeed != 0 || speed.UploadSpeed != 0 {
		t.Fatalf("expected zero speed offline, got %+v", speed)
	}
}

func TestSamplerDiscardsCounterWrap(t *testing.T) {
	t.Parallel()

	counters := &scriptedCounters{readings: []counterReading{
		{rx: 9_000_000, tx: 9_000_000, active: true},
		{rx: 100, tx: 100, active: true},
	}}
	sampler := NewSampler(counters.next)

	sampler.Sample()
	sampler.Sample()
	if speed := sampler.Last(); speed.DownloadSpeed != 0 || speed.UploadSpeed != 0 {
		t.Fatalf("wrapped counters must not produce a speed, got %+v", speed)
	}
}

func TestSamplerSurvivesSourceError(t *testing.T) {
	t.Parallel()

	counters := &scriptedCounters{readings: []counterReading{
		{err: errors.New("counters gone")},
	}}
	sampler := NewSampler(counters.next)

	sampler.Sample()
	if speed := sampler.Last(); speed.DownloadSpeed != 0 || speed.UploadSpeed != 0 {
		t.Fatalf("expected zero speed on error, got %+v", speed)
	}
}
