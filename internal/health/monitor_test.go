package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingProber struct {
	id    string
	err   error
	calls int64
}

func (p *countingProber) ID() string { return p.id }
func (p *countingProber) Probe(ctx context.Context) error {
	atomic.AddInt64(&p.calls, 1)
	return p.err
}

func TestMonitor_RecordsProbeOutcomes(t *testing.T) {
	up := &countingProber{id: "up-provider"}
	down := &countingProber{id: "down-provider", err: errors.New("unreachable")}
	m := NewMonitor(5*time.Minute, time.Second, zap.NewNop(), up, down)

	status := m.Status(context.Background())
	if !status.Healthy("up-provider") {
		t.Error("Healthy(up-provider) = false, want true")
	}
	if status.Healthy("down-provider") {
		t.Error("Healthy(down-provider) = true, want false")
	}
	if status.CheckedAt.IsZero() {
		t.Error("CheckedAt is zero")
	}
}

func TestMonitor_IdempotentWithinTTL(t *testing.T) {
	p := &countingProber{id: "provider"}
	m := NewMonitor(5*time.Minute, time.Second, zap.NewNop(), p)

	first := m.Status(context.Background())
	second := m.Status(context.Background())

	if got := atomic.LoadInt64(&p.calls); got != 1 {
		t.Errorf("probe calls = %d, want 1", got)
	}
	if !first.CheckedAt.Equal(second.CheckedAt) {
		t.Error("CheckedAt changed within TTL window")
	}
	if first.Healthy("provider") != second.Healthy("provider") {
		t.Error("health flipped within TTL window")
	}
}

func TestMonitor_ReprobesAfterTTL(t *testing.T) {
	p := &countingProber{id: "provider"}
	m := NewMonitor(time.Millisecond, time.Second, zap.NewNop(), p)

	m.Status(context.Background())
	time.Sleep(5 * time.Millisecond)
	m.Status(context.Background())

	if got := atomic.LoadInt64(&p.calls); got != 2 {
		t.Errorf("probe calls = %d, want 2", got)
	}
}

func TestMonitor_UnknownProviderUnhealthy(t *testing.T) {
	m := NewMonitor(5*time.Minute, time.Second, zap.NewNop())
	status := m.Status(context.Background())
	if status.Healthy("never-registered") {
		t.Error("Healthy(never-registered) = true, want false")
	}
}

func TestMonitor_SlowProbeTimesOut(t *testing.T) {
	slow := ProberFunc("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	m := NewMonitor(5*time.Minute, 10*time.Millisecond, zap.NewNop(), slow)

	start := time.Now()
	status := m.Status(context.Background())
	if status.Healthy("slow") {
		t.Error("Healthy(slow) = true, want false after timeout")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Status blocked past the probe timeout")
	}
}
