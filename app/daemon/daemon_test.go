package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goncharom/yomu/app/schedule"
)

// MockCycleRunner implements CycleRunner and signals each invocation.
type MockCycleRunner struct {
	mu    sync.Mutex
	count int
	ran   chan struct{}
	err   error
}

func NewMockCycleRunner() *MockCycleRunner {
	return &MockCycleRunner{ran: make(chan struct{}, 16)}
}

func (m *MockCycleRunner) RunCycle(ctx context.Context) error {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	select {
	case m.ran <- struct{}{}:
	default:
	}
	return m.err
}

func (m *MockCycleRunner) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

func mustParse(t *testing.T, exprs ...string) *schedule.Set {
	t.Helper()
	set, err := schedule.Parse(exprs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return set
}

// advancingClock jumps forward on every call, so each computed fire
// instant is already in the past and the daemon never really sleeps.
func advancingClock(base time.Time, jump time.Duration) func() time.Time {
	var mu sync.Mutex
	calls := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := base.Add(time.Duration(calls) * jump)
		calls++
		return t
	}
}

func TestDaemon_RunsCycleAtFireInstant(t *testing.T) {
	runner := NewMockCycleRunner()
	d := NewDaemon(mustParse(t, "* * * * *"), runner)
	d.now = advancingClock(time.Date(2024, 3, 15, 8, 0, 30, 0, time.UTC), 2*time.Minute)

	d.Start()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a cycle to run")
	}

	d.Stop()

	if runner.Count() == 0 {
		t.Error("Expected at least one cycle")
	}
}

func TestDaemon_StopBeforeFireExitsPromptly(t *testing.T) {
	runner := NewMockCycleRunner()
	// Fires once a year; Stop must not wait for it.
	d := NewDaemon(mustParse(t, "0 0 1 1 *"), runner)

	d.Start()

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return promptly")
	}

	if runner.Count() != 0 {
		t.Errorf("Expected no cycles before fire, got %d", runner.Count())
	}
}

func TestDaemon_CycleErrorIsNotFatal(t *testing.T) {
	runner := NewMockCycleRunner()
	runner.err = context.DeadlineExceeded

	d := NewDaemon(mustParse(t, "* * * * *"), runner)
	d.now = advancingClock(time.Date(2024, 3, 15, 8, 0, 30, 0, time.UTC), 2*time.Minute)

	d.Start()

	// Two observed runs prove the loop survived the first error.
	for i := 0; i < 2; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("Expected cycle %d despite runner errors", i+1)
		}
	}

	d.Stop()
}

func TestDaemon_WaitUntilHonorsShutdown(t *testing.T) {
	d := NewDaemon(mustParse(t, "* * * * *"), NewMockCycleRunner())

	done := make(chan bool, 1)
	go func() {
		done <- d.waitUntil(time.Now().Add(time.Hour))
	}()

	d.cancel()

	select {
	case fired := <-done:
		if fired {
			t.Error("Expected waitUntil to report shutdown, not a fire")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waitUntil did not observe shutdown")
	}
}

func TestDaemon_WaitUntilPastInstantReturnsImmediately(t *testing.T) {
	d := NewDaemon(mustParse(t, "* * * * *"), NewMockCycleRunner())

	start := time.Now()
	if !d.waitUntil(start.Add(-time.Minute)) {
		t.Error("Expected past instant to fire immediately")
	}
	if time.Since(start) > time.Second {
		t.Error("waitUntil slept for a past instant")
	}
}
