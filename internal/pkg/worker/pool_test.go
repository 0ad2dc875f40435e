package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pinpoint.dev/pinpoint/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func newTestPools(t *testing.T, cfg PoolConfig) *Pools {
	t.Helper()
	pools, err := NewPools(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewPools() error = %v", err)
	}
	t.Cleanup(pools.Shutdown)
	return pools
}

func TestNewPools(t *testing.T) {
	pools := newTestPools(t, DefaultPoolConfig())
	if pools.General == nil || pools.Mail == nil {
		t.Fatalf("pools not initialized: %+v", pools)
	}
}

func TestPool_Submit(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 10, MailPoolSize: 5})

	done := make(chan struct{})
	err := pools.General.Submit(context.Background(), func(ctx context.Context) {
		close(done)
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestPool_Submit_CancelledContext(t *testing.T) {
	pools := newTestPools(t, DefaultPoolConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pools.Mail.Submit(ctx, func(ctx context.Context) {
		t.Error("task must not run with a cancelled context")
	})
	if err != context.Canceled {
		t.Errorf("Submit() error = %v, want context.Canceled", err)
	}
}

func TestPool_Submit_Concurrent(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 4, MailPoolSize: 4})

	const n = 32
	var ran atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		if err := pools.Mail.Submit(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			ran.Add(1)
		}); err != nil {
			wg.Done()
			t.Errorf("Submit() error = %v", err)
		}
	}
	wg.Wait()

	if ran.Load() != n {
		t.Errorf("ran = %d, want %d", ran.Load(), n)
	}
}

func TestPools_SubmitDetached(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 2, MailPoolSize: 2})

	done := make(chan struct{})
	err := pools.SubmitDetached("mail", func(ctx context.Context) {
		if ctx.Err() != nil {
			t.Error("service context must be live while the pools are up")
		}
		close(done)
	})
	if err != nil {
		t.Fatalf("SubmitDetached() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("detached task did not run")
	}

	// Unknown pool names fall back to the general pool.
	fallback := make(chan struct{})
	if err := pools.SubmitDetached("bogus", func(ctx context.Context) {
		close(fallback)
	}); err != nil {
		t.Fatalf("SubmitDetached() error = %v", err)
	}
	select {
	case <-fallback:
	case <-time.After(2 * time.Second):
		t.Fatal("fallback task did not run")
	}
}

func TestPools_Metrics(t *testing.T) {
	pools := newTestPools(t, PoolConfig{GeneralPoolSize: 4, MailPoolSize: 2})

	m := pools.Metrics()
	general, ok := m["general"].(map[string]int)
	if !ok || general["cap"] != 4 {
		t.Errorf("general metrics = %v, want cap 4", m["general"])
	}
	mail, ok := m["mail"].(map[string]int)
	if !ok || mail["cap"] != 2 {
		t.Errorf("mail metrics = %v, want cap 2", m["mail"])
	}
}
