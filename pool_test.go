package pdfserve

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// countingEngine is a no-op engine for pool behavior tests.
type countingEngine struct {
	id       int
	closeErr error
	closed   atomic.Bool
}

func (e *countingEngine) Render(ctx context.Context, job Job) error { return nil }

func (e *countingEngine) Close() error {
	e.closed.Store(true)
	return e.closeErr
}

func TestResolvePoolSize(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 3, 3},
		{"explicit above cap", MaxPoolSize + 5, MaxPoolSize + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSizeAuto(t *testing.T) {
	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Fatalf("auto pool size %d outside [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
	if want := runtime.GOMAXPROCS(0) / cpuDivisor; want >= MinPoolSize && want <= MaxPoolSize && got != want {
		t.Errorf("auto pool size = %d, want %d", got, want)
	}
}

func TestPoolCreatesLazily(t *testing.T) {
	var created atomic.Int32
	p := newEnginePool(4, func() Engine {
		return &countingEngine{id: int(created.Add(1))}
	})

	if created.Load() != 0 {
		t.Fatalf("pool created %d engines before first acquire", created.Load())
	}

	eng := p.acquire()
	if created.Load() != 1 {
		t.Fatalf("created = %d after one acquire, want 1", created.Load())
	}
	p.release(eng)
}

func TestPoolReusesReleasedEngine(t *testing.T) {
	var created atomic.Int32
	p := newEnginePool(4, func() Engine {
		return &countingEngine{id: int(created.Add(1))}
	})

	eng := p.acquire()
	p.release(eng)

	again := p.acquire()
	if again != eng {
		t.Error("released engine was not reused")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
	p.release(again)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 2
	var created atomic.Int32
	p := newEnginePool(size, func() Engine {
		return &countingEngine{id: int(created.Add(1))}
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng := p.acquire()
			p.release(eng)
		}()
	}
	wg.Wait()

	if n := created.Load(); n > size {
		t.Errorf("pool created %d engines, cap is %d", n, size)
	}
}

func TestPoolCloseAggregatesErrors(t *testing.T) {
	fail1 := errors.New("first close failure")
	fail2 := errors.New("second close failure")
	engines := []*countingEngine{
		{id: 1, closeErr: fail1},
		{id: 2},
		{id: 3, closeErr: fail2},
	}
	var next atomic.Int32
	p := newEnginePool(3, func() Engine {
		return engines[next.Add(1)-1]
	})

	// Force creation of all three.
	a, b, c := p.acquire(), p.acquire(), p.acquire()
	p.release(a)
	p.release(b)
	p.release(c)

	err := p.close()
	if !errors.Is(err, fail1) || !errors.Is(err, fail2) {
		t.Fatalf("close = %v, want both failures joined", err)
	}
	for _, e := range engines {
		if !e.closed.Load() {
			t.Errorf("engine %d was not closed", e.id)
		}
	}
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	p := newEnginePool(1, func() Engine { return &countingEngine{} })
	eng := p.acquire()
	p.release(eng)

	if err := p.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestPoolReleaseRacingCloseIsSafe(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := newEnginePool(4, func() Engine { return &countingEngine{} })
		engines := []Engine{p.acquire(), p.acquire(), p.acquire(), p.acquire()}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for _, eng := range engines {
				p.release(eng)
			}
		}()
		go func() {
			defer wg.Done()
			_ = p.close()
		}()
		wg.Wait()
	}
}

func TestPoolAcquireAfterClosePanics(t *testing.T) {
	p := newEnginePool(1, func() Engine { return &countingEngine{} })
	eng := p.acquire()
	p.release(eng)
	if err := p.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("acquire after close should panic")
		}
	}()
	p.acquire()
}

func TestPoolSizeFloor(t *testing.T) {
	p := newEnginePool(0, func() Engine { return &countingEngine{} })
	if p.size != 1 {
		t.Errorf("pool size = %d, want floor of 1", p.size)
	}
}
