package layers

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolCreate(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 3, 3},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -2, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(tt.workers)
			defer p.Close()
			if got := p.Workers(); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
			if !p.IsRunning() {
				t.Error("pool not running after creation")
			}
		})
	}
}

func TestPoolExecuteAll(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var count atomic.Int64
	jobs := make([]func(), 100)
	for i := range jobs {
		jobs[i] = func() { count.Add(1) }
	}
	p.ExecuteAll(jobs)
	if got := count.Load(); got != 100 {
		t.Errorf("ran %d jobs, want 100", got)
	}
}

func TestPoolStealsFromSlowWorker(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	// Even jobs land on worker 0; the first blocks it long enough that the
	// rest of its queue must be stolen to finish in time.
	var count atomic.Int64
	jobs := make([]func(), 20)
	for i := range jobs {
		jobs[i] = func() { count.Add(1) }
	}
	jobs[0] = func() {
		time.Sleep(50 * time.Millisecond)
		count.Add(1)
	}

	start := time.Now()
	p.ExecuteAll(jobs)
	if got := count.Load(); got != 20 {
		t.Errorf("ran %d jobs, want 20", got)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("ExecuteAll took %v", elapsed)
	}
}

func TestPoolCloseTwice(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()
	if p.IsRunning() {
		t.Error("pool running after Close")
	}

	ran := false
	p.ExecuteAll([]func(){func() { ran = true }})
	if ran {
		t.Error("closed pool ran a job")
	}
}
