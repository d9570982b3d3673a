package atomicfloat

import (
	"sync"
	"testing"
)

func TestFloat64LoadStoreRoundTrip(t *testing.T) {
	f := NewFloat64(1.5)
	if got := f.Load(); got != 1.5 {
		t.Errorf("Load() = %f, want 1.5", got)
	}
	f.Store(-2.25)
	if got := f.Load(); got != -2.25 {
		t.Errorf("Load() after Store = %f, want -2.25", got)
	}
}

func TestFloat64AddReturnsUpdatedValue(t *testing.T) {
	f := NewFloat64(10)
	got := f.Add(5)
	if got != 15 {
		t.Errorf("Add(5) = %f, want 15", got)
	}
	if f.Load() != 15 {
		t.Errorf("Load() after Add = %f, want 15", f.Load())
	}
}

func TestFloat64AddIsConcurrencySafe(t *testing.T) {
	f := NewFloat64(0)
	const goroutines = 50
	const perGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				f.Add(1)
			}
		}()
	}
	wg.Wait()

	want := float64(goroutines * perGoroutine)
	if got := f.Load(); got != want {
		t.Errorf("Load() after concurrent Add = %f, want %f", got, want)
	}
}

func TestBufferAddAndLoadPerCell(t *testing.T) {
	b := NewBuffer(3)
	b.Add(0, 1.0)
	b.Add(1, 2.0)
	b.Add(1, 3.0)
	b.Add(2, -1.0)

	want := []float64{1.0, 5.0, -1.0}
	for i, w := range want {
		if got := b.Load(i); got != w {
			t.Errorf("Load(%d) = %f, want %f", i, got, w)
		}
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestBufferResetZeroesAllCells(t *testing.T) {
	b := NewBuffer(4)
	for i := 0; i < b.Len(); i++ {
		b.Add(i, float64(i)+1)
	}
	b.Reset()
	for i := 0; i < b.Len(); i++ {
		if got := b.Load(i); got != 0 {
			t.Errorf("Load(%d) after Reset = %f, want 0", i, got)
		}
	}
}

func TestBufferMergeIntoAccumulatesOntoDestination(t *testing.T) {
	dst := NewBuffer(2)
	dst.Add(0, 10)
	dst.Add(1, 20)

	src := NewBuffer(2)
	src.Add(0, 1)
	src.Add(1, 2)

	src.MergeInto(dst)

	if got := dst.Load(0); got != 11 {
		t.Errorf("dst.Load(0) = %f, want 11", got)
	}
	if got := dst.Load(1); got != 22 {
		t.Errorf("dst.Load(1) = %f, want 22", got)
	}
	// src must be unaffected by merging into dst.
	if got := src.Load(0); got != 1 {
		t.Errorf("src.Load(0) after MergeInto = %f, want unchanged 1", got)
	}
}

func TestBufferMergeIntoIsOrderIndependentAcrossWorkers(t *testing.T) {
	dst1 := NewBuffer(2)
	dst2 := NewBuffer(2)

	workerA := NewBuffer(2)
	workerA.Add(0, 3)
	workerA.Add(1, 4)
	workerB := NewBuffer(2)
	workerB.Add(0, 5)
	workerB.Add(1, 6)

	workerA.MergeInto(dst1)
	workerB.MergeInto(dst1)

	workerB.MergeInto(dst2)
	workerA.MergeInto(dst2)

	for i := 0; i < 2; i++ {
		if dst1.Load(i) != dst2.Load(i) {
			t.Errorf("cell %d: merge order produced %f vs %f, want equal", i, dst1.Load(i), dst2.Load(i))
		}
	}
}
