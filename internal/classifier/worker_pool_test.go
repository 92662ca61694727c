package classifier

import (
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool_ZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool == nil {
		t.Fatal("Expected non-nil WorkerPool")
	}
	if pool.Workers() <= 0 {
		t.Errorf("Expected CPU-based default worker count, got %d", pool.Workers())
	}
}

func TestWorkerPool_SubmitAndWait(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var counter int
	var mu sync.Mutex

	for i := 0; i < 50; i++ {
		pool.Submit(func() {
			mu.Lock()
			counter++
			mu.Unlock()
		})
	}

	pool.Wait()

	if counter != 50 {
		t.Errorf("Expected counter to be 50, got %d", counter)
	}
}

func TestWorkerPool_StartOnceCloseTwice(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start()

	var ran int32
	pool.Submit(func() { atomic.AddInt32(&ran, 1) })
	pool.Wait()

	pool.Close()
	pool.Close()

	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("Expected job to run once, ran %d times", ran)
	}
}

type stubClassifier struct {
	calls int32
}

func (s *stubClassifier) Classify(data []byte) Result {
	atomic.AddInt32(&s.calls, 1)
	if len(data) == 0 {
		return Result{Category: Unknown, Confidence: FallbackConfidence}
	}
	return Result{Category: Category(data), Confidence: 1}
}

func TestClassifyBatch_PreservesOrder(t *testing.T) {
	stub := &stubClassifier{}
	inputs := [][]byte{[]byte("burn"), nil, []byte("bruise"), []byte("minor_cut")}

	results := ClassifyBatch(stub, inputs, 3)

	want := []Category{Burn, Unknown, Bruise, MinorCut}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i, category := range want {
		if results[i].Category != category {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Category, category)
		}
	}
	if stub.calls != int32(len(inputs)) {
		t.Errorf("Expected %d classify calls, got %d", len(inputs), stub.calls)
	}
}

func TestClassifyBatch_RealPipeline(t *testing.T) {
	inputs := [][]byte{
		encodePNG(t, createTestImage(40, 40, color.RGBA{200, 80, 80, 255})),
		[]byte("garbage"),
		encodePNG(t, createTestImage(40, 40, color.RGBA{80, 80, 150, 255})),
	}

	results := ClassifyBatch(NewInjuryClassifier(), inputs, 0)

	if results[0].Category != MinorCut {
		t.Errorf("Expected minor_cut, got %s", results[0].Category)
	}
	if results[1].Category != Unknown || results[1].Features != nil {
		t.Errorf("Expected undecodable input to be unknown without features, got %+v", results[1])
	}
	if results[2].Category != Bruise {
		t.Errorf("Expected bruise, got %s", results[2].Category)
	}
}

func TestClassifyBatch_Empty(t *testing.T) {
	if got := ClassifyBatch(&stubClassifier{}, nil, 4); len(got) != 0 {
		t.Errorf("Expected no results, got %d", len(got))
	}
}
