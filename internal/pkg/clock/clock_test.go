package clock

import (
	"sync"
	"testing"
	"time"
)

func TestTimeClocker_UTC(t *testing.T) {
	if loc := New().Now().Location(); loc != time.UTC {
		t.Fatalf("location = %v, want UTC", loc)
	}
}

func TestFrozen(t *testing.T) {
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f := NewFrozen(start)

	if !f.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", f.Now(), start)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() { f.Advance(time.Second) })
	}
	wg.Wait()

	if got := f.Now(); !got.Equal(start.Add(10 * time.Second)) {
		t.Fatalf("after Advance Now() = %v", got)
	}

	f.Set(start)
	if !f.Now().Equal(start) {
		t.Fatalf("after Set Now() = %v", f.Now())
	}
}
