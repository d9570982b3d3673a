package telemetry

import (
	"testing"
	"time"
)

func TestConnLimiterAllowsUpToPerMinuteThenBlocks(t *testing.T) {
	l := newConnLimiter(10)

	ok, remaining := l.allow("1.2.3.4:1000")
	if !ok {
		t.Fatal("first connection should be allowed")
	}
	if remaining != 9 {
		t.Fatalf("remaining = %d, want 9", remaining)
	}

	for i := 0; i < 9; i++ {
		if ok, _ = l.allow("1.2.3.4:1000"); !ok {
			t.Fatalf("connection %d should be allowed", i+2)
		}
	}

	if ok, remaining = l.allow("1.2.3.4:1000"); ok {
		t.Fatal("should be rate limited after exhausting the bucket")
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
}

func TestConnLimiterRefillsAfterAMinute(t *testing.T) {
	l := newConnLimiter(5)
	mockTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return mockTime }

	for i := 0; i < 5; i++ {
		l.allow("addr")
	}
	if ok, _ := l.allow("addr"); ok {
		t.Fatal("should be rate limited once exhausted")
	}

	mockTime = mockTime.Add(time.Minute)
	ok, remaining := l.allow("addr")
	if !ok {
		t.Fatal("should be allowed again after the window refills")
	}
	if remaining != 4 {
		t.Fatalf("remaining = %d, want 4", remaining)
	}
}

func TestConnLimiterIsolatesByAddress(t *testing.T) {
	l := newConnLimiter(1)
	l.allow("addr-a")
	if ok, _ := l.allow("addr-a"); ok {
		t.Fatal("addr-a should be rate limited")
	}
	if ok, _ := l.allow("addr-b"); !ok {
		t.Fatal("addr-b must not be affected by addr-a's limit")
	}
}

func TestConnLimiterZeroPerMinuteDefaultsToOne(t *testing.T) {
	l := newConnLimiter(0)
	if ok, _ := l.allow("addr"); !ok {
		t.Fatal("first connection should be allowed even with perMin<=0")
	}
	if ok, _ := l.allow("addr"); ok {
		t.Fatal("second connection should be blocked once defaulted to 1/min")
	}
}
