package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func TestAdmitFirstCall(t *testing.T) {
	l := NewLimiter(2*time.Second, 0)

	allowed, retryAfter := l.Admit("1.2.3.4")
	if !allowed {
		t.Fatal("Expected first call to be allowed")
	}
	if retryAfter != 0 {
		t.Errorf("Expected zero retry_after on allowed call, got %f", retryAfter)
	}
}

func TestAdmitDeniesWithinInterval(t *testing.T) {
	// 100ms interval, calls 25ms apart: one allowed, one denied with
	// roughly 75ms remaining.
	l := NewLimiter(100*time.Millisecond, 0)

	allowed, _ := l.Admit("1.2.3.4")
	if !allowed {
		t.Fatal("Expected first call to be allowed")
	}

	time.Sleep(25 * time.Millisecond)

	allowed, retryAfter := l.Admit("1.2.3.4")
	if allowed {
		t.Fatal("Expected second call within interval to be denied")
	}
	if retryAfter <= 0 || retryAfter > 0.1 {
		t.Errorf("Expected retry_after in (0, 0.1], got %f", retryAfter)
	}
	if retryAfter < 0.05 {
		t.Errorf("Expected roughly 75ms remaining, got %f", retryAfter)
	}
}

func TestAdmitAllowsAfterInterval(t *testing.T) {
	l := NewLimiter(50*time.Millisecond, 0)

	if allowed, _ := l.Admit("1.2.3.4"); !allowed {
		t.Fatal("Expected first call to be allowed")
	}

	time.Sleep(60 * time.Millisecond)

	if allowed, _ := l.Admit("1.2.3.4"); !allowed {
		t.Error("Expected call after the interval to be allowed")
	}
}

func TestCallersAreIndependent(t *testing.T) {
	l := NewLimiter(time.Minute, 0)

	if allowed, _ := l.Admit("1.2.3.4"); !allowed {
		t.Fatal("Expected first caller to be allowed")
	}
	if allowed, _ := l.Admit("5.6.7.8"); !allowed {
		t.Error("Expected a distinct caller to be allowed immediately")
	}
	if allowed, _ := l.Admit("1.2.3.4"); allowed {
		t.Error("Expected repeat call from first caller to be denied")
	}
}

func TestDenialDoesNotResetWindow(t *testing.T) {
	l := NewLimiter(100*time.Millisecond, 0)

	l.Admit("1.2.3.4")
	time.Sleep(30 * time.Millisecond)

	_, first := l.Admit("1.2.3.4")
	time.Sleep(30 * time.Millisecond)
	_, second := l.Admit("1.2.3.4")

	if second >= first {
		t.Errorf("Expected remaining wait to shrink between denials: %f then %f", first, second)
	}
}

func TestEvictionCapsMapSize(t *testing.T) {
	l := NewLimiter(time.Millisecond, 10)

	for i := 0; i < 100; i++ {
		l.Admit(fmt.Sprintf("10.0.0.%d", i))
	}

	if l.Len() > 11 {
		t.Errorf("Expected visitor map capped near 10, got %d", l.Len())
	}
}

func TestMaxEntriesDefaultsWhenUnset(t *testing.T) {
	l := NewLimiter(time.Second, 0)
	if l.maxEntries != DefaultMaxEntries {
		t.Errorf("Expected default cap %d, got %d", DefaultMaxEntries, l.maxEntries)
	}

	l = NewLimiter(time.Second, 25)
	if l.maxEntries != 25 {
		t.Errorf("Expected configured cap 25, got %d", l.maxEntries)
	}
}
