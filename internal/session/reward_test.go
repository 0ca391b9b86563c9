package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/pet-arcade/internal/core"
)

func TestReward(t *testing.T) {
	for _, kind := range core.Kinds {
		gpp := DefaultGoldPerPoint(kind)
		for score := 0; score <= 1000; score += 37 {
			if got := Reward(score, gpp); got != score*gpp {
				t.Fatalf("Reward(%d, %d) = %d", score, gpp, got)
			}
		}
	}
	if DefaultGoldPerPoint(core.KindDodge) != 2 {
		t.Error("dodge pays 2 gold per point")
	}
}

func TestTunedGoldPerPoint(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "dodge.yaml")
	if err := os.WriteFile(custom, []byte("reward:\n  gold_per_point: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	zero := filepath.Join(dir, "zero.yaml")
	if err := os.WriteFile(zero, []byte("reward:\n  gold_per_point: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := TunedGoldPerPoint(core.KindDodge, custom); got != 7 {
		t.Errorf("tuned = %d, want 7", got)
	}
	if got := TunedGoldPerPoint(core.KindDodge, zero); got != 2 {
		t.Errorf("zero multiplier = %d, want the default 2", got)
	}
	if got := TunedGoldPerPoint(core.KindSnake, filepath.Join(dir, "missing.yaml")); got != 1 {
		t.Errorf("missing file = %d, want the default 1", got)
	}
}

func TestTimeSpent(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		started   time.Time
		completed time.Time
		want      int
	}{
		{"whole", base, base.Add(30 * time.Second), 30},
		{"floored", base, base.Add(59999 * time.Millisecond), 59},
		{"sub-second", base, base.Add(400 * time.Millisecond), 0},
		{"clock went back", base, base.Add(-5 * time.Second), 0},
		{"missing start", time.Time{}, base, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeSpent(tc.started, tc.completed); got != tc.want {
				t.Errorf("TimeSpent = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBalanceCreditOnce(t *testing.T) {
	b := NewBalance(10)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Credit("s1", 5)
		}()
	}
	wg.Wait()

	if b.Value() != 15 {
		t.Errorf("balance = %d, want 15", b.Value())
	}
	if !b.Credit("s2", 1) || b.Value() != 16 {
		t.Errorf("second session not credited: %d", b.Value())
	}
}

func TestBalanceFloor(t *testing.T) {
	var b Balance
	if !b.Credit("x", 5) {
		t.Error("zero-value balance should accept credits")
	}
	b.Credit("y", -20)
	if b.Value() != 0 {
		t.Errorf("balance below zero = %d, want 0", b.Value())
	}
}

func TestBalanceSyncDropsStaleValue(t *testing.T) {
	b := NewBalance(0)

	// a fetch goes out, then a play is credited before the answer lands
	seen := b.Version()
	b.Credit("run-1", 30)
	if b.Sync(0, seen) {
		t.Error("stale server value accepted")
	}
	if b.Value() != 30 {
		t.Errorf("balance = %d, want 30", b.Value())
	}

	// a fetch taken after the credit is applied
	seen = b.Version()
	if !b.Sync(45, seen) || b.Value() != 45 {
		t.Errorf("fresh sync rejected: %d", b.Value())
	}
	if b.Sync(50, seen) {
		t.Error("sync applied twice for the same version")
	}
}
