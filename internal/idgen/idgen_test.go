package idgen

import "testing"

func TestGenerator_ProducesValues(t *testing.T) {
	g := NewGenerator()
	seen := make(map[Id]struct{})
	for i := 0; i < 8; i++ {
		seen[g.Next()] = struct{}{}
	}
	if len(seen) == 0 {
		t.Fatalf("generator produced no ids")
	}
}

func TestFixed_RepeatsInOrder(t *testing.T) {
	f := NewFixed(10, 20, 30)
	got := []Id{f.Next(), f.Next(), f.Next(), f.Next()}
	want := []Id{10, 20, 30, 10}
	for i, id := range got {
		if id != want[i] {
			t.Fatalf("Next()[%d] = %d, want %d", i, id, want[i])
		}
	}
}

func TestCollisionProbability_MonotonicInN(t *testing.T) {
	small := CollisionProbability(2)
	large := CollisionProbability(1000)
	if !(small < large) {
		t.Fatalf("expected collision probability to grow with n: small=%v large=%v", small, large)
	}
	if CollisionProbability(1) != 0 {
		t.Fatalf("expected zero collision probability for a single id")
	}
}
