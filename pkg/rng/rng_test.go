package rng

import "testing"

func TestPCGRanges(t *testing.T) {
	src := New(42)
	for i := 0; i < 2000; i++ {
		if v := src.Intn(7); v < 0 || v >= 7 {
			t.Fatalf("Intn(7) = %d", v)
		}
		if v := src.IntRange(2, 4); v < 2 || v > 4 {
			t.Fatalf("IntRange(2,4) = %d", v)
		}
		if v := src.Float(0.5, 1); v < 0.5 || v >= 1 {
			t.Fatalf("Float(0.5,1) = %f", v)
		}
	}
}

func TestIntRangeInclusive(t *testing.T) {
	src := New(7)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		seen[src.IntRange(1, 3)] = true
	}
	for v := 1; v <= 3; v++ {
		if !seen[v] {
			t.Errorf("IntRange(1,3) never produced %d", v)
		}
	}
}

func TestPCGDeterministic(t *testing.T) {
	a, b := New(99), New(99)
	for i := 0; i < 100; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatal("same seed produced different streams")
		}
	}
}

func TestDegenerateBounds(t *testing.T) {
	src := New(1)
	if src.Intn(0) != 0 {
		t.Error("Intn(0) should be 0")
	}
	if src.IntRange(5, 5) != 5 {
		t.Error("IntRange(5,5) should be 5")
	}
	if src.Float(2, 2) != 2 {
		t.Error("Float(2,2) should be 2")
	}
}

func TestParseSeed(t *testing.T) {
	if got := ParseSeed("1234"); got != 1234 {
		t.Errorf("ParseSeed(1234) = %d", got)
	}
	if ParseSeed("pipes") != ParseSeed("pipes") {
		t.Error("text seeds must hash deterministically")
	}
	if ParseSeed("pipes") == ParseSeed("tubes") {
		t.Error("different text seeds collided")
	}
}

func TestSequence(t *testing.T) {
	s := NewSequence(3, 8, 1)
	if got := s.Intn(5); got != 3 {
		t.Errorf("first draw = %d, want 3", got)
	}
	if got := s.IntRange(10, 12); got != 12 {
		t.Errorf("IntRange = %d, want 12", got)
	}
	if got := s.Intn(10); got != 1 {
		t.Errorf("third draw = %d, want 1", got)
	}
	if got := s.Intn(10); got != 3 {
		t.Errorf("wrapped draw = %d, want 3", got)
	}
	if s.Calls != 4 {
		t.Errorf("Calls = %d, want 4", s.Calls)
	}
}
