package engine

import (
	"slices"
	"testing"
)

func TestDiceDeterministic(t *testing.T) {
	a := NewDice(7, 0).RollN(50)
	b := NewDice(7, 0).RollN(50)
	if !slices.Equal(a, b) {
		t.Fatalf("same seed produced different rolls")
	}
	c := NewDice(8, 0).RollN(50)
	if slices.Equal(a, c) {
		t.Fatalf("different seeds produced identical streams")
	}
}

func TestDiceRange(t *testing.T) {
	d := NewDice(1, 0)
	for range 1000 {
		r := d.Roll()
		if r < 1 || r > 6 {
			t.Fatalf("roll %d out of range", r)
		}
	}
	if d.Counter() != 1000 {
		t.Errorf("counter = %d, want 1000", d.Counter())
	}
}

func TestDiceResume(t *testing.T) {
	full := NewDice(99, 0).RollN(20)
	resumed := NewDice(99, 12)
	if resumed.Counter() != 12 {
		t.Fatalf("counter = %d, want 12", resumed.Counter())
	}
	if got := resumed.RollN(8); !slices.Equal(got, full[12:]) {
		t.Errorf("resumed stream = %v, want %v", got, full[12:])
	}
}

func TestCountHits(t *testing.T) {
	if got := CountHits([]int{1, 2, 3, 4, 5, 6}, 3); got != 3 {
		t.Errorf("CountHits = %d, want 3", got)
	}
}
