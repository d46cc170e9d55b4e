package fuzzy

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestNewRejectsInvertedBounds(t *testing.T) {
	if _, err := New(5, 3, 1); err == nil {
		t.Error("expected error for left > right")
	}
	// peak вне носителя допустим
	if _, err := New(1, 10, 2); err != nil {
		t.Errorf("peak outside support must be accepted: %v", err)
	}
}

func TestAddComponentwise(t *testing.T) {
	a := MustNew(1, 2, 3)
	b := MustNew(10, 20, 30)
	sum := a.Add(b)
	if sum.Left != 11 || sum.Peak != 22 || sum.Right != 33 {
		t.Errorf("unexpected sum: %v", sum)
	}
}

func TestSubInverseOfAdd(t *testing.T) {
	a := MustNew(5, 7, 9)
	b := MustNew(1, 2, 3)
	got := a.Add(b).Sub(b)
	// после вычитания пик восстанавливается точно,
	// носитель расширяется на ширину b с обеих сторон
	if !almostEqual(got.Peak, a.Peak) {
		t.Errorf("peak not restored: got %v want %v", got.Peak, a.Peak)
	}
	if !almostEqual(got.Left, a.Left-(b.Right-b.Left)) {
		t.Errorf("unexpected left: %v", got.Left)
	}
	if !almostEqual(got.Right, a.Right+(b.Right-b.Left)) {
		t.Errorf("unexpected right: %v", got.Right)
	}
}

func TestScaleNegativeSwapsBounds(t *testing.T) {
	a := MustNew(1, 2, 3)
	got := a.Scale(-2)
	if got.Left != -6 || got.Peak != -4 || got.Right != -2 {
		t.Errorf("unexpected scale result: %v", got)
	}
	if got.Left > got.Right {
		t.Error("invariant left <= right violated after negative scale")
	}
}

func TestDefuzzifyMethods(t *testing.T) {
	a := MustNew(10, 20, 40)
	cases := []struct {
		method DefuzzMethod
		want   float64
	}{
		{DefuzzCentroid, (10.0 + 20.0 + 40.0) / 3},
		{DefuzzBisector, (10.0 + 2*20.0 + 40.0) / 4},
		{DefuzzMOM, 20},
		{DefuzzSOM, 20},
		{DefuzzLOM, 20},
		{"unknown", (10.0 + 20.0 + 40.0) / 3},
	}
	for _, c := range cases {
		if got := a.Defuzzify(c.method); !almostEqual(got, c.want) {
			t.Errorf("%s: got %v want %v", c.method, got, c.want)
		}
	}
}

func TestFromCrisp(t *testing.T) {
	a := FromCrisp(100, DefaultSpread)
	if a.Left != 95 || a.Peak != 100 || a.Right != 105 {
		t.Errorf("unexpected fuzzification: %v", a)
	}
	// отрицательное значение: разброс симметричен относительно модуля
	b := FromCrisp(-100, DefaultSpread)
	if b.Left != -105 || b.Right != -95 {
		t.Errorf("unexpected fuzzification of negative: %v", b)
	}
}

func TestOverlapDegree(t *testing.T) {
	a := MustNew(0, 5, 10)
	b := MustNew(5, 10, 15)
	// пересечение [5,10], объединение [0,15]
	if got := a.OverlapDegree(b); !almostEqual(got, 5.0/15.0) {
		t.Errorf("got %v", got)
	}
	c := MustNew(20, 25, 30)
	if got := a.OverlapDegree(c); got != 0 {
		t.Errorf("disjoint supports must give 0, got %v", got)
	}
	if got := a.OverlapDegree(a); !almostEqual(got, 1) {
		t.Errorf("self overlap must be 1, got %v", got)
	}
}

func TestDominance(t *testing.T) {
	zero := Zero()
	a := MustNew(1, 2, 3)
	if got := zero.Dominance(Zero()); got != 0.5 {
		t.Errorf("both zero peaks: got %v want 0.5", got)
	}
	if got := zero.Dominance(a); got != 1.0 {
		t.Errorf("zero vs nonzero: got %v want 1.0", got)
	}
	if got := a.Dominance(zero); got != 0.0 {
		t.Errorf("nonzero vs zero: got %v want 0.0", got)
	}
	b := MustNew(2, 3, 4)
	want := 1.0 - a.OverlapDegree(b)
	if got := a.Dominance(b); !almostEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestPossibilityDegree(t *testing.T) {
	a := MustNew(0, 1, 2)
	b := MustNew(10, 11, 12)
	if got := a.PossibilityDegree(b); got != 1.0 {
		t.Errorf("fully left: got %v", got)
	}
	if got := b.PossibilityDegree(a); got != 0.0 {
		t.Errorf("fully right: got %v", got)
	}
	c := MustNew(0.5, 1.5, 2.5)
	got := a.PossibilityDegree(c)
	if got < 0 || got > 1 {
		t.Errorf("possibility out of range: %v", got)
	}
}

func TestInfinitySentinel(t *testing.T) {
	inf := Infinity()
	if !inf.IsInfinite() {
		t.Error("Infinity must report IsInfinite")
	}
	sum := inf.Add(MustNew(1, 2, 3))
	if !sum.IsInfinite() {
		t.Error("infinity must propagate through addition")
	}
}
