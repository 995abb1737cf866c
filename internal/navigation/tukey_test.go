package navigation

import "testing"

func TestTukeyFencesReplacesSingleOutlier(t *testing.T) {
	values := []float64{1.0, 1.1, 0.9, 50.0}
	reliable := []bool{true, true, true, true}

	replaced := tukeyFences(values, reliable, 1.5)

	if !replaced[3] {
		t.Fatalf("expected index 3 to be flagged as an outlier, replaced=%v", replaced)
	}
	if replaced[0] || replaced[1] || replaced[2] {
		t.Fatalf("expected only the wild reading to be replaced, replaced=%v", replaced)
	}
	if values[3] == 50.0 {
		t.Fatalf("outlier value was not replaced")
	}
}

func TestTukeyFencesIgnoresUnreliableSlots(t *testing.T) {
	values := []float64{1.0, 1.1, 0.9, 500.0}
	reliable := []bool{true, true, true, false}

	replaced := tukeyFences(values, reliable, 1.5)

	if replaced[3] {
		t.Fatalf("unreliable slot must never be flagged")
	}
	if values[3] != 500.0 {
		t.Fatalf("unreliable slot must be left untouched, got %v", values[3])
	}
}

func TestTukeyFencesTwoOrFewerAveragesReliableValues(t *testing.T) {
	values := []float64{2.0, 6.0, 999.0, 999.0}
	reliable := []bool{true, true, false, false}

	replaced := tukeyFences(values, reliable, 1.5)

	for i, r := range replaced {
		if r {
			t.Fatalf("expected no outlier flags with <=2 reliable values, index %d flagged", i)
		}
	}
	if values[0] != 4.0 || values[1] != 4.0 {
		t.Fatalf("expected both reliable slots averaged to 4.0, got %v %v", values[0], values[1])
	}
}

func TestTukeyFencesNoReliableValuesIsNoop(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	reliable := []bool{false, false, false, false}

	replaced := tukeyFences(values, reliable, 1.5)

	for i, r := range replaced {
		if r {
			t.Fatalf("expected no flags with zero reliable values, index %d flagged", i)
		}
	}
	if values[0] != 1 || values[1] != 2 || values[2] != 3 || values[3] != 4 {
		t.Fatalf("expected values left untouched, got %v", values)
	}
}

func TestMedian3(t *testing.T) {
	cases := [][4]float64{
		{1, 2, 3, 2},
		{3, 2, 1, 2},
		{2, 1, 3, 2},
		{5, 5, 5, 5},
	}
	for _, c := range cases {
		if got := median3(c[0], c[1], c[2]); got != c[3] {
			t.Fatalf("median3(%v,%v,%v) = %v, want %v", c[0], c[1], c[2], got, c[3])
		}
	}
}
