package navigation

import "testing"

func TestIntegratorFirstSampleIsNoop(t *testing.T) {
	in := NewIntegrator()
	out := in.Update(Point{TimestampUs: 1000, Value: 5})
	if out.Value != 0 {
		t.Fatalf("expected the first sample to seed the integrator without adding area, got %v", out.Value)
	}
}

func TestIntegratorConstantInputOverKnownInterval(t *testing.T) {
	in := NewIntegrator()
	in.Update(Point{TimestampUs: 0, Value: 2})
	out := in.Update(Point{TimestampUs: 1_000_000, Value: 2})

	if out.Value != 2 {
		t.Fatalf("constant input of 2 over 1 second should integrate to 2, got %v", out.Value)
	}
}

func TestIntegratorZeroInputLeavesOutputUnchanged(t *testing.T) {
	in := NewIntegrator()
	in.Update(Point{TimestampUs: 0, Value: 0})
	out := in.Update(Point{TimestampUs: 500_000, Value: 0})

	if out.Value != 0 {
		t.Fatalf("zero input should leave the accumulator at 0, got %v", out.Value)
	}
}

func TestIntegratorTrapezoidalRamp(t *testing.T) {
	in := NewIntegrator()
	in.Update(Point{TimestampUs: 0, Value: 0})
	out := in.Update(Point{TimestampUs: 1_000_000, Value: 10})

	want := 5.0
	if out.Value != want {
		t.Fatalf("trapezoidal area under a 0->10 ramp over 1s should be %v, got %v", want, out.Value)
	}
}
