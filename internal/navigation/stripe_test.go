package navigation

import "testing"

func TestStripeHandlerIgnoresUnchangedCounts(t *testing.T) {
	h := NewStripeHandler(StripeDistanceMeters)
	h.SetInit(0, [2]uint32{0, 0})

	displacement, velocity, velUncertainty := 0.0, 0.0, 1.0
	h.QueryStripes([2]uint32{0, 0}, [2]int64{0, 0}, &displacement, &velocity, &velUncertainty, 1.0)

	if h.StripeCount() != 0 {
		t.Fatalf("expected no stripe detected, got count %d", h.StripeCount())
	}
}

func TestStripeHandlerAcceptsGenuineDetection(t *testing.T) {
	h := NewStripeHandler(StripeDistanceMeters)
	h.SetInit(0, [2]uint32{0, 0})

	displacement := StripeDistanceMeters
	velocity := 10.0
	velUncertainty := 1.0
	h.QueryStripes([2]uint32{1, 0}, [2]int64{200000, 0}, &displacement, &velocity, &velUncertainty, 1.0)

	if h.StripeCount() != 1 {
		t.Fatalf("expected stripe count to advance to 1, got %d", h.StripeCount())
	}
}

func TestStripeHandlerDebouncesWithinWindow(t *testing.T) {
	h := NewStripeHandler(StripeDistanceMeters)
	h.SetInit(0, [2]uint32{0, 0})

	displacement := StripeDistanceMeters
	velocity := 10.0
	velUncertainty := 1.0
	h.QueryStripes([2]uint32{1, 0}, [2]int64{50000, 0}, &displacement, &velocity, &velUncertainty, 1.0)

	if h.StripeCount() != 0 {
		t.Fatalf("expected a detection inside the debounce window to be ignored, got count %d", h.StripeCount())
	}
}

func TestStripeHandlerCheckFailureOnLargeDisagreement(t *testing.T) {
	h := NewStripeHandler(StripeDistanceMeters)
	if h.CheckFailure(10 * StripeDistanceMeters) == false {
		t.Fatalf("expected failure when IMU displacement is far ahead of the stripe count")
	}
	if h.CheckFailure(0) {
		t.Fatalf("expected no failure when displacement agrees with zero stripes seen")
	}
}
