package navigation

import "math"

// StripeDistanceMeters is the known fixed spacing between optical stripes.
const StripeDistanceMeters = 30.48

// debounceWindowUs is the minimum gap since the last accepted stripe before
// a new counter change is treated as a genuine detection (spec.md §4.3:
// "order 10^5 us").
const debounceWindowUs = 100000

// StripeHandler fuses the two optical stripe counters into absolute-position
// corrections for displacement and velocity. Grounded on
// original_source/src/navigation/stripe_handler.cpp — spec.md's Open
// Questions name stripe_handler as canonical over the older stripe_count
// variant, which is not reproduced here.
type StripeHandler struct {
	stripeDistance float64

	count           uint32
	lastTimestampUs int64
	initTimeUs      int64

	missedStripes uint8

	prevCounts [2]uint32
}

// NewStripeHandler constructs a handler for the given stripe spacing.
func NewStripeHandler(stripeDistance float64) *StripeHandler {
	return &StripeHandler{stripeDistance: stripeDistance}
}

// SetInit records the initial timestamp, taken when navigation enters
// Accelerating and starts trusting stripe corrections.
func (h *StripeHandler) SetInit(initTimeUs int64, counts [2]uint32) {
	h.initTimeUs = initTimeUs
	h.prevCounts = counts
}

// StripeCount returns the internal stripe count accumulated so far.
func (h *StripeHandler) StripeCount() uint32 { return h.count }

// FailureCount returns the number of significant stripe/IMU disagreements observed.
func (h *StripeHandler) FailureCount() uint8 { return h.missedStripes }

// CheckFailure reports whether navigation should enter CriticalFailure due
// to stripe disagreement: more than one missed-stripe event, or IMU-implied
// displacement more than 4 stripe distances ahead of the stripe count.
func (h *StripeHandler) CheckFailure(displacement float64) bool {
	if h.missedStripes > 1 {
		return true
	}
	if displacement-float64(h.count)*h.stripeDistance > 4*h.stripeDistance {
		return true
	}
	return false
}

// allowedUncertainty is the max of the IMU-derived displacement uncertainty
// and a floor of stripeDistance/5 (spec.md §4.3 step 4).
func (h *StripeHandler) allowedUncertainty(displacementUncertainty float64) float64 {
	minimum := h.stripeDistance / 5
	if displacementUncertainty > minimum {
		return displacementUncertainty
	}
	return minimum
}

// QueryStripes inspects the two raw stripe-counter readings (counts and
// timestamps) for a new, debounced detection and, if one occurred, corrects
// displacement and velocity in place and adjusts velocityUncertainty
// in place. Grounded on StripeHandler::queryKeyence.
func (h *StripeHandler) QueryStripes(
	counts [2]uint32,
	timestampsUs [2]int64,
	displacement *float64,
	velocity *float64,
	velocityUncertainty *float64,
	displacementUncertainty float64,
) {
	for i := 0; i < 2; i++ {
		if counts[i] == h.prevCounts[i] || timestampsUs[i]-h.lastTimestampUs < debounceWindowUs {
			continue
		}

		h.count++
		h.lastTimestampUs = timestampsUs[i]

		allowed := h.allowedUncertainty(displacementUncertainty)
		offset := *displacement - float64(h.count)*h.stripeDistance

		// Allow up to one missed stripe: if the offset sits roughly one
		// stripe ahead and total displacement justifies it, assume a
		// stripe was missed and bump the count.
		if offset > h.stripeDistance-allowed && offset < h.stripeDistance+allowed &&
			*displacement > float64(h.count)*h.stripeDistance+0.5*h.stripeDistance {
			h.count++
			offset -= h.stripeDistance
		}

		if math.Abs(offset) > 2*allowed {
			h.missedStripes++
			h.missedStripes += uint8(math.Floor(math.Abs(offset) / h.stripeDistance))
		}

		elapsed := float64(h.lastTimestampUs - h.initTimeUs)
		if elapsed != 0 {
			*velocityUncertainty -= math.Abs(offset * 1e6 / elapsed)
		}
		*velocityUncertainty = math.Abs(*velocityUncertainty)

		if elapsed != 0 {
			*velocity -= offset * 1e6 / elapsed
		}
		*displacement -= offset

		break
	}

	h.prevCounts = counts
}
