package navigation

// Point is a timestamped scalar sample, microseconds since process start.
type Point struct {
	TimestampUs int64
	Value       float64
}

// Integrator computes a trapezoidal running integral into a shared output
// accumulator. Grounded on original_source/src/utils/math/integrator.hpp:
// the C++ original passes a raw pointer to the output cell so it is also
// visible as one of navigation's kinematic fields; here the "shared
// accumulator" is an explicit struct field the integrator mutates via a
// pointer receiver and the caller reads directly (spec.md §9's "well-defined
// borrow rather than a raw pointer").
type Integrator struct {
	previous     Point
	initialised  bool
	Output       Point
}

// NewIntegrator returns an Integrator whose output accumulator starts at zero.
func NewIntegrator() *Integrator {
	return &Integrator{}
}

// Update folds one new sample into the running integral and returns the
// updated output. For a constant input a over [t0, t1] the output gains
// exactly a*(t1-t0); for zero input the output is unchanged (P5).
func (in *Integrator) Update(p Point) Point {
	if !in.initialised {
		in.previous = p
		in.initialised = true
	}
	deltaSeconds := float64(p.TimestampUs-in.previous.TimestampUs) / 1e6
	area := (p.Value + in.previous.Value) / 2 * deltaSeconds

	in.Output.Value += area
	in.Output.TimestampUs = p.TimestampUs
	in.previous = p
	return in.Output
}
