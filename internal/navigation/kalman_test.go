package navigation

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestKalmanDimensionChecks(t *testing.T) {
	kf := New(2, 1)
	bad := mat.NewDense(1, 1, []float64{1})
	if err := kf.SetDynamicsModel(bad, bad); err == nil {
		t.Fatal("expected ErrBadDimension for a 1x1 A against a 2-state filter")
	}
}

func TestKalmanScalarConvergesToConstantMeasurement(t *testing.T) {
	kf := New(1, 1)
	a := mat.NewDense(1, 1, []float64{1})
	q := mat.NewDense(1, 1, []float64{0.001})
	h := mat.NewDense(1, 1, []float64{1})
	r := mat.NewDense(1, 1, []float64{0.1})
	if err := kf.SetModels(a, q, h, r); err != nil {
		t.Fatalf("SetModels: %v", err)
	}
	if err := kf.SetInitial(mat.NewVecDense(1, []float64{0}), mat.NewDense(1, 1, []float64{1})); err != nil {
		t.Fatalf("SetInitial: %v", err)
	}

	const target = 5.0
	for i := 0; i < 200; i++ {
		if err := kf.Filter(mat.NewVecDense(1, []float64{target})); err != nil {
			t.Fatalf("Filter: %v", err)
		}
	}

	got := kf.StateEstimate().AtVec(0)
	if diff := got - target; diff > 0.05 || diff < -0.05 {
		t.Fatalf("expected state estimate to converge near %v, got %v", target, got)
	}
}

func TestKalmanCovarianceShrinksWithRepeatedMeasurement(t *testing.T) {
	kf := New(1, 1)
	a := mat.NewDense(1, 1, []float64{1})
	q := mat.NewDense(1, 1, []float64{0.0})
	h := mat.NewDense(1, 1, []float64{1})
	r := mat.NewDense(1, 1, []float64{1})
	_ = kf.SetModels(a, q, h, r)
	_ = kf.SetInitial(mat.NewVecDense(1, []float64{0}), mat.NewDense(1, 1, []float64{10}))

	initial := kf.StateCovariance().At(0, 0)
	for i := 0; i < 10; i++ {
		_ = kf.Filter(mat.NewVecDense(1, []float64{0}))
	}
	final := kf.StateCovariance().At(0, 0)
	if final >= initial {
		t.Fatalf("expected covariance to shrink from %v, got %v", initial, final)
	}
}

func TestKalmanSingularInnovationCovariance(t *testing.T) {
	kf := New(1, 1)
	a := mat.NewDense(1, 1, []float64{1})
	q := mat.NewDense(1, 1, []float64{0})
	h := mat.NewDense(1, 1, []float64{0})
	r := mat.NewDense(1, 1, []float64{0})
	_ = kf.SetModels(a, q, h, r)
	_ = kf.SetInitial(mat.NewVecDense(1, []float64{0}), mat.NewDense(1, 1, []float64{0}))

	if err := kf.Filter(mat.NewVecDense(1, []float64{1})); err == nil {
		t.Fatal("expected ErrSingular for a zero innovation covariance")
	}
}
