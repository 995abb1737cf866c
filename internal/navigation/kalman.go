package navigation

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrBadDimension is returned when a Kalman setter is given a matrix whose
// shape does not match the filter's declared state/measurement/control
// dimensions (spec.md §4.3.1).
var ErrBadDimension = errors.New("kalman: bad dimension")

// ErrSingular is returned by a correction step when the innovation
// covariance H*P*H^T + R is singular and cannot be inverted.
var ErrSingular = errors.New("kalman: singular innovation covariance")

// Kalman is the general multivariate Kalman filter engine shared by every
// per-IMU filter in the navigation estimator (spec.md §4.3.1). State
// dimension n, measurement dimension m, optional control dimension k.
// Grounded on original_source/src/utils/math/kalman_multivariate.cpp,
// translated from Eigen MatrixXf/VectorXf to gonum.org/v1/gonum/mat (no
// example repo in the pack ships a matrix library; gonum is the standard
// ecosystem choice and is named here as an out-of-pack dependency per the
// grounding-ledger rule).
type Kalman struct {
	n, m, k int

	a, b, q *mat.Dense
	h, r    *mat.Dense

	x *mat.VecDense
	p *mat.Dense
	i *mat.Dense
}

// New constructs a Kalman filter with state dimension n and measurement
// dimension m, no control input.
func New(n, m int) *Kalman {
	return &Kalman{n: n, m: m, k: 0}
}

// NewWithControl constructs a Kalman filter with state dimension n,
// measurement dimension m, and control dimension k.
func NewWithControl(n, m, k int) *Kalman {
	return &Kalman{n: n, m: m, k: k}
}

func dims(mtx mat.Matrix) (int, int) {
	r, c := mtx.Dims()
	return r, c
}

// SetDynamicsModel sets the state transition matrix A and process noise
// covariance Q, both n x n. No control input.
func (kf *Kalman) SetDynamicsModel(a, q *mat.Dense) error {
	if r, c := dims(a); r != kf.n || c != kf.n {
		return fmt.Errorf("%w: A must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.n, r, c)
	}
	if r, c := dims(q); r != kf.n || c != kf.n {
		return fmt.Errorf("%w: Q must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.n, r, c)
	}
	kf.a, kf.q = a, q
	return nil
}

// SetDynamicsModelWithControl sets A (n x n), B (n x k), and Q (n x n).
func (kf *Kalman) SetDynamicsModelWithControl(a, b, q *mat.Dense) error {
	if r, c := dims(a); r != kf.n || c != kf.n {
		return fmt.Errorf("%w: A must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.n, r, c)
	}
	if r, c := dims(b); r != kf.n || c != kf.k {
		return fmt.Errorf("%w: B must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.k, r, c)
	}
	if r, c := dims(q); r != kf.n || c != kf.n {
		return fmt.Errorf("%w: Q must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.n, r, c)
	}
	kf.a, kf.b, kf.q = a, b, q
	return nil
}

// SetMeasurementModel sets the measurement matrix H (m x n) and
// measurement noise covariance R (m x m).
func (kf *Kalman) SetMeasurementModel(h, r *mat.Dense) error {
	if rr, cc := dims(r); rr != kf.m || cc != kf.m {
		return fmt.Errorf("%w: R must be %dx%d, got %dx%d", ErrBadDimension, kf.m, kf.m, rr, cc)
	}
	if rr, cc := dims(h); rr != kf.m || cc != kf.n {
		return fmt.Errorf("%w: H must be %dx%d, got %dx%d", ErrBadDimension, kf.m, kf.n, rr, cc)
	}
	kf.h, kf.r = h, r
	return nil
}

// SetModels sets the dynamics and measurement models together (no control).
func (kf *Kalman) SetModels(a, q, h, r *mat.Dense) error {
	if err := kf.SetDynamicsModel(a, q); err != nil {
		return err
	}
	return kf.SetMeasurementModel(h, r)
}

// SetModelsWithControl sets the dynamics (with control) and measurement
// models together.
func (kf *Kalman) SetModelsWithControl(a, b, q, h, r *mat.Dense) error {
	if err := kf.SetDynamicsModelWithControl(a, b, q); err != nil {
		return err
	}
	return kf.SetMeasurementModel(h, r)
}

// UpdateA replaces the state transition matrix without touching B, Q, H, R.
func (kf *Kalman) UpdateA(a *mat.Dense) error {
	if r, c := dims(a); r != kf.n || c != kf.n {
		return fmt.Errorf("%w: A must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.n, r, c)
	}
	kf.a = a
	return nil
}

// UpdateR replaces the measurement noise covariance without touching the rest.
func (kf *Kalman) UpdateR(r *mat.Dense) error {
	if rr, cc := dims(r); rr != kf.m || cc != kf.m {
		return fmt.Errorf("%w: R must be %dx%d, got %dx%d", ErrBadDimension, kf.m, kf.m, rr, cc)
	}
	kf.r = r
	return nil
}

// SetInitial sets the initial state belief x0 (length n) and covariance P0 (n x n).
func (kf *Kalman) SetInitial(x0 *mat.VecDense, p0 *mat.Dense) error {
	if x0.Len() != kf.n {
		return fmt.Errorf("%w: x0 must have length %d, got %d", ErrBadDimension, kf.n, x0.Len())
	}
	if r, c := dims(p0); r != kf.n || c != kf.n {
		return fmt.Errorf("%w: P0 must be %dx%d, got %dx%d", ErrBadDimension, kf.n, kf.n, r, c)
	}
	kf.x = mat.VecDenseCopyOf(x0)
	kf.p = mat.DenseCopyOf(p0)
	kf.i = mat.NewDense(kf.n, kf.n, nil)
	kf.i.Zero()
	for d := 0; d < kf.n; d++ {
		kf.i.Set(d, d, 1)
	}
	return nil
}

func (kf *Kalman) predict() {
	var xNew mat.VecDense
	xNew.MulVec(kf.a, kf.x)
	kf.x = &xNew

	var ap, apat mat.Dense
	ap.Mul(kf.a, kf.p)
	apat.Mul(&ap, kf.a.T())
	apat.Add(&apat, kf.q)
	kf.p = &apat
}

func (kf *Kalman) predictWithControl(u *mat.VecDense) {
	var ax, bu, xNew mat.VecDense
	ax.MulVec(kf.a, kf.x)
	bu.MulVec(kf.b, u)
	xNew.AddVec(&ax, &bu)
	kf.x = &xNew

	var ap, apat mat.Dense
	ap.Mul(kf.a, kf.p)
	apat.Mul(&ap, kf.a.T())
	apat.Add(&apat, kf.q)
	kf.p = &apat
}

func (kf *Kalman) correct(z *mat.VecDense) error {
	var hp, hpht, s mat.Dense
	hp.Mul(kf.h, kf.p)
	hpht.Mul(&hp, kf.h.T())
	s.Add(&hpht, kf.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}

	var pht, k mat.Dense
	pht.Mul(kf.p, kf.h.T())
	k.Mul(&pht, &sInv)

	var hx, innovation, kInnovation, xNew mat.VecDense
	hx.MulVec(kf.h, kf.x)
	innovation.SubVec(z, &hx)
	kInnovation.MulVec(&k, &innovation)
	xNew.AddVec(kf.x, &kInnovation)
	kf.x = &xNew

	var kh, ikh, pNew mat.Dense
	kh.Mul(&k, kf.h)
	ikh.Sub(kf.i, &kh)
	pNew.Mul(&ikh, kf.p)
	kf.p = &pNew
	return nil
}

// Filter runs predict+correct for a measurement-only step.
func (kf *Kalman) Filter(z *mat.VecDense) error {
	kf.predict()
	return kf.correct(z)
}

// FilterWithControl runs predict+correct with a control input.
func (kf *Kalman) FilterWithControl(u, z *mat.VecDense) error {
	kf.predictWithControl(u)
	return kf.correct(z)
}

// StateEstimate returns the current state belief x.
func (kf *Kalman) StateEstimate() *mat.VecDense { return kf.x }

// StateCovariance returns the current state covariance P.
func (kf *Kalman) StateCovariance() *mat.Dense { return kf.p }
