package tracker

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// stateDim is the filter state dimension [x, y, s, r, vx, vy, vs]
	stateDim = 7
	// measureDim is the measurement dimension [x, y, s, r]
	measureDim = 4
)

// StateVec represents the 1x7 filter state [x, y, s, r, vx, vy, vs] using a
// slice of float32, where s is the box area and r the aspect ratio
type StateVec []float32

// MeasureVec represents a 1x4 measurement [x, y, s, r] using a slice of
// float32
type MeasureVec []float32

// motionMat is the constant velocity transition matrix (F), identity plus
// unit off-diagonals coupling x/vx, y/vy, and s/vs
var motionMat = func() *mat.Dense {

	m := mat.NewDense(stateDim, stateDim, nil)

	for i := 0; i < stateDim; i++ {
		m.Set(i, i, 1.0)
	}

	m.Set(0, 4, 1.0)
	m.Set(1, 5, 1.0)
	m.Set(2, 6, 1.0)

	return m
}()

// updateMat is the measurement matrix (H) projecting the first four state
// components
var updateMat = func() *mat.Dense {

	m := mat.NewDense(measureDim, stateDim, nil)

	for i := 0; i < measureDim; i++ {
		m.Set(i, i, 1.0)
	}

	return m
}()

// processNoiseCov is the process noise covariance (Q)
var processNoiseCov = diagDense(stateDim,
	[]float64{1, 1, 1, 1, 1e-2, 1e-2, 1e-4})

// measureNoiseCov is the measurement noise covariance (R)
var measureNoiseCov = func() *mat.SymDense {

	std := []float64{1, 1, 10, 10}
	m := mat.NewSymDense(measureDim, nil)

	for i, v := range std {
		m.SetSym(i, i, v)
	}

	return m
}()

// initialStateCov holds the diagonal of the posterior error covariance a new
// filter starts with (P0)
var initialStateCov = []float64{10, 10, 10, 10, 1e4, 1e4, 1e4}

// diagDense creates an n x n matrix with the given diagonal entries
func diagDense(n int, diag []float64) *mat.Dense {

	m := mat.NewDense(n, n, nil)

	for i, v := range diag {
		m.Set(i, i, v)
	}

	return m
}

// KalmanBoxFilter estimates the motion of a single bounding box with a
// constant velocity model
type KalmanBoxFilter struct {
	// Unique ID for the track
	id int64
	// Mean state vector
	mean StateVec
	// Covariance matrix
	covariance *mat.Dense
	// Number of predict calls since the last successful update
	timeSinceUpdate int
	// Number of consecutive frames the track has been matched, the
	// spawning detection counts as the first hit
	hitStreak int
}

// NewKalmanBoxFilter creates a filter initialised from a detection box and
// assigns it a fresh track id drawn from ids
func NewKalmanBoxFilter(rect Rect, ids *IDCounter) *KalmanBoxFilter {

	z := convertRectToZ(rect)

	mean := make(StateVec, stateDim)
	copy(mean[:measureDim], z)

	return &KalmanBoxFilter{
		id:         ids.Next(),
		mean:       mean,
		covariance: diagDense(stateDim, initialStateCov),
		hitStreak:  1,
	}
}

// TrackID returns the unique ID for the track
func (kf *KalmanBoxFilter) TrackID() int64 {
	return kf.id
}

// TimeSinceUpdate returns the number of predict calls since the last
// successful update
func (kf *KalmanBoxFilter) TimeSinceUpdate() int {
	return kf.timeSinceUpdate
}

// HitStreak returns the number of consecutive frames the track has been
// matched to a detection
func (kf *KalmanBoxFilter) HitStreak() int {
	return kf.hitStreak
}

// State returns a copy of the current state vector
func (kf *KalmanBoxFilter) State() StateVec {
	state := make(StateVec, stateDim)
	copy(state, kf.mean)
	return state
}

// Predict advances the state one frame and returns the predicted bounding
// box.  The returned box may contain non-finite values when the state has
// collapsed, callers are expected to retire such filters
func (kf *KalmanBoxFilter) Predict() Rect {

	// the next-step area (s + vs) must stay positive
	if kf.mean[2]+kf.mean[6] <= 0 {
		kf.mean[6] = 0
	}

	// x' = F*x
	meanVec := mat.NewVecDense(stateDim, nil)

	for i := 0; i < stateDim; i++ {
		meanVec.SetVec(i, float64(kf.mean[i]))
	}

	pred := mat.NewVecDense(stateDim, nil)
	pred.MulVec(motionMat, meanVec)

	for i := 0; i < stateDim; i++ {
		kf.mean[i] = float32(pred.AtVec(i))
	}

	// P' = F*P*Ft + Q
	fp := mat.NewDense(stateDim, stateDim, nil)
	fp.Mul(motionMat, kf.covariance)

	fpft := mat.NewDense(stateDim, stateDim, nil)
	fpft.Mul(fp, motionMat.T())
	fpft.Add(fpft, processNoiseCov)

	kf.covariance = fpft

	if kf.timeSinceUpdate > 0 {
		kf.hitStreak = 0
	}
	kf.timeSinceUpdate++

	return convertStateToRect(kf.mean)
}

// Update corrects the state with an observed bounding box and returns the
// corrected box
func (kf *KalmanBoxFilter) Update(rect Rect) (Rect, error) {

	z := convertRectToZ(rect)

	// project the state mean and covariance to measurement space
	projectedMean, projectedCov := kf.project()

	// perform Cholesky factorization of the projected covariance matrix
	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return Rect{}, errors.New("failed to factorize projected covariance")
	}

	// compute the matrix B for Kalman gain calculation
	B := mat.NewDense(stateDim, measureDim, nil)
	B.Mul(kf.covariance, updateMat.T())

	// compute the transposed Kalman gain using the Cholesky factorization
	var kalmanGain mat.Dense
	err := chol.SolveTo(&kalmanGain, B.T())

	if err != nil {
		return Rect{}, errors.Wrap(err, "failed to compute kalman gain")
	}

	// compute the innovation (measurement residual)
	innovation := make([]float64, measureDim)

	for i := 0; i < measureDim; i++ {
		innovation[i] = float64(z[i] - projectedMean[i])
	}

	// update the state mean with the innovation
	innovationVec := mat.NewVecDense(measureDim, innovation)
	tmp := mat.NewVecDense(stateDim, nil)
	tmp.MulVec(kalmanGain.T(), innovationVec)

	for i := 0; i < stateDim; i++ {
		kf.mean[i] += float32(tmp.AtVec(i))
	}

	// update the state covariance, P = P' - K*S*Kt
	temp := mat.NewDense(stateDim, measureDim, nil)
	temp.Mul(kalmanGain.T(), projectedCov)

	temp2 := mat.NewDense(stateDim, stateDim, nil)
	temp2.Mul(temp, &kalmanGain)

	newCov := mat.NewDense(stateDim, stateDim, nil)
	newCov.Sub(kf.covariance, temp2)

	kf.covariance = newCov

	kf.timeSinceUpdate = 0
	kf.hitStreak++

	return convertStateToRect(kf.mean), nil
}

// project projects the state mean and covariance to measurement space,
// S = H*P*Ht + R
func (kf *KalmanBoxFilter) project() (MeasureVec, *mat.SymDense) {

	// project the state mean to measurement space
	meanVec := mat.NewVecDense(stateDim, nil)

	for i := 0; i < stateDim; i++ {
		meanVec.SetVec(i, float64(kf.mean[i]))
	}

	projectedMeanVec := mat.NewVecDense(measureDim, nil)
	projectedMeanVec.MulVec(updateMat, meanVec)

	// project the state covariance to measurement space
	temp := mat.NewDense(measureDim, stateDim, nil)
	temp.Mul(updateMat, kf.covariance)

	temp2 := mat.NewDense(measureDim, measureDim, nil)
	temp2.Mul(temp, updateMat.T())

	projectedCov := mat.NewSymDense(measureDim, nil)

	for i := 0; i < measureDim; i++ {
		for j := i; j < measureDim; j++ {
			projectedCov.SetSym(i, j, temp2.At(i, j))
		}
	}

	// add the measurement noise covariance
	projectedCov.AddSym(projectedCov, measureNoiseCov)

	// convert the projected mean to MeasureVec type
	projectedMean := make(MeasureVec, measureDim)

	for i := 0; i < measureDim; i++ {
		projectedMean[i] = float32(projectedMeanVec.AtVec(i))
	}

	return projectedMean, projectedCov
}

// convertRectToZ converts a center xywh box into the measurement form
// [x, y, s, r] with s the box area and r the aspect ratio
func convertRectToZ(rect Rect) MeasureVec {
	return MeasureVec{
		rect.X(),
		rect.Y(),
		rect.Width() * rect.Height(),
		rect.Width() / rect.Height(),
	}
}

// convertStateToRect converts the leading state components [x, y, s, r] back
// into a center xywh box.  A collapsed area yields non-finite box values
func convertStateToRect(mean StateVec) Rect {

	w := float32(math.Sqrt(float64(mean[2]) * float64(mean[3])))
	h := mean[2] / w

	return NewRect(mean[0], mean[1], w, h)
}
