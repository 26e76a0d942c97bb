package tracker

import (
	"math"
	"testing"
)

// almostEqual checks if two float32 values are approximately equal
func almostEqual(a, b, tolerance float32) bool {
	return float32(math.Abs(float64(a)-float64(b))) <= tolerance
}

func TestNewKalmanBoxFilter(t *testing.T) {

	ids := &IDCounter{}

	kf := NewKalmanBoxFilter(NewRect(100, 200, 40, 80), ids)

	state := kf.State()
	expected := StateVec{100, 200, 3200, 0.5, 0, 0, 0}

	for i := range expected {
		if !almostEqual(state[i], expected[i], 1e-4) {
			t.Errorf("expected state %v, got %v", expected, state)
			break
		}
	}

	if kf.TimeSinceUpdate() != 0 {
		t.Errorf("expected time since update 0, got %d", kf.TimeSinceUpdate())
	}

	if kf.HitStreak() != 1 {
		t.Errorf("expected hit streak 1, got %d", kf.HitStreak())
	}

	if kf.TrackID() != 1 {
		t.Errorf("expected track id 1, got %d", kf.TrackID())
	}

	kf2 := NewKalmanBoxFilter(NewRect(10, 10, 5, 5), ids)

	if kf2.TrackID() != 2 {
		t.Errorf("expected track id 2, got %d", kf2.TrackID())
	}
}

// TestPredictStationary predicts from a fresh filter, with zero velocity the
// box must not move
func TestPredictStationary(t *testing.T) {

	ids := &IDCounter{}
	kf := NewKalmanBoxFilter(NewRect(100, 200, 40, 80), ids)

	pred := kf.Predict()

	if !almostEqual(pred.X(), 100, 1e-3) ||
		!almostEqual(pred.Y(), 200, 1e-3) ||
		!almostEqual(pred.Width(), 40, 1e-3) ||
		!almostEqual(pred.Height(), 80, 1e-3) {
		t.Errorf("expected stationary prediction, got %v", pred.Xywh)
	}

	if kf.TimeSinceUpdate() != 1 {
		t.Errorf("expected time since update 1, got %d", kf.TimeSinceUpdate())
	}

	// first predict leaves the streak from construction intact
	if kf.HitStreak() != 1 {
		t.Errorf("expected hit streak 1, got %d", kf.HitStreak())
	}

	// a second predict without an intervening update breaks the streak
	kf.Predict()

	if kf.HitStreak() != 0 {
		t.Errorf("expected hit streak 0, got %d", kf.HitStreak())
	}

	if kf.TimeSinceUpdate() != 2 {
		t.Errorf("expected time since update 2, got %d", kf.TimeSinceUpdate())
	}
}

// TestUpdateConvergence updates with a displaced measurement, the posterior
// center must land strictly between the prior and the measurement
func TestUpdateConvergence(t *testing.T) {

	ids := &IDCounter{}
	kf := NewKalmanBoxFilter(NewRect(100, 100, 40, 80), ids)

	kf.Predict()

	corrected, err := kf.Update(NewRect(110, 108, 40, 80))

	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	if !(corrected.X() > 100 && corrected.X() < 110) {
		t.Errorf("expected corrected x in (100, 110), got %v", corrected.X())
	}

	if !(corrected.Y() > 100 && corrected.Y() < 108) {
		t.Errorf("expected corrected y in (100, 108), got %v", corrected.Y())
	}

	if kf.TimeSinceUpdate() != 0 {
		t.Errorf("expected time since update 0, got %d", kf.TimeSinceUpdate())
	}

	if kf.HitStreak() != 2 {
		t.Errorf("expected hit streak 2, got %d", kf.HitStreak())
	}

	// velocity must point towards the measurement
	state := kf.State()

	if state[4] <= 0 || state[5] <= 0 {
		t.Errorf("expected positive velocity estimate, got vx=%v vy=%v",
			state[4], state[5])
	}
}

// TestPredictAreaGuard shrinks the box hard enough to drive the area
// velocity negative, the next predict must clamp it instead of collapsing
// the box
func TestPredictAreaGuard(t *testing.T) {

	ids := &IDCounter{}
	kf := NewKalmanBoxFilter(NewRect(100, 100, 100, 100), ids)

	kf.Predict()

	if _, err := kf.Update(NewRect(100, 100, 10, 10)); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	pred := kf.Predict()

	if !rectFinite(pred) {
		t.Fatalf("expected finite prediction, got %v", pred.Xywh)
	}

	if pred.Width() <= 0 || pred.Height() <= 0 {
		t.Errorf("expected positive predicted size, got %vx%v",
			pred.Width(), pred.Height())
	}

	// the area velocity was clamped to zero before the step
	if state := kf.State(); state[6] != 0 {
		t.Errorf("expected zero area velocity, got %v", state[6])
	}
}

func TestStateIsCopy(t *testing.T) {

	ids := &IDCounter{}
	kf := NewKalmanBoxFilter(NewRect(50, 50, 20, 20), ids)

	state := kf.State()
	state[0] = -1

	if kf.State()[0] != 50 {
		t.Errorf("mutating the returned state changed the filter")
	}
}
