package tracker

import (
	"math"

	"github.com/pkg/errors"
)

// Default construction parameters for NewSort
const (
	// DefaultMaxAge is the number of frames without an update after which
	// a track is destroyed
	DefaultMaxAge = 1
	// DefaultMinHits is the minimum consecutive hit streak for a track to
	// be emitted
	DefaultMinHits = 3
	// DefaultIoUThreshold is the minimum IoU to accept a match proposed by
	// the assignment solver
	DefaultIoUThreshold = 0.3
)

// Sort tracks objects across frames by associating detections to the
// predictions of per-object Kalman filters.  A Sort instance must not be
// called concurrently from multiple goroutines
type Sort struct {
	// Maximum frames without update before a track is destroyed
	maxAge int
	// Minimum consecutive hit streak before a track is emitted
	minHits int
	// Minimum IoU to accept a match
	iouThreshold float32
	// Filters for currently tracked objects
	filters []*KalmanBoxFilter
	// Source of track ids
	ids *IDCounter
	// Assignment solver
	km *Munkres
}

// NewSort initializes and returns a new Sort tracker.  Track ids are drawn
// from the process wide counter
func NewSort(maxAge, minHits int, iouThreshold float32) *Sort {
	return &Sort{
		maxAge:       maxAge,
		minHits:      minHits,
		iouThreshold: iouThreshold,
		ids:          &globalTrackIDs,
		km:           NewMunkres(),
	}
}

// WithIDCounter replaces the tracker's id source, existing tracks keep their
// ids.  Intended for callers needing id isolation, such as tests
func (s *Sort) WithIDCounter(ids *IDCounter) *Sort {
	s.ids = ids
	return s
}

// Reset drops all tracks.  The id counter is left untouched so ids stay
// unique across resets
func (s *Sort) Reset() {
	s.filters = nil
}

// ActiveTrackCount returns the number of tracks currently held, confirmed
// or not
func (s *Sort) ActiveTrackCount() int {
	return len(s.filters)
}

// Update advances the tracker by one frame and must be called once per
// frame, even with no detections.  It returns one TrackedBox per confirmed
// track matched this frame, the number of boxes returned may differ from the
// number of detections given
func (s *Sort) Update(dets []Detection) ([]TrackedBox, error) {

	for i, det := range dets {
		w, h := det.Rect.Width(), det.Rect.Height()

		if !(w > 0) || !(h > 0) || isNonFinite(w) || isNonFinite(h) {
			return nil, errors.Errorf(
				"detection %d has invalid size %vx%v", i, w, h)
		}
	}

	// predict stage: advance every filter and rebuild the collection so
	// prediction indices stay aligned with surviving filters
	preds := make([]Rect, 0, len(s.filters))
	alive := make([]*KalmanBoxFilter, 0, len(s.filters))

	for _, kf := range s.filters {
		pred := kf.Predict()

		if !rectFinite(pred) {
			// degenerate filter, retire silently
			continue
		}

		alive = append(alive, kf)
		preds = append(preds, pred)
	}

	s.filters = alive

	// associate stage
	matches, lostDets, _ := s.associate(dets, preds)

	// update stage
	var out []TrackedBox
	degenerate := make(map[int]bool)

	for _, pair := range matches {
		detInd, predInd := pair[0], pair[1]
		kf := s.filters[predInd]

		corrected, err := kf.Update(dets[detInd].Rect)

		if err != nil {
			// degenerate filter, retire silently
			degenerate[predInd] = true
			continue
		}

		if kf.HitStreak() >= s.minHits {
			state := kf.State()

			out = append(out, TrackedBox{
				Rect:    corrected,
				Score:   dets[detInd].Score,
				Class:   dets[detInd].Class,
				VX:      state[4],
				VY:      state[5],
				TrackID: kf.TrackID(),
			})
		}
	}

	// age stage: remove dead trackers
	kept := make([]*KalmanBoxFilter, 0, len(s.filters))

	for i, kf := range s.filters {
		if degenerate[i] || kf.TimeSinceUpdate() > s.maxAge {
			continue
		}

		kept = append(kept, kf)
	}

	s.filters = kept

	// birth stage: enroll a new filter for every unmatched detection
	for _, detInd := range lostDets {
		s.filters = append(s.filters,
			NewKalmanBoxFilter(dets[detInd].Rect, s.ids))
	}

	return out, nil
}

// associate matches detections to predictions.  It returns the surviving
// (detection, prediction) index pairs along with the indices of unmatched
// detections and unmatched predictions
func (s *Sort) associate(dets []Detection,
	preds []Rect) (matches [][2]int, lostDets, lostPreds []int) {

	if len(dets) == 0 || len(preds) == 0 {
		for i := range dets {
			lostDets = append(lostDets, i)
		}
		for j := range preds {
			lostPreds = append(lostPreds, j)
		}
		return
	}

	iou := iouMatrix(dets, preds)

	cost := make([][]float32, len(dets))

	for i := range cost {
		cost[i] = make([]float32, len(preds))

		for j := range cost[i] {
			cost[i][j] = 1 - iou[i][j]
		}
	}

	pairs, err := s.km.Compute(cost)

	matchedDet := make([]bool, len(dets))
	matchedPred := make([]bool, len(preds))

	if err == nil {
		for _, pair := range pairs {
			// reject solver pairings below the IoU threshold
			if iou[pair[0]][pair[1]] < s.iouThreshold {
				continue
			}

			matches = append(matches, pair)
			matchedDet[pair[0]] = true
			matchedPred[pair[1]] = true
		}
	}

	for i := range dets {
		if !matchedDet[i] {
			lostDets = append(lostDets, i)
		}
	}

	for j := range preds {
		if !matchedPred[j] {
			lostPreds = append(lostPreds, j)
		}
	}

	return
}

// iouMatrix computes the pairwise IoU between detections and predictions
func iouMatrix(dets []Detection, preds []Rect) [][]float32 {

	iou := make([][]float32, len(dets))

	for i := range dets {
		iou[i] = make([]float32, len(preds))

		for j := range preds {
			iou[i][j] = dets[i].Rect.CalcIoU(preds[j])
		}
	}

	return iou
}

// rectFinite reports whether every component of the box is finite
func rectFinite(r Rect) bool {

	for _, v := range r.Xywh {
		if isNonFinite(v) {
			return false
		}
	}

	return true
}

// isNonFinite reports whether v is NaN or infinite
func isNonFinite(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}
