package tracker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDetectionsFromRows(t *testing.T) {

	rows := [][]float32{
		{100, 200, 40, 80, 0.9, 0},
		{50, 60, 10, 20, 0.5, 3},
	}

	dets, err := DetectionsFromRows(rows)
	require.NoError(t, err)

	expected := []Detection{
		{Rect: NewRect(100, 200, 40, 80), Score: 0.9, Class: 0},
		{Rect: NewRect(50, 60, 10, 20), Score: 0.5, Class: 3},
	}

	if diff := cmp.Diff(expected, dets,
		cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("unexpected detections (-want +got):\n%s", diff)
	}
}

func TestDetectionsFromRowsBadWidth(t *testing.T) {

	rows := [][]float32{
		{100, 200, 40, 80, 0.9},
	}

	_, err := DetectionsFromRows(rows)
	require.Error(t, err)
}

func TestTrackedBoxesToRows(t *testing.T) {

	boxes := []TrackedBox{
		{
			Rect:    NewRect(100, 200, 40, 80),
			Score:   0.9,
			Class:   2,
			VX:      1.5,
			VY:      -0.5,
			TrackID: 7,
		},
	}

	rows := TrackedBoxesToRows(boxes)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], TrackedColumns)

	expected := []float32{100, 200, 40, 80, 0.9, 2, 1.5, -0.5, 7}

	if diff := cmp.Diff(expected, rows[0],
		cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("unexpected row (-want +got):\n%s", diff)
	}

	assert.Nil(t, TrackedBoxesToRows(nil))
}

func TestTrackedBoxesToDense(t *testing.T) {

	boxes := []TrackedBox{
		{Rect: NewRect(10, 20, 5, 8), Score: 0.4, Class: 1, TrackID: 3},
		{Rect: NewRect(30, 40, 6, 9), Score: 0.6, Class: 0, VX: 2, TrackID: 4},
	}

	dense := TrackedBoxesToDense(boxes)
	require.NotNil(t, dense)

	rows, cols := dense.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, TrackedColumns, cols)

	assert.InDelta(t, 30, dense.At(1, 0), 1e-6)
	assert.InDelta(t, 3, dense.At(0, 8), 1e-6)

	assert.Nil(t, TrackedBoxesToDense(nil))
}

func TestDetectionsFromDense(t *testing.T) {

	m := mat.NewDense(1, DetectionColumns, []float64{
		100, 200, 40, 80, 0.9, 2,
	})

	dets, err := DetectionsFromDense(m)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	assert.InDelta(t, 100, dets[0].Rect.X(), 1e-6)
	assert.Equal(t, 2, dets[0].Class)

	bad := mat.NewDense(1, 4, []float64{1, 2, 3, 4})

	_, err = DetectionsFromDense(bad)
	require.Error(t, err)

	dets, err = DetectionsFromDense(nil)
	require.NoError(t, err)
	assert.Nil(t, dets)
}
