package tracker

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Column counts of the detection and tracked box row forms
const (
	// DetectionColumns is the width of a detection row,
	// [center_x, center_y, width, height, score, class_id]
	DetectionColumns = 6
	// TrackedColumns is the width of a tracked box row,
	// [center_x, center_y, width, height, score, class_id, vx, vy, track_id]
	TrackedColumns = 9
)

// DetectionsFromRows converts detection rows in the
// [center_x, center_y, width, height, score, class_id] form into Detection
// values.  Rows with the wrong column count are a contract violation
func DetectionsFromRows(rows [][]float32) ([]Detection, error) {

	var dets []Detection

	for i, row := range rows {

		if len(row) != DetectionColumns {
			return nil, errors.Errorf(
				"detection row %d has %d columns, want %d",
				i, len(row), DetectionColumns)
		}

		dets = append(dets, Detection{
			Rect:  NewRect(row[0], row[1], row[2], row[3]),
			Score: row[4],
			Class: int(row[5]),
		})
	}

	return dets, nil
}

// TrackedBoxesToRows converts tracked boxes into rows in the
// [center_x, center_y, width, height, score, class_id, vx, vy, track_id]
// form.  The track id is stored as a float but represents an integer
func TrackedBoxesToRows(boxes []TrackedBox) [][]float32 {

	var rows [][]float32

	for _, box := range boxes {
		rows = append(rows, []float32{
			box.Rect.X(),
			box.Rect.Y(),
			box.Rect.Width(),
			box.Rect.Height(),
			box.Score,
			float32(box.Class),
			box.VX,
			box.VY,
			float32(box.TrackID),
		})
	}

	return rows
}

// DetectionsFromDense converts an (m, 6) gonum matrix of detection rows into
// Detection values.  A nil matrix yields no detections
func DetectionsFromDense(m *mat.Dense) ([]Detection, error) {

	if m == nil {
		return nil, nil
	}

	rows, cols := m.Dims()

	if cols != DetectionColumns {
		return nil, errors.Errorf(
			"detection matrix has %d columns, want %d",
			cols, DetectionColumns)
	}

	var dets []Detection

	for i := 0; i < rows; i++ {
		dets = append(dets, Detection{
			Rect: NewRect(
				float32(m.At(i, 0)),
				float32(m.At(i, 1)),
				float32(m.At(i, 2)),
				float32(m.At(i, 3)),
			),
			Score: float32(m.At(i, 4)),
			Class: int(m.At(i, 5)),
		})
	}

	return dets, nil
}

// TrackedBoxesToDense converts tracked boxes into a (k, 9) gonum matrix.
// With no boxes it returns nil
func TrackedBoxesToDense(boxes []TrackedBox) *mat.Dense {

	if len(boxes) == 0 {
		return nil
	}

	m := mat.NewDense(len(boxes), TrackedColumns, nil)

	for i, box := range boxes {
		m.Set(i, 0, float64(box.Rect.X()))
		m.Set(i, 1, float64(box.Rect.Y()))
		m.Set(i, 2, float64(box.Rect.Width()))
		m.Set(i, 3, float64(box.Rect.Height()))
		m.Set(i, 4, float64(box.Score))
		m.Set(i, 5, float64(box.Class))
		m.Set(i, 6, float64(box.VX))
		m.Set(i, 7, float64(box.VY))
		m.Set(i, 8, float64(box.TrackID))
	}

	return m
}
