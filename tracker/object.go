package tracker

// Detection represents a single detector output box for one frame
type Detection struct {
	// Rect is the bounding box of the detected object in center xywh form
	Rect Rect
	// Score is the confidence/probability of the object detected
	Score float32
	// Class is the class label of the object detected
	Class int
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(rect Rect, score float32, class int) Detection {
	return Detection{
		Rect:  rect,
		Score: score,
		Class: class,
	}
}

// TrackedBox represents a confirmed track emitted for one frame
type TrackedBox struct {
	// Rect is the corrected bounding box of the tracked object in center
	// xywh form
	Rect Rect
	// Score is the confidence of the detection matched this frame
	Score float32
	// Class is the class label of the detection matched this frame
	Class int
	// VX is the estimated center velocity along x in pixels per frame
	VX float32
	// VY is the estimated center velocity along y in pixels per frame
	VY float32
	// TrackID is the unique ID of the track
	TrackID int64
}
