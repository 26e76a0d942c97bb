package tracker

import "sync"

// Point represents the x,y center coordinates of a tracked bounding box
type Point struct {
	X, Y int
}

// Track represents a track history
type Track struct {
	points []Point
	vx, vy float32
}

// Trail keeps a history of tracked box centers per track id, for host
// applications drawing trails or velocity arrows over frames
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points
	history map[int64]*Track
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size specifies the maximum
// number of most recent points to keep per track
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int64]*Track),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int64]*Track)
}

// Add records a tracked box's center point and latest velocity estimate
func (t *Trail) Add(box TrackedBox) {
	t.Lock()
	defer t.Unlock()

	// init map if no history exists yet for track id
	if _, exists := t.history[box.TrackID]; !exists {
		t.history[box.TrackID] = &Track{}
	}

	track := t.history[box.TrackID]

	track.points = append(track.points, Point{
		X: int(box.Rect.X()),
		Y: int(box.Rect.Y()),
	})

	track.vx = box.VX
	track.vy = box.VY

	// check if history is exceeded and drop oldest point
	if len(track.points) > t.size {
		track.points = track.points[1:]
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int64) []Point {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.history[id]; exists {
		return t.history[id].points
	}

	// no history yet
	return nil
}

// GetVelocity gets the most recent velocity estimate for a specific track id
func (t *Trail) GetVelocity(id int64) (float32, float32) {
	t.Lock()
	defer t.Unlock()

	if track, exists := t.history[id]; exists {
		return track.vx, track.vy
	}

	return 0, 0
}
