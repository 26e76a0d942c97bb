package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrail(t *testing.T) {

	trail := NewTrail(3)

	for i := 0; i < 5; i++ {
		trail.Add(TrackedBox{
			Rect:    NewRect(float32(10*i), 50, 20, 20),
			VX:      float32(i),
			VY:      1,
			TrackID: 1,
		})
	}

	points := trail.GetPoints(1)
	assert.Len(t, points, 3, "history is capped at size")
	assert.Equal(t, Point{X: 20, Y: 50}, points[0], "oldest points dropped")
	assert.Equal(t, Point{X: 40, Y: 50}, points[2])

	vx, vy := trail.GetVelocity(1)
	assert.EqualValues(t, 4, vx)
	assert.EqualValues(t, 1, vy)

	assert.Nil(t, trail.GetPoints(2), "unknown id has no history")

	trail.Reset()
	assert.Nil(t, trail.GetPoints(1))
}
