package tracker

import "sync/atomic"

// IDCounter hands out track ids.  Ids are monotonically increasing and are
// never reused, an id drawn from a counter is unique across all trackers
// sharing that counter even when trackers are constructed from multiple
// goroutines
type IDCounter struct {
	n atomic.Int64
}

// Next returns the next track id
func (c *IDCounter) Next() int64 {
	return c.n.Add(1)
}

// globalTrackIDs is the process wide default id source used by trackers
// constructed with NewSort
var globalTrackIDs IDCounter
