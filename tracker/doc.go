/*
Package tracker implements SORT (Simple Online and Realtime Tracking),
associating per-frame object detections to a set of constant velocity
Kalman filters so objects keep a stable identity across frames.

The tracker is detector agnostic.  Feed Sort.Update one slice of Detection
values per frame, even when empty, and it returns the confirmed tracks
matched this frame with their ids and instantaneous velocity estimates.
Detections are matched to filter predictions by IoU using a Kuhn-Munkres
minimum cost assignment, which is also exposed directly through Munkres for
callers with their own cost matrices.

A single Sort instance must not be shared between goroutines.  Run one
instance per stream, track ids stay unique across all instances drawing
from the same id counter.
*/
package tracker
