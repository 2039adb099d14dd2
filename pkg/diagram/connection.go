package diagram

import (
	"fmt"
	"math"
)

// End selects one of a connection's two endpoints.
type End int

const (
	Start End = iota
	Finish
)

func (e End) String() string {
	if e == Finish {
		return "end"
	}
	return "start"
}

// Connection is a polyline from Start to End through free waypoints.
type Connection struct {
	ID        string
	Start     Endpoint
	End       Endpoint
	Waypoints []Point
}

// Clone returns a copy that shares no waypoint storage with c.
func (c Connection) Clone() Connection {
	out := c
	out.Waypoints = append([]Point(nil), c.Waypoints...)
	return out
}

// References reports whether either endpoint is anchored to nodeID.
func (c Connection) References(nodeID string) bool {
	return c.Start.References(nodeID) || c.End.References(nodeID)
}

// Endpoint returns the endpoint selected by which.
func (c Connection) Endpoint(which End) Endpoint {
	if which == Finish {
		return c.End
	}
	return c.Start
}

// Path resolves the full point sequence: start, waypoints, end.
func (c Connection) Path(g Geometry, nodes NodeLookup) ([]Point, error) {
	start, err := g.Resolve(c.Start, nodes)
	if err != nil {
		return nil, fmt.Errorf("connection %q start: %w", c.ID, err)
	}
	end, err := g.Resolve(c.End, nodes)
	if err != nil {
		return nil, fmt.Errorf("connection %q end: %w", c.ID, err)
	}
	points := make([]Point, 0, len(c.Waypoints)+2)
	points = append(points, start)
	points = append(points, c.Waypoints...)
	return append(points, end), nil
}

// Detour is the extra length of going a -> p -> b instead of a -> b.
// It is zero when p lies on segment ab.
func Detour(a, b, p Point) float64 {
	return p.Dist(a) + p.Dist(b) - a.Dist(b)
}

// BestSegment returns the index i of the segment points[i]->points[i+1] with
// the smallest detour through p, and that detour. The first minimum wins.
// It returns -1 when points has fewer than two entries.
func BestSegment(points []Point, p Point) (int, float64) {
	best := -1
	minDetour := math.Inf(1)
	for i := 0; i+1 < len(points); i++ {
		d := Detour(points[i], points[i+1], p)
		if d < minDetour {
			minDetour = d
			best = i
		}
	}
	return best, minDetour
}

// InsertWaypointByProximity inserts click as a waypoint on the segment it
// is closest to, judged by detour, and returns the new waypoint's index.
func (g Geometry) InsertWaypointByProximity(c *Connection, click Point, nodes NodeLookup) (int, error) {
	if !click.Finite() {
		return -1, fmt.Errorf("waypoint %v on %q: %w", click, c.ID, ErrNonFinitePoint)
	}
	points, err := c.Path(g, nodes)
	if err != nil {
		return -1, err
	}
	// Segment i starts at points[i], which is waypoint i-1, so the new
	// waypoint lands at index i.
	idx, _ := BestSegment(points, click)
	if idx < 0 {
		return -1, fmt.Errorf("no segment of %q is nearest to %v: %w", c.ID, click, ErrNonFinitePoint)
	}
	c.Waypoints = append(c.Waypoints, Point{})
	copy(c.Waypoints[idx+1:], c.Waypoints[idx:])
	c.Waypoints[idx] = click
	return idx, nil
}

// InsertWaypointByProximity uses DefaultGeometry.
func InsertWaypointByProximity(c *Connection, click Point, nodes NodeLookup) (int, error) {
	return DefaultGeometry.InsertWaypointByProximity(c, click, nodes)
}

// RemoveWaypoint deletes waypoint index from c.
func RemoveWaypoint(c *Connection, index int) error {
	if index < 0 || index >= len(c.Waypoints) {
		return fmt.Errorf("connection %q has %d waypoints, got %d: %w",
			c.ID, len(c.Waypoints), index, ErrIndexOutOfRange)
	}
	c.Waypoints = append(c.Waypoints[:index], c.Waypoints[index+1:]...)
	return nil
}

// MoveWaypoint sets waypoint index of c to p.
func MoveWaypoint(c *Connection, index int, p Point) error {
	if index < 0 || index >= len(c.Waypoints) {
		return fmt.Errorf("connection %q has %d waypoints, got %d: %w",
			c.ID, len(c.Waypoints), index, ErrIndexOutOfRange)
	}
	c.Waypoints[index] = p
	return nil
}

// RebindEndpoint replaces the start or end of c.
func RebindEndpoint(c *Connection, which End, ep Endpoint) error {
	if !ep.IsSet() {
		return fmt.Errorf("connection %q %s: %w", c.ID, which, ErrUnsetEndpoint)
	}
	switch which {
	case Start:
		c.Start = ep
	case Finish:
		c.End = ep
	default:
		return fmt.Errorf("connection %q end %d: %w", c.ID, int(which), ErrInvalidIndex)
	}
	return nil
}

// CascadeDeleteForNode returns the connections that do not reference nodeID.
// The input slice is not modified.
func CascadeDeleteForNode(conns []Connection, nodeID string) []Connection {
	kept := make([]Connection, 0, len(conns))
	for _, c := range conns {
		if c.References(nodeID) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// Neighbours returns the resolved points before and after waypoint index:
// the previous waypoint or the start, and the next waypoint or the end.
func (g Geometry) Neighbours(c Connection, index int, nodes NodeLookup) (prev, next Point, err error) {
	if index < 0 || index >= len(c.Waypoints) {
		return Point{}, Point{}, fmt.Errorf("connection %q has %d waypoints, got %d: %w",
			c.ID, len(c.Waypoints), index, ErrIndexOutOfRange)
	}
	if index == 0 {
		prev, err = g.Resolve(c.Start, nodes)
	} else {
		prev = c.Waypoints[index-1]
	}
	if err != nil {
		return Point{}, Point{}, err
	}
	if index == len(c.Waypoints)-1 {
		next, err = g.Resolve(c.End, nodes)
	} else {
		next = c.Waypoints[index+1]
	}
	if err != nil {
		return Point{}, Point{}, err
	}
	return prev, next, nil
}

// OrthogonalCorner returns whichever axis-aligned corner between prev and
// next is nearer to p: {next.X, prev.Y} or {prev.X, next.Y}. Ties go to the
// second.
func OrthogonalCorner(prev, next, p Point) Point {
	c1 := Point{next.X, prev.Y}
	c2 := Point{prev.X, next.Y}
	if p.Dist(c1) < p.Dist(c2) {
		return c1
	}
	return c2
}
