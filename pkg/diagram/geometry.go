// Package diagram provides the node/connection model of an anchored
// diagram and the geometry that places connections on node boundaries.
//
// Anchor positions are always derived from the current node geometry and
// never stored, so moving a node implicitly moves every connection that is
// anchored to it.
package diagram

import (
	"fmt"
	"math"
)

// DefaultAnchorCount is the number of anchors along each side of a node.
const DefaultAnchorCount = 9

// Point represents a 2D coordinate in the shared diagram space.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Side identifies one edge of a node's bounding rectangle.
type Side int

const (
	SideTop    Side = iota // x varies along the top edge
	SideBottom             // x varies along the bottom edge
	SideLeft               // y varies along the left edge
	SideRight              // y varies along the right edge
)

// Sides lists every side in enumeration order. Anchor search relies on this
// order for its tie-break.
var Sides = [...]Side{SideTop, SideBottom, SideLeft, SideRight}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide converts a side name to a Side.
func ParseSide(name string) (Side, error) {
	for _, s := range Sides {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", name)
}

// Node is a labeled box. X and Y are the top-left corner.
type Node struct {
	ID     string
	X, Y   float64
	Label  string
	Width  float64
	Height float64
}

// Origin returns the top-left corner of the node.
func (n Node) Origin() Point { return Point{n.X, n.Y} }

// Contains reports whether p lies inside the node box grown by margin on
// every side.
func (n Node) Contains(p Point, margin float64) bool {
	return p.X >= n.X-margin && p.X <= n.X+n.Width+margin &&
		p.Y >= n.Y-margin && p.Y <= n.Y+n.Height+margin
}

// NodeLookup resolves node ids to their current geometry.
type NodeLookup interface {
	Node(id string) (Node, bool)
}

// NodeSet is a NodeLookup over a plain slice, for callers that hold nodes
// outside a Store.
type NodeSet []Node

// Node implements NodeLookup.
func (s NodeSet) Node(id string) (Node, bool) {
	for _, n := range s {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Geometry computes anchor and endpoint positions. The zero value uses
// DefaultAnchorCount.
type Geometry struct {
	AnchorCount int
}

// DefaultGeometry is the geometry with DefaultAnchorCount anchors per side.
var DefaultGeometry = Geometry{AnchorCount: DefaultAnchorCount}

// Count returns the number of anchors per side: AnchorCount, or
// DefaultAnchorCount when it is zero.
func (g Geometry) Count() int {
	if g.AnchorCount == 0 {
		return DefaultAnchorCount
	}
	return g.AnchorCount
}

// AnchorPosition returns the position of anchor index on the given side of n.
// The side is divided into Count()-1 equal steps, so a geometry with fewer
// than two anchors per side has no valid index.
func (g Geometry) AnchorPosition(n Node, side Side, index int) (Point, error) {
	count := g.Count()
	if count < 2 {
		return Point{}, fmt.Errorf("anchor count %d (want at least 2): %w", count, ErrInvalidIndex)
	}
	if index < 0 || index >= count {
		return Point{}, fmt.Errorf("anchor %d on %s of %q (want 0..%d): %w",
			index, side, n.ID, count-1, ErrInvalidIndex)
	}

	stepX := n.Width / float64(count-1)
	stepY := n.Height / float64(count-1)
	i := float64(index)

	switch side {
	case SideTop:
		return Point{n.X + stepX*i, n.Y}, nil
	case SideBottom:
		return Point{n.X + stepX*i, n.Y + n.Height}, nil
	case SideLeft:
		return Point{n.X, n.Y + stepY*i}, nil
	case SideRight:
		return Point{n.X + n.Width, n.Y + stepY*i}, nil
	}
	return Point{}, fmt.Errorf("%v: %w", side, ErrInvalidIndex)
}

// Resolve returns the absolute position of an endpoint. Anchor endpoints are
// recomputed from the node's current geometry on every call.
func (g Geometry) Resolve(ep Endpoint, nodes NodeLookup) (Point, error) {
	switch ep.Kind {
	case EndpointAnchor:
		n, ok := nodes.Node(ep.Anchor.NodeID)
		if !ok {
			return Point{}, fmt.Errorf("anchor on %q: %w", ep.Anchor.NodeID, ErrDanglingReference)
		}
		return g.AnchorPosition(n, ep.Anchor.Side, ep.Anchor.Index)
	case EndpointFree:
		return ep.Point, nil
	}
	return Point{}, ErrUnsetEndpoint
}

// AnchorPosition computes an anchor position with DefaultGeometry.
func AnchorPosition(n Node, side Side, index int) (Point, error) {
	return DefaultGeometry.AnchorPosition(n, side, index)
}

// Resolve resolves an endpoint with DefaultGeometry.
func Resolve(ep Endpoint, nodes NodeLookup) (Point, error) {
	return DefaultGeometry.Resolve(ep, nodes)
}
