package diagram

import "fmt"

// EndpointKind tags the variant held by an Endpoint.
type EndpointKind uint8

const (
	EndpointUnset  EndpointKind = iota // zero value, never valid in a stored connection
	EndpointAnchor                     // bound to a node anchor
	EndpointFree                       // free point with a stored coordinate
)

// Anchor is a discrete attachment point on a node boundary.
type Anchor struct {
	NodeID string
	Side   Side
	Index  int
}

func (a Anchor) String() string {
	return fmt.Sprintf("%s:%s[%d]", a.NodeID, a.Side, a.Index)
}

// Endpoint is either an Anchor or a free Point, selected by Kind.
// Only the field matching Kind is meaningful.
type Endpoint struct {
	Kind   EndpointKind
	Anchor Anchor
	Point  Point
}

// AnchorEndpoint returns an endpoint bound to a node anchor.
func AnchorEndpoint(nodeID string, side Side, index int) Endpoint {
	return Endpoint{Kind: EndpointAnchor, Anchor: Anchor{NodeID: nodeID, Side: side, Index: index}}
}

// FreeEndpoint returns an endpoint at a fixed coordinate.
func FreeEndpoint(x, y float64) Endpoint {
	return Endpoint{Kind: EndpointFree, Point: Point{x, y}}
}

// IsSet reports whether the endpoint holds either variant.
func (e Endpoint) IsSet() bool {
	return e.Kind == EndpointAnchor || e.Kind == EndpointFree
}

// References reports whether the endpoint is anchored to nodeID.
func (e Endpoint) References(nodeID string) bool {
	return e.Kind == EndpointAnchor && e.Anchor.NodeID == nodeID
}

func (e Endpoint) String() string {
	switch e.Kind {
	case EndpointAnchor:
		return "anchor " + e.Anchor.String()
	case EndpointFree:
		return fmt.Sprintf("point (%.2f, %.2f)", e.Point.X, e.Point.Y)
	}
	return "unset"
}
