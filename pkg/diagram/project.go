package diagram

// Scene is the read side of a diagram as renderers see it.
type Scene interface {
	NodeLookup
	Nodes() []Node
	Connections() []Connection
	Geometry() Geometry
}

// HandleKind distinguishes the interactive markers drawn on a connection.
type HandleKind int

const (
	HandleStart HandleKind = iota
	HandleEnd
	HandleWaypoint
)

// Handle is a draggable marker position on a connection.
type Handle struct {
	Kind   HandleKind
	ConnID string
	Index  int // waypoint index, -1 for endpoints
	Pos    Point
}

// ProjectConnection returns the polyline to draw for c: at least two points.
func ProjectConnection(c Connection, scene Scene) ([]Point, error) {
	return c.Path(scene.Geometry(), scene)
}

// ProjectAnchor returns the drawing position of an anchor marker.
func ProjectAnchor(n Node, side Side, index int, g Geometry) (Point, error) {
	return g.AnchorPosition(n, side, index)
}

// Handles returns the endpoint and waypoint handles of c in drawing order.
func Handles(c Connection, scene Scene) ([]Handle, error) {
	points, err := ProjectConnection(c, scene)
	if err != nil {
		return nil, err
	}
	last := len(points) - 1
	out := make([]Handle, 0, len(points))
	out = append(out, Handle{Kind: HandleStart, ConnID: c.ID, Index: -1, Pos: points[0]})
	out = append(out, Handle{Kind: HandleEnd, ConnID: c.ID, Index: -1, Pos: points[last]})
	for i, wp := range c.Waypoints {
		out = append(out, Handle{Kind: HandleWaypoint, ConnID: c.ID, Index: i, Pos: wp})
	}
	return out, nil
}

// Bounds returns the bounding box of every node and every projected
// connection point. Connections that fail to resolve are skipped.
func Bounds(scene Scene) (minX, minY, maxX, maxY float64) {
	first := true
	grow := func(p Point) {
		if first {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			first = false
			return
		}
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	for _, n := range scene.Nodes() {
		grow(n.Origin())
		grow(Point{n.X + n.Width, n.Y + n.Height})
	}
	for _, c := range scene.Connections() {
		points, err := ProjectConnection(c, scene)
		if err != nil {
			continue
		}
		for _, p := range points {
			grow(p)
		}
	}
	return minX, minY, maxX, maxY
}
