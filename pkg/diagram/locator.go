package diagram

// Default snapping parameters.
const (
	DefaultSnapThreshold = 30.0
	DefaultSnapBuffer    = 50.0
)

// Snap is the result of an anchor search.
type Snap struct {
	Anchor Anchor
	Pos    Point   // resolved anchor position
	Dist   float64 // distance from the query point
}

// Endpoint returns the snap as an anchor endpoint.
func (s Snap) Endpoint() Endpoint {
	return Endpoint{Kind: EndpointAnchor, Anchor: s.Anchor}
}

// Locator finds the anchor nearest to a point.
type Locator struct {
	Geometry  Geometry
	Threshold float64 // snap only when distance < Threshold
	Buffer    float64 // bounding-box prefilter margin
}

// DefaultLocator returns a locator with the default threshold and buffer.
func DefaultLocator() Locator {
	return Locator{
		Geometry:  DefaultGeometry,
		Threshold: DefaultSnapThreshold,
		Buffer:    DefaultSnapBuffer,
	}
}

// margin is the prefilter margin. A margin smaller than the threshold could
// reject a node whose anchor is within reach, so it never drops below it.
func (l Locator) margin() float64 {
	if l.Buffer < l.Threshold {
		return l.Threshold
	}
	return l.Buffer
}

// FindClosestAnchor returns the anchor nearest to p among all nodes, if its
// distance is strictly less than the threshold. Ties go to the first anchor
// enumerated: nodes in order, sides top, bottom, left, right, then index
// ascending.
func (l Locator) FindClosestAnchor(p Point, nodes []Node) (Snap, bool) {
	var best Snap
	found := false
	minDist := l.Threshold
	count := l.Geometry.Count()
	margin := l.margin()

	for _, n := range nodes {
		if !n.Contains(p, margin) {
			continue
		}
		for _, side := range Sides {
			for i := 0; i < count; i++ {
				pos, err := l.Geometry.AnchorPosition(n, side, i)
				if err != nil {
					continue
				}
				d := p.Dist(pos)
				if d < minDist {
					minDist = d
					best = Snap{Anchor: Anchor{NodeID: n.ID, Side: side, Index: i}, Pos: pos, Dist: d}
					found = true
				}
			}
		}
	}
	return best, found
}
