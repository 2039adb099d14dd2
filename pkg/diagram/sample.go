package diagram

// Sample node size. Labels in the sample are short, so one size fits all.
const (
	SampleNodeWidth  = 90
	SampleNodeHeight = 40
)

// NewSampleStore returns a store holding a small four-node diagram with one
// node-to-node connection and one connection ending at a free point.
func NewSampleStore(opts StoreOptions) *Store {
	s := NewStore(opts)
	for _, n := range []Node{
		{ID: "node-a", X: 400, Y: 300, Label: "Person A"},
		{ID: "node-b", X: 700, Y: 200, Label: "Person B"},
		{ID: "node-c", X: 400, Y: 550, Label: "Person C"},
		{ID: "node-d", X: 100, Y: 300, Label: "Person D"},
	} {
		n.Width, n.Height = SampleNodeWidth, SampleNodeHeight
		_ = s.PutNode(n)
	}

	mid := s.geom.Count() / 2
	_ = s.PutConnection(Connection{
		ID:    "conn-1",
		Start: AnchorEndpoint("node-a", SideTop, mid),
		End:   AnchorEndpoint("node-b", SideLeft, mid),
	})
	_ = s.PutConnection(Connection{
		ID:    "conn-2",
		Start: AnchorEndpoint("node-d", SideRight, mid),
		End:   FreeEndpoint(250, 350),
	})
	return s
}
