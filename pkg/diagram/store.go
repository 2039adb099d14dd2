package diagram

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	Geometry Geometry
	Logger   *zap.Logger
	NewID    func() string // id generator for nodes and connections
}

// DefaultStoreOptions returns options with the default geometry, a no-op
// logger and random UUID ids.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Geometry: DefaultGeometry,
		Logger:   zap.NewNop(),
		NewID:    uuid.NewString,
	}
}

// Store owns the nodes and connections of one diagram. All mutation goes
// through it so that reference validity, id uniqueness and cascade deletion
// hold at every point a listener can observe.
//
// A Store is not safe for concurrent use; the interaction layer serializes
// events onto a single goroutine.
type Store struct {
	geom     Geometry
	log      *zap.Logger
	newID    func() string
	nodes    []Node
	conns    []Connection
	selected string

	listeners map[int]Listener
	order     []int
	nextSub   int
}

// NewStore creates an empty store.
func NewStore(opts StoreOptions) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Store{
		geom:      opts.Geometry,
		log:       opts.Logger,
		newID:     opts.NewID,
		listeners: make(map[int]Listener),
	}
}

// Geometry returns the geometry used to resolve endpoints.
func (s *Store) Geometry() Geometry { return s.geom }

// Subscribe registers l for every subsequent change and returns a function
// that removes it.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.order = append(s.order, id)
	return func() {
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers c to all listeners in subscription order.
func (s *Store) Publish(c Change) {
	for _, id := range s.order {
		if l, ok := s.listeners[id]; ok {
			l(c)
		}
	}
}

// Nodes

// Node implements NodeLookup.
func (s *Store) Node(id string) (Node, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Nodes returns a copy of all nodes in insertion order.
func (s *Store) Nodes() []Node {
	return append([]Node(nil), s.nodes...)
}

func (s *Store) nodeIndex(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// AddNode creates a node with a fresh id.
func (s *Store) AddNode(label string, x, y, width, height float64) Node {
	n := Node{ID: s.newID(), X: x, Y: y, Label: label, Width: width, Height: height}
	for s.nodeIndex(n.ID) >= 0 {
		n.ID = s.newID()
	}
	s.nodes = append(s.nodes, n)
	s.log.Debug("node added", zap.String("node", n.ID), zap.String("label", label))
	s.Publish(Change{Kind: NodeAdded, NodeID: n.ID, Index: -1, At: n.Origin()})
	return n
}

// PutNode inserts a node with a caller-chosen id.
func (s *Store) PutNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("node without id: %w", ErrUnknownNode)
	}
	if s.nodeIndex(n.ID) >= 0 {
		return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateID)
	}
	s.nodes = append(s.nodes, n)
	s.Publish(Change{Kind: NodeAdded, NodeID: n.ID, Index: -1, At: n.Origin()})
	return nil
}

// MoveNode sets the top-left corner of a node. Anchored connections follow
// implicitly.
func (s *Store) MoveNode(id string, x, y float64) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("move %q: %w", id, ErrUnknownNode)
	}
	s.nodes[i].X = x
	s.nodes[i].Y = y
	s.Publish(Change{Kind: NodeMoved, NodeID: id, Index: -1, At: Point{x, y}})
	return nil
}

// DeleteNode removes a node and every connection anchored to it.
func (s *Store) DeleteNode(id string) error {
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrUnknownNode)
	}

	kept := CascadeDeleteForNode(s.conns, id)
	var removed []string
	for _, c := range s.conns {
		if c.References(id) {
			removed = append(removed, c.ID)
		}
	}

	s.nodes = append(s.nodes[:i:i], s.nodes[i+1:]...)
	s.conns = kept
	wasSelected := s.selected == id
	if wasSelected {
		s.selected = ""
	}

	s.log.Debug("node deleted", zap.String("node", id), zap.Strings("cascade", removed))
	for _, cid := range removed {
		s.Publish(Change{Kind: ConnectionRemoved, ConnID: cid, Index: -1})
	}
	s.Publish(Change{Kind: NodeRemoved, NodeID: id, Index: -1})
	if wasSelected {
		s.Publish(Change{Kind: SelectionChanged, Index: -1})
	}
	return nil
}

// Selection

// Select marks a node as selected. An empty id clears the selection.
func (s *Store) Select(id string) error {
	if id != "" && s.nodeIndex(id) < 0 {
		return fmt.Errorf("select %q: %w", id, ErrUnknownNode)
	}
	if s.selected == id {
		return nil
	}
	s.selected = id
	s.Publish(Change{Kind: SelectionChanged, NodeID: id, Index: -1})
	return nil
}

// Selected returns the selected node id, or "" when nothing is selected.
func (s *Store) Selected() string { return s.selected }

// DeleteSelected deletes the selected node, if any, and reports whether
// something was deleted.
func (s *Store) DeleteSelected() (bool, error) {
	if s.selected == "" {
		return false, nil
	}
	if err := s.DeleteNode(s.selected); err != nil {
		return false, err
	}
	return true, nil
}

// Connections

// Connection returns a copy of the connection with the given id.
func (s *Store) Connection(id string) (Connection, bool) {
	i := s.connIndex(id)
	if i < 0 {
		return Connection{}, false
	}
	return s.conns[i].Clone(), true
}

// Connections returns copies of all connections in insertion order.
func (s *Store) Connections() []Connection {
	out := make([]Connection, len(s.conns))
	for i, c := range s.conns {
		out[i] = c.Clone()
	}
	return out
}

func (s *Store) connIndex(id string) int {
	for i, c := range s.conns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) conn(id string) (*Connection, error) {
	i := s.connIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("connection %q: %w", id, ErrUnknownConnection)
	}
	return &s.conns[i], nil
}

// validEndpoint resolves ep so that a dangling anchor or bad index never
// enters the store.
func (s *Store) validEndpoint(ep Endpoint) error {
	_, err := s.geom.Resolve(ep, s)
	return err
}

// AddConnection creates a connection with a fresh id.
func (s *Store) AddConnection(start, end Endpoint, waypoints ...Point) (Connection, error) {
	c := Connection{ID: s.newID(), Start: start, End: end, Waypoints: append([]Point(nil), waypoints...)}
	for s.connIndex(c.ID) >= 0 {
		c.ID = s.newID()
	}
	if err := s.insertConnection(c); err != nil {
		return Connection{}, err
	}
	return c.Clone(), nil
}

// PutConnection inserts a connection with a caller-chosen id.
func (s *Store) PutConnection(c Connection) error {
	if c.ID == "" {
		return fmt.Errorf("connection without id: %w", ErrUnknownConnection)
	}
	if s.connIndex(c.ID) >= 0 {
		return fmt.Errorf("connection %q: %w", c.ID, ErrDuplicateID)
	}
	return s.insertConnection(c.Clone())
}

func (s *Store) insertConnection(c Connection) error {
	if err := s.validEndpoint(c.Start); err != nil {
		return fmt.Errorf("connection %q start: %w", c.ID, err)
	}
	if err := s.validEndpoint(c.End); err != nil {
		return fmt.Errorf("connection %q end: %w", c.ID, err)
	}
	s.conns = append(s.conns, c)
	s.log.Debug("connection added", zap.String("conn", c.ID),
		zap.Stringer("start", c.Start), zap.Stringer("end", c.End))
	s.Publish(Change{Kind: ConnectionAdded, ConnID: c.ID, Index: -1})
	return nil
}

// DeleteConnection removes a connection.
func (s *Store) DeleteConnection(id string) error {
	i := s.connIndex(id)
	if i < 0 {
		return fmt.Errorf("delete connection %q: %w", id, ErrUnknownConnection)
	}
	s.conns = append(s.conns[:i:i], s.conns[i+1:]...)
	s.Publish(Change{Kind: ConnectionRemoved, ConnID: id, Index: -1})
	return nil
}

// RebindEndpoint replaces the start or end of a connection.
func (s *Store) RebindEndpoint(connID string, which End, ep Endpoint) error {
	c, err := s.conn(connID)
	if err != nil {
		return err
	}
	if err := s.validEndpoint(ep); err != nil {
		return fmt.Errorf("rebind %q %s: %w", connID, which, err)
	}
	if err := RebindEndpoint(c, which, ep); err != nil {
		return err
	}
	s.Publish(Change{Kind: ConnectionChanged, ConnID: connID, Index: -1})
	return nil
}

// InsertWaypoint inserts click on the nearest segment of a connection and
// returns the new waypoint index.
func (s *Store) InsertWaypoint(connID string, click Point) (int, error) {
	c, err := s.conn(connID)
	if err != nil {
		return -1, err
	}
	idx, err := s.geom.InsertWaypointByProximity(c, click, s)
	if err != nil {
		return -1, err
	}
	s.log.Debug("waypoint inserted", zap.String("conn", connID), zap.Int("index", idx))
	s.Publish(Change{Kind: WaypointAdded, ConnID: connID, Index: idx, At: click})
	return idx, nil
}

// MoveWaypoint repositions a waypoint.
func (s *Store) MoveWaypoint(connID string, index int, p Point) error {
	c, err := s.conn(connID)
	if err != nil {
		return err
	}
	if err := MoveWaypoint(c, index, p); err != nil {
		return err
	}
	s.Publish(Change{Kind: WaypointMoved, ConnID: connID, Index: index, At: p})
	return nil
}

// RemoveWaypoint deletes a waypoint.
func (s *Store) RemoveWaypoint(connID string, index int) error {
	c, err := s.conn(connID)
	if err != nil {
		return err
	}
	if err := RemoveWaypoint(c, index); err != nil {
		return err
	}
	s.log.Debug("waypoint removed", zap.String("conn", connID), zap.Int("index", index))
	s.Publish(Change{Kind: WaypointRemoved, ConnID: connID, Index: index})
	return nil
}

// Resolve resolves an endpoint against the store's nodes.
func (s *Store) Resolve(ep Endpoint) (Point, error) {
	return s.geom.Resolve(ep, s)
}

// Neighbours returns the points on either side of a waypoint.
func (s *Store) Neighbours(connID string, index int) (prev, next Point, err error) {
	c, err := s.conn(connID)
	if err != nil {
		return Point{}, Point{}, err
	}
	return s.geom.Neighbours(*c, index, s)
}
