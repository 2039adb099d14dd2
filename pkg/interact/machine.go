package interact

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ha1tch/anchorboard/pkg/diagram"
)

// DefaultLongPress is the long-press detection window.
const DefaultLongPress = 500 * time.Millisecond

// ErrNoActiveSession is returned internally when a move or release arrives
// with nothing to drag. Handle swallows it: plain pointer motion is normal.
var ErrNoActiveSession = errors.New("no active drag session")

// Model is the part of diagram.Store the machine mutates.
type Model interface {
	Node(id string) (diagram.Node, bool)
	Nodes() []diagram.Node
	Connection(id string) (diagram.Connection, bool)
	Geometry() diagram.Geometry
	Select(id string) error
	MoveNode(id string, x, y float64) error
	RebindEndpoint(connID string, which diagram.End, ep diagram.Endpoint) error
	InsertWaypoint(connID string, click diagram.Point) (int, error)
	MoveWaypoint(connID string, index int, p diagram.Point) error
	Neighbours(connID string, index int) (prev, next diagram.Point, err error)
	Publish(c diagram.Change)
}

// DragKind says what a session moves.
type DragKind int

const (
	DragNode DragKind = iota
	DragHandle
	DragWaypoint
)

func (k DragKind) String() string {
	switch k {
	case DragNode:
		return "node"
	case DragHandle:
		return "handle"
	case DragWaypoint:
		return "waypoint"
	}
	return "unknown"
}

// Session is the in-progress drag. At most one exists at a time.
type Session struct {
	Kind   DragKind
	NodeID string        // DragNode
	ConnID string        // DragHandle, DragWaypoint
	End    diagram.End   // DragHandle
	Index  int           // DragWaypoint
	Offset diagram.Point // DragNode: pointer minus node origin at pointer-down
}

// Guide is the snap indicator shown while an endpoint is over an anchor.
type Guide struct {
	Visible bool
	At      diagram.Point
}

// Options configures a Machine.
type Options struct {
	Locator         diagram.Locator
	LongPress       time.Duration
	ContainerOrigin diagram.Point // subtracted from pointer positions for handles, waypoints and clicks
	Scheduler       Scheduler
	Logger          *zap.Logger
	OnLongPress     func(Session) // optional; called when a press is held without moving
}

// DefaultOptions returns the default snapping and timing options. Long
// press detection is off until Scheduler is set to one that calls back on
// the event goroutine, such as PostScheduler.
func DefaultOptions() Options {
	return Options{
		Locator:   diagram.DefaultLocator(),
		LongPress: DefaultLongPress,
		Scheduler: NoScheduler{},
		Logger:    zap.NewNop(),
	}
}

type pendingClick struct {
	connID   string
	pos      diagram.Point
	modifier bool
}

// Machine is the pointer interaction state machine. It is not safe for
// concurrent use: feed it events, and timer callbacks, from one goroutine.
type Machine struct {
	model Model
	opts  Options
	log   *zap.Logger

	mode    Mode
	session Session
	click   pendingClick
	guide   Guide

	timer Timer
	gen   uint64 // invalidates timer callbacks that were already in flight
}

// NewMachine creates an idle machine over model. The locator always uses
// the model's geometry.
func NewMachine(model Model, opts Options) *Machine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NoScheduler{}
	}
	if opts.LongPress <= 0 {
		opts.LongPress = DefaultLongPress
	}
	if opts.Locator.Threshold <= 0 {
		opts.Locator.Threshold = diagram.DefaultSnapThreshold
	}
	opts.Locator.Geometry = model.Geometry()
	return &Machine{model: model, opts: opts, log: opts.Logger}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Session returns the active session, if any.
func (m *Machine) Session() (Session, bool) {
	if m.mode == ModeArmed || m.mode == ModeDragging {
		return m.session, true
	}
	return Session{}, false
}

// Guide returns the snap guide state.
func (m *Machine) Guide() Guide { return m.guide }

// LongPressPending reports whether the long-press timer is running.
func (m *Machine) LongPressPending() bool { return m.timer != nil }

// Handle applies one pointer event. Model invariant violations are returned;
// events with no session to act on are ignored.
func (m *Machine) Handle(ev PointerEvent) error {
	var err error
	switch ev.Phase {
	case PhaseDown:
		err = m.down(ev)
	case PhaseMove:
		err = m.move(ev)
	case PhaseUp, PhaseCancel:
		err = m.end(ev)
	default:
		err = fmt.Errorf("unknown pointer phase %d", int(ev.Phase))
	}
	if errors.Is(err, ErrNoActiveSession) {
		return nil
	}
	return err
}

func (m *Machine) down(ev PointerEvent) error {
	if m.mode != ModeIdle {
		m.log.Debug("pointer down ignored during active gesture",
			zap.Stringer("mode", m.mode), zap.Int("target", int(ev.Target.Kind)))
		return nil
	}
	next := Next(m.mode, ev)

	switch next {
	case ModeIdle:
		if ev.Primary && ev.Target.Kind == TargetBackground {
			return m.model.Select("")
		}
		return nil

	case ModeClicking:
		m.click = pendingClick{connID: ev.Target.ConnID, pos: ev.Pos.Sub(m.opts.ContainerOrigin), modifier: ev.Modifier}
		m.mode = next
		return nil

	case ModeArmed:
		s, err := m.open(ev)
		if err != nil {
			return err
		}
		if s.Kind == DragNode {
			if err := m.model.Select(s.NodeID); err != nil {
				return err
			}
		}
		m.session = s
		m.mode = next
		m.startTimer()
		m.log.Debug("drag session opened", zap.Stringer("kind", s.Kind),
			zap.String("node", s.NodeID), zap.String("conn", s.ConnID))
	}
	return nil
}

// open builds the session for a pointer-down on an interactive target,
// checking that the target still exists.
func (m *Machine) open(ev PointerEvent) (Session, error) {
	t := ev.Target
	switch t.Kind {
	case TargetNode:
		n, ok := m.model.Node(t.NodeID)
		if !ok {
			return Session{}, fmt.Errorf("drag node %q: %w", t.NodeID, diagram.ErrUnknownNode)
		}
		return Session{Kind: DragNode, NodeID: n.ID, Offset: ev.Pos.Sub(n.Origin())}, nil

	case TargetHandle:
		if _, ok := m.model.Connection(t.ConnID); !ok {
			return Session{}, fmt.Errorf("drag handle: %w", diagram.ErrUnknownConnection)
		}
		return Session{Kind: DragHandle, ConnID: t.ConnID, End: t.End}, nil

	case TargetWaypoint:
		c, ok := m.model.Connection(t.ConnID)
		if !ok {
			return Session{}, fmt.Errorf("drag waypoint: %w", diagram.ErrUnknownConnection)
		}
		if t.Index < 0 || t.Index >= len(c.Waypoints) {
			return Session{}, fmt.Errorf("drag waypoint %d of %q: %w", t.Index, t.ConnID, diagram.ErrIndexOutOfRange)
		}
		return Session{Kind: DragWaypoint, ConnID: t.ConnID, Index: t.Index}, nil
	}
	return Session{}, fmt.Errorf("target kind %d is not draggable", int(t.Kind))
}

func (m *Machine) move(ev PointerEvent) error {
	if m.mode == ModeIdle {
		return ErrNoActiveSession
	}
	prev := m.mode
	m.mode = Next(prev, ev)

	if prev == ModeClicking {
		// Movement turns the click into a drag of the connection body,
		// which does nothing.
		m.click = pendingClick{}
		return nil
	}
	m.stopTimer()
	return m.drag(ev)
}

func (m *Machine) drag(ev PointerEvent) error {
	s := m.session
	switch s.Kind {
	case DragNode:
		p := ev.Pos.Sub(s.Offset)
		return m.model.MoveNode(s.NodeID, p.X, p.Y)

	case DragHandle:
		p := ev.Pos.Sub(m.opts.ContainerOrigin)
		if snap, ok := m.opts.Locator.FindClosestAnchor(p, m.model.Nodes()); ok {
			if err := m.model.RebindEndpoint(s.ConnID, s.End, snap.Endpoint()); err != nil {
				return err
			}
			m.showGuide(snap.Pos)
			return nil
		}
		m.hideGuide()
		return m.model.RebindEndpoint(s.ConnID, s.End, diagram.FreeEndpoint(p.X, p.Y))

	case DragWaypoint:
		p := ev.Pos.Sub(m.opts.ContainerOrigin)
		if ev.Modifier {
			prev, next, err := m.model.Neighbours(s.ConnID, s.Index)
			if err != nil {
				return err
			}
			p = diagram.OrthogonalCorner(prev, next, p)
		}
		return m.model.MoveWaypoint(s.ConnID, s.Index, p)
	}
	return fmt.Errorf("unknown drag kind %d", int(s.Kind))
}

// end handles release and cancel. Cleanup runs before anything that can
// fail, so every exit path leaves no timer, session or guide behind.
func (m *Machine) end(ev PointerEvent) error {
	if m.mode == ModeIdle {
		return ErrNoActiveSession
	}
	prev := m.mode
	click := m.click

	m.mode = Next(prev, ev)
	m.stopTimer()
	m.session = Session{}
	m.click = pendingClick{}
	m.hideGuide()

	if prev == ModeClicking && ev.Phase == PhaseUp && !click.modifier && !ev.Modifier {
		idx, err := m.model.InsertWaypoint(click.connID, click.pos)
		if err != nil {
			return err
		}
		m.log.Debug("waypoint inserted by click", zap.String("conn", click.connID), zap.Int("index", idx))
	}
	return nil
}

func (m *Machine) startTimer() {
	m.gen++
	gen := m.gen
	m.timer = m.opts.Scheduler.AfterFunc(m.opts.LongPress, func() { m.longPress(gen) })
}

func (m *Machine) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

// longPress runs when the timer fires. Firings from a session that already
// moved or ended are ignored. A long press is a detection hook only: the
// drag stays open.
func (m *Machine) longPress(gen uint64) {
	if gen != m.gen || m.timer == nil {
		return
	}
	m.timer = nil
	if m.mode != ModeArmed {
		return
	}
	m.mode = ModeDragging
	s := m.session
	m.log.Info("long press detected", zap.Stringer("kind", s.Kind),
		zap.String("node", s.NodeID), zap.String("conn", s.ConnID))
	if m.opts.OnLongPress != nil {
		m.opts.OnLongPress(s)
	}
}

func (m *Machine) showGuide(p diagram.Point) {
	if m.guide.Visible && m.guide.At == p {
		return
	}
	m.guide = Guide{Visible: true, At: p}
	m.model.Publish(diagram.Change{Kind: diagram.GuideShown, Index: -1, At: p})
}

func (m *Machine) hideGuide() {
	if !m.guide.Visible {
		return
	}
	m.guide = Guide{}
	m.model.Publish(diagram.Change{Kind: diagram.GuideHidden, Index: -1})
}
