package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/anchorboard/pkg/diagram"
)

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fire runs the callback even if the timer was stopped, the way a firing
// that was already queued would.
func (t *fakeTimer) fire() { t.f() }

type fakeScheduler struct {
	timers []*fakeTimer
	delays []time.Duration
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

func (s *fakeScheduler) last() *fakeTimer { return s.timers[len(s.timers)-1] }

type fixture struct {
	store   *diagram.Store
	machine *Machine
	sched   *fakeScheduler
	changes []diagram.Change
	presses []Session
}

// newFixture builds:
//
//	A (0,0) 90x90, B (300,0) 90x90
//	c1: A right[4] -> free (200,200)
//	c2: free (0,200) -> free (100,200)
//	c3: free (0,0) -> free (100,50) through (40,40)
func newFixture(t *testing.T, tweak ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{store: diagram.NewStore(diagram.DefaultStoreOptions()), sched: &fakeScheduler{}}
	require.NoError(t, f.store.PutNode(diagram.Node{ID: "A", Width: 90, Height: 90}))
	require.NoError(t, f.store.PutNode(diagram.Node{ID: "B", X: 300, Width: 90, Height: 90}))
	require.NoError(t, f.store.PutConnection(diagram.Connection{
		ID: "c1", Start: diagram.AnchorEndpoint("A", diagram.SideRight, 4), End: diagram.FreeEndpoint(200, 200),
	}))
	require.NoError(t, f.store.PutConnection(diagram.Connection{
		ID: "c2", Start: diagram.FreeEndpoint(0, 200), End: diagram.FreeEndpoint(100, 200),
	}))
	require.NoError(t, f.store.PutConnection(diagram.Connection{
		ID: "c3", Start: diagram.FreeEndpoint(0, 0), End: diagram.FreeEndpoint(100, 50),
		Waypoints: []diagram.Point{{X: 40, Y: 40}},
	}))

	opts := DefaultOptions()
	opts.Scheduler = f.sched
	opts.OnLongPress = func(s Session) { f.presses = append(f.presses, s) }
	for _, fn := range tweak {
		fn(&opts)
	}
	f.machine = NewMachine(f.store, opts)
	f.store.Subscribe(func(c diagram.Change) { f.changes = append(f.changes, c) })
	return f
}

func (f *fixture) handle(t *testing.T, ev PointerEvent) {
	t.Helper()
	require.NoError(t, f.machine.Handle(ev))
}

func down(x, y float64, target Target) PointerEvent {
	return PointerEvent{Pos: diagram.Point{X: x, Y: y}, Primary: true, Phase: PhaseDown, Target: target}
}

func move(x, y float64) PointerEvent {
	return PointerEvent{Pos: diagram.Point{X: x, Y: y}, Primary: true, Phase: PhaseMove}
}

func up(x, y float64) PointerEvent {
	return PointerEvent{Pos: diagram.Point{X: x, Y: y}, Primary: true, Phase: PhaseUp}
}

func cancel() PointerEvent { return PointerEvent{Phase: PhaseCancel} }

func nodeTarget(id string) Target { return Target{Kind: TargetNode, NodeID: id} }

func handleTarget(conn string, end diagram.End) Target {
	return Target{Kind: TargetHandle, ConnID: conn, End: end}
}

func waypointTarget(conn string, i int) Target {
	return Target{Kind: TargetWaypoint, ConnID: conn, Index: i}
}

func bodyTarget(conn string) Target { return Target{Kind: TargetConnection, ConnID: conn} }

func (f *fixture) conn(t *testing.T, id string) diagram.Connection {
	t.Helper()
	c, ok := f.store.Connection(id)
	require.True(t, ok)
	return c
}

func TestNodeDragKeepsGrabOffset(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(10, 20, nodeTarget("A")))
	assert.Equal(t, ModeArmed, f.machine.Mode())
	assert.Equal(t, "A", f.store.Selected())
	s, ok := f.machine.Session()
	require.True(t, ok)
	assert.Equal(t, diagram.Point{X: 10, Y: 20}, s.Offset)

	f.handle(t, move(110, 70))
	f.handle(t, move(60, 45))
	n, _ := f.store.Node("A")
	assert.Equal(t, diagram.Point{X: 50, Y: 25}, n.Origin())
	assert.Equal(t, ModeDragging, f.machine.Mode())

	// Anchored endpoint follows the node.
	c1 := f.conn(t, "c1")
	p, err := f.store.Resolve(c1.Start)
	require.NoError(t, err)
	assert.Equal(t, diagram.Point{X: 140, Y: 70}, p)

	f.handle(t, up(60, 45))
	assert.Equal(t, ModeIdle, f.machine.Mode())
	_, ok = f.machine.Session()
	assert.False(t, ok)
}

func TestHandleDragSnapsToAnchor(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(200, 200, handleTarget("c1", diagram.Finish)))
	f.handle(t, move(48, 1))

	end := f.conn(t, "c1").End
	assert.Equal(t, diagram.EndpointAnchor, end.Kind)
	assert.Equal(t, diagram.Anchor{NodeID: "A", Side: diagram.SideTop, Index: 4}, end.Anchor)
	assert.Equal(t, Guide{Visible: true, At: diagram.Point{X: 45, Y: 0}}, f.machine.Guide())

	f.handle(t, move(200, 300))
	end = f.conn(t, "c1").End
	assert.Equal(t, diagram.FreeEndpoint(200, 300), end)
	assert.False(t, f.machine.Guide().Visible)

	f.handle(t, move(301, 44))
	assert.True(t, f.machine.Guide().Visible)
	f.handle(t, up(301, 44))
	assert.False(t, f.machine.Guide().Visible)

	end = f.conn(t, "c1").End
	assert.Equal(t, diagram.Anchor{NodeID: "B", Side: diagram.SideLeft, Index: 4}, end.Anchor)

	var guideKinds []diagram.ChangeKind
	for _, c := range f.changes {
		if c.Kind == diagram.GuideShown || c.Kind == diagram.GuideHidden {
			guideKinds = append(guideKinds, c.Kind)
		}
	}
	assert.Equal(t, []diagram.ChangeKind{
		diagram.GuideShown, diagram.GuideHidden, diagram.GuideShown, diagram.GuideHidden,
	}, guideKinds)
}

func TestHandleDragUsesContainerOrigin(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.ContainerOrigin = diagram.Point{X: 10, Y: 10} })

	f.handle(t, down(210, 210, handleTarget("c2", diagram.Start)))
	f.handle(t, move(210, 310))
	assert.Equal(t, diagram.FreeEndpoint(200, 300), f.conn(t, "c2").Start)
}

func TestClickInsertUsesContainerOrigin(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.ContainerOrigin = diagram.Point{X: 10, Y: 10} })

	f.handle(t, down(60, 210, bodyTarget("c2")))
	f.handle(t, up(60, 210))
	assert.Equal(t, []diagram.Point{{X: 50, Y: 200}}, f.conn(t, "c2").Waypoints)

	// Grabbing the new waypoint and moving to the same pointer position
	// leaves it where it is.
	f.handle(t, down(60, 210, waypointTarget("c2", 0)))
	f.handle(t, move(60, 210))
	f.handle(t, up(60, 210))
	assert.Equal(t, []diagram.Point{{X: 50, Y: 200}}, f.conn(t, "c2").Waypoints)
}

func TestWaypointDrag(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(40, 40, waypointTarget("c3", 0)))
	f.handle(t, move(30, 30))
	assert.Equal(t, []diagram.Point{{X: 30, Y: 30}}, f.conn(t, "c3").Waypoints)

	// prev (0,0), next (100,50): corners (100,0) and (0,50).
	ortho := move(90, 5)
	ortho.Modifier = true
	f.handle(t, ortho)
	assert.Equal(t, []diagram.Point{{X: 100, Y: 0}}, f.conn(t, "c3").Waypoints)

	ortho = move(5, 45)
	ortho.Modifier = true
	f.handle(t, ortho)
	assert.Equal(t, []diagram.Point{{X: 0, Y: 50}}, f.conn(t, "c3").Waypoints)

	f.handle(t, up(5, 45))
}

func TestClickOnConnectionInsertsWaypoint(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(50, 205, bodyTarget("c2")))
	assert.Equal(t, ModeClicking, f.machine.Mode())
	_, ok := f.machine.Session()
	assert.False(t, ok, "a click must not open a drag session")
	assert.Empty(t, f.sched.timers)

	f.handle(t, up(50, 205))
	assert.Equal(t, ModeIdle, f.machine.Mode())
	assert.Equal(t, []diagram.Point{{X: 50, Y: 205}}, f.conn(t, "c2").Waypoints)
}

func TestClickWithModifierDoesNotInsert(t *testing.T) {
	for _, tc := range []struct {
		name         string
		onDown, onUp bool
	}{
		{"modifier on press", true, false},
		{"modifier on release", false, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			d := down(50, 200, bodyTarget("c2"))
			d.Modifier = tc.onDown
			u := up(50, 200)
			u.Modifier = tc.onUp

			f.handle(t, d)
			f.handle(t, u)
			assert.Empty(t, f.conn(t, "c2").Waypoints)
		})
	}
}

func TestMoveOrCancelAbandonsClick(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(50, 200, bodyTarget("c2")))
	f.handle(t, move(55, 200))
	f.handle(t, up(55, 200))
	assert.Empty(t, f.conn(t, "c2").Waypoints)

	f.handle(t, down(50, 200, bodyTarget("c2")))
	f.handle(t, cancel())
	assert.Empty(t, f.conn(t, "c2").Waypoints)
	assert.Equal(t, ModeIdle, f.machine.Mode())
}

func TestLongPressDoesNotEndDrag(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(10, 10, nodeTarget("A")))
	require.Len(t, f.sched.timers, 1)
	assert.Equal(t, DefaultLongPress, f.sched.delays[0])
	assert.True(t, f.machine.LongPressPending())

	f.sched.last().fire()
	require.Len(t, f.presses, 1)
	assert.Equal(t, "A", f.presses[0].NodeID)
	assert.False(t, f.machine.LongPressPending())
	assert.Equal(t, ModeDragging, f.machine.Mode())

	f.handle(t, move(20, 30))
	n, _ := f.store.Node("A")
	assert.Equal(t, diagram.Point{X: 10, Y: 20}, n.Origin())

	// A second firing of the same timer is stale.
	f.sched.last().fire()
	assert.Len(t, f.presses, 1)
}

func TestDefaultOptionsScheduleNoTimer(t *testing.T) {
	store := diagram.NewStore(diagram.DefaultStoreOptions())
	require.NoError(t, store.PutNode(diagram.Node{ID: "A", Width: 90, Height: 90}))
	m := NewMachine(store, DefaultOptions())

	require.NoError(t, m.Handle(down(10, 10, nodeTarget("A"))))
	assert.Equal(t, ModeArmed, m.Mode())
	assert.False(t, m.LongPressPending(), "no timer goroutine may touch the machine")

	require.NoError(t, m.Handle(move(20, 30)))
	require.NoError(t, m.Handle(up(20, 30)))
	assert.Equal(t, ModeIdle, m.Mode())

	nilSched := NewMachine(store, Options{})
	require.NoError(t, nilSched.Handle(down(10, 10, nodeTarget("A"))))
	assert.False(t, nilSched.LongPressPending())
}

func TestMoveCancelsLongPress(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(10, 10, nodeTarget("A")))
	timer := f.sched.last()
	f.handle(t, move(11, 10))

	assert.True(t, timer.stopped)
	assert.False(t, f.machine.LongPressPending())
	timer.fire()
	assert.Empty(t, f.presses)
	assert.Equal(t, ModeDragging, f.machine.Mode())
}

func TestReleaseInvalidatesLongPress(t *testing.T) {
	for _, end := range []PointerEvent{up(10, 10), cancel()} {
		t.Run(end.Phase.String(), func(t *testing.T) {
			f := newFixture(t)
			f.handle(t, down(10, 10, nodeTarget("A")))
			timer := f.sched.last()
			f.handle(t, end)

			assert.True(t, timer.stopped)
			timer.fire()
			assert.Empty(t, f.presses)
			assert.Equal(t, ModeIdle, f.machine.Mode())

			// A new session gets its own timer; the old one stays stale.
			f.handle(t, down(10, 10, nodeTarget("A")))
			timer.fire()
			assert.Empty(t, f.presses)
			f.sched.last().fire()
			assert.Len(t, f.presses, 1)
		})
	}
}

func TestCancelKeepsLastMutation(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(200, 200, handleTarget("c1", diagram.Finish)))
	f.handle(t, move(48, 1))
	require.True(t, f.machine.Guide().Visible)
	f.handle(t, cancel())

	assert.Equal(t, ModeIdle, f.machine.Mode())
	assert.False(t, f.machine.Guide().Visible)
	assert.False(t, f.machine.LongPressPending())
	assert.Equal(t, diagram.EndpointAnchor, f.conn(t, "c1").End.Kind)
}

func TestSecondPressIgnoredWhileDragging(t *testing.T) {
	f := newFixture(t)

	f.handle(t, down(10, 10, nodeTarget("A")))
	f.handle(t, move(20, 20))
	f.handle(t, down(310, 10, nodeTarget("B")))

	s, ok := f.machine.Session()
	require.True(t, ok)
	assert.Equal(t, "A", s.NodeID)
	assert.Equal(t, "A", f.store.Selected())
	assert.Len(t, f.sched.timers, 1)

	f.handle(t, move(30, 30))
	a, _ := f.store.Node("A")
	b, _ := f.store.Node("B")
	assert.Equal(t, diagram.Point{X: 20, Y: 20}, a.Origin())
	assert.Equal(t, diagram.Point{X: 300, Y: 0}, b.Origin())
}

func TestBackgroundPressClearsSelection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Select("B"))

	f.handle(t, down(500, 500, Target{Kind: TargetBackground}))
	assert.Equal(t, "", f.store.Selected())
	assert.Equal(t, ModeIdle, f.machine.Mode())
}

func TestSecondaryButtonIgnored(t *testing.T) {
	f := newFixture(t)

	ev := down(10, 10, nodeTarget("A"))
	ev.Primary = false
	f.handle(t, ev)
	assert.Equal(t, ModeIdle, f.machine.Mode())
	assert.Equal(t, "", f.store.Selected())
	assert.Empty(t, f.sched.timers)
}

func TestIdleEventsAreSilent(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.machine.Handle(move(10, 10)))
	assert.NoError(t, f.machine.Handle(up(10, 10)))
	assert.NoError(t, f.machine.Handle(cancel()))
	assert.Empty(t, f.changes)

	assert.ErrorIs(t, f.machine.move(move(1, 1)), ErrNoActiveSession)
	assert.ErrorIs(t, f.machine.end(up(1, 1)), ErrNoActiveSession)
}

func TestInvariantViolationsSurface(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.machine.Handle(down(0, 0, nodeTarget("ghost"))), diagram.ErrUnknownNode)
	assert.Equal(t, ModeIdle, f.machine.Mode())

	assert.ErrorIs(t, f.machine.Handle(down(0, 0, waypointTarget("c3", 5))), diagram.ErrInvalidIndex)
	assert.Equal(t, ModeIdle, f.machine.Mode())

	assert.ErrorIs(t, f.machine.Handle(down(0, 0, handleTarget("ghost", diagram.Start))), diagram.ErrUnknownConnection)

	// Node deleted out from under an active drag.
	f.handle(t, down(10, 10, nodeTarget("B")))
	require.NoError(t, f.store.DeleteNode("B"))
	assert.ErrorIs(t, f.machine.Handle(move(20, 20)), diagram.ErrUnknownNode)
	f.handle(t, up(20, 20))
	assert.Equal(t, ModeIdle, f.machine.Mode())
}
