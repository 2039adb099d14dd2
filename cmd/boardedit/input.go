package main

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/anchorboard/pkg/diagram"
	"github.com/ha1tch/anchorboard/pkg/interact"
)

// view maps terminal cells to pointer space. One cell covers cellW x cellH
// units; offX/offY is the viewport scroll in cells. The diagram's (0,0)
// sits at origin in pointer space.
type view struct {
	cellW, cellH float64
	offX, offY   int
	origin       diagram.Point
}

// toShared returns the pointer-space centre of a screen cell.
func (v view) toShared(col, row int) diagram.Point {
	return diagram.Point{
		X: (float64(col+v.offX) + 0.5) * v.cellW,
		Y: (float64(row+v.offY) + 0.5) * v.cellH,
	}
}

// toModel returns the diagram-space centre of a screen cell.
func (v view) toModel(col, row int) diagram.Point {
	return v.toShared(col, row).Sub(v.origin)
}

// toCell returns the screen cell showing diagram point p.
func (v view) toCell(p diagram.Point) (col, row int) {
	p = p.Add(v.origin)
	col = int(math.Floor(p.X/v.cellW)) - v.offX
	row = int(math.Floor(p.Y/v.cellH)) - v.offY
	return col, row
}

func (v *view) pan(dx, dy int) {
	v.offX += dx
	v.offY += dy
}

// hitTest classifies what lies under screen cell (col,row). Handles win over
// nodes, and nodes over connection bodies, matching the drawing order.
func hitTest(scene diagram.Scene, v view, col, row int) interact.Target {
	sameCell := func(p diagram.Point) bool {
		c, r := v.toCell(p)
		return c == col && r == row
	}

	conns := scene.Connections()
	for _, c := range conns {
		hs, err := diagram.Handles(c, scene)
		if err != nil {
			continue
		}
		for _, h := range hs {
			if !sameCell(h.Pos) {
				continue
			}
			switch h.Kind {
			case diagram.HandleStart:
				return interact.Target{Kind: interact.TargetHandle, ConnID: c.ID, End: diagram.Start}
			case diagram.HandleEnd:
				return interact.Target{Kind: interact.TargetHandle, ConnID: c.ID, End: diagram.Finish}
			default:
				return interact.Target{Kind: interact.TargetWaypoint, ConnID: c.ID, Index: h.Index}
			}
		}
	}

	p := v.toModel(col, row)
	nodes := scene.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Contains(p, 0) {
			return interact.Target{Kind: interact.TargetNode, NodeID: nodes[i].ID}
		}
	}

	tol := math.Max(v.cellW, v.cellH) / 2
	for _, c := range conns {
		points, err := diagram.ProjectConnection(c, scene)
		if err != nil {
			continue
		}
		for i := 1; i < len(points); i++ {
			if segmentDist(points[i-1], points[i], p) <= tol {
				return interact.Target{Kind: interact.TargetConnection, ConnID: c.ID}
			}
		}
	}
	return interact.Target{Kind: interact.TargetBackground}
}

// segmentDist is the distance from p to segment ab.
func segmentDist(a, b, p diagram.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	ap := p.Sub(a)
	t := math.Max(0, math.Min(1, (ap.X*ab.X+ap.Y*ab.Y)/l2))
	return p.Dist(diagram.Point{X: a.X + t*ab.X, Y: a.Y + t*ab.Y})
}

// pointer turns tcell's button-state mouse reports into gesture phases.
// tcell reports the held buttons on every event, so down and up are edges
// of the Button1 bit.
type pointer struct {
	down   bool
	moved  bool
	target interact.Target // hit at pointer-down
	cell   [2]int
}

// translate converts one mouse report. ok is false for reports that carry
// no gesture, such as hover motion, other buttons and the wheel.
func (p *pointer) translate(ev *tcell.EventMouse, v view, hit func(col, row int) interact.Target) (interact.PointerEvent, bool) {
	col, row := ev.Position()
	primary := ev.Buttons()&tcell.Button1 != 0
	pe := interact.PointerEvent{
		Pos:      v.toShared(col, row),
		Primary:  true,
		Modifier: ev.Modifiers()&tcell.ModShift != 0,
	}

	switch {
	case primary && !p.down:
		p.down = true
		p.moved = false
		p.cell = [2]int{col, row}
		p.target = hit(col, row)
		pe.Phase = interact.PhaseDown
		pe.Target = p.target
		return pe, true

	case primary && p.down:
		if p.cell == [2]int{col, row} {
			return pe, false
		}
		p.cell = [2]int{col, row}
		p.moved = true
		pe.Phase = interact.PhaseMove
		return pe, true

	case !primary && p.down:
		p.down = false
		pe.Phase = interact.PhaseUp
		return pe, true
	}
	return pe, false
}

// cancel ends a gesture the terminal will never finish, such as when focus
// or the screen size changes mid-drag.
func (p *pointer) cancel() (interact.PointerEvent, bool) {
	if !p.down {
		return interact.PointerEvent{}, false
	}
	p.down = false
	return interact.PointerEvent{Primary: true, Phase: interact.PhaseCancel}, true
}

// clickTracker detects double clicks on the same waypoint.
type clickTracker struct {
	window time.Duration
	last   time.Time
	target interact.Target
}

// click records a completed click on t and reports whether it doubles the
// previous one. A detected double click resets the tracker so a third
// click starts over.
func (c *clickTracker) click(t interact.Target, now time.Time) bool {
	if t.Kind == interact.TargetWaypoint && t == c.target && now.Sub(c.last) < c.window {
		c.last = time.Time{}
		c.target = interact.Target{}
		return true
	}
	c.last = now
	c.target = t
	return false
}
