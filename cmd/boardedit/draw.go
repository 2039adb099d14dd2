package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/anchorboard/pkg/diagram"
	"github.com/ha1tch/anchorboard/pkg/interact"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleNode       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleNodeSel    = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleNodeDrag   = tcell.StyleDefault.Background(tcell.ColorPurple).Foreground(tcell.ColorWhite)
	styleConn       = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleConnDrag   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleStart      = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleEnd        = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleWaypoint   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleAnchor     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleGuide      = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorLime).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()
	canvasH := h - 2 // status and help bars

	session, dragging := ed.machine.Session()

	// Connections first so nodes render on top.
	for _, c := range ed.store.Connections() {
		points, err := diagram.ProjectConnection(c, ed.store)
		if err != nil {
			continue
		}
		style := styleConn
		if dragging && session.ConnID == c.ID {
			style = styleConnDrag
		}
		for i := 1; i < len(points); i++ {
			c0, r0 := ed.view.toCell(points[i-1])
			c1, r1 := ed.view.toCell(points[i])
			ed.drawSegment(c0, r0, c1, r1, w, canvasH, style)
		}
	}

	for _, n := range ed.store.Nodes() {
		style := styleNode
		if n.ID == ed.store.Selected() {
			style = styleNodeSel
		}
		if dragging && session.Kind == interact.DragNode && session.NodeID == n.ID {
			style = styleNodeDrag
		}
		ed.drawNode(n, w, canvasH, style)
		if ed.cfg.Editor.ShowAnchors {
			ed.drawAnchors(n, w, canvasH)
		}
	}

	for _, c := range ed.store.Connections() {
		hs, err := diagram.Handles(c, ed.store)
		if err != nil {
			continue
		}
		for _, hd := range hs {
			col, row := ed.view.toCell(hd.Pos)
			switch hd.Kind {
			case diagram.HandleStart:
				ed.setCell(col, row, '●', w, canvasH, styleStart)
			case diagram.HandleEnd:
				ed.setCell(col, row, '◆', w, canvasH, styleEnd)
			default:
				ed.setCell(col, row, '■', w, canvasH, styleWaypoint)
			}
		}
	}

	if g := ed.machine.Guide(); g.Visible {
		col, row := ed.view.toCell(g.At)
		ed.setCell(col, row, '◎', w, canvasH, styleGuide)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) setCell(col, row int, r rune, w, h int, style tcell.Style) {
	if col < 0 || row < 0 || col >= w || row >= h {
		return
	}
	ed.screen.SetContent(col, row, r, nil, style)
}

// drawSegment rasterises a line between two cells (Bresenham).
func (ed *Editor) drawSegment(c0, r0, c1, r1, w, h int, style tcell.Style) {
	for _, cell := range lineCells(c0, r0, c1, r1) {
		ed.setCell(cell[0], cell[1], '·', w, h, style)
	}
}

func lineCells(c0, r0, c1, r1 int) [][2]int {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}

	var cells [][2]int
	e := dc + dr
	for {
		cells = append(cells, [2]int{c0, r0})
		if c0 == c1 && r0 == r1 {
			return cells
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// drawNode draws a node as a box with its label centred.
func (ed *Editor) drawNode(n diagram.Node, w, h int, style tcell.Style) {
	x0, y0 := ed.view.toCell(n.Origin())
	x1, y1 := ed.view.toCell(diagram.Point{X: n.X + n.Width, Y: n.Y + n.Height})
	if x1 < x0+2 {
		x1 = x0 + 2
	}
	if y1 < y0+2 {
		y1 = y0 + 2
	}

	for col := x0 + 1; col < x1; col++ {
		ed.setCell(col, y0, '─', w, h, style)
		ed.setCell(col, y1, '─', w, h, style)
		for row := y0 + 1; row < y1; row++ {
			ed.setCell(col, row, ' ', w, h, style)
		}
	}
	for row := y0 + 1; row < y1; row++ {
		ed.setCell(x0, row, '│', w, h, style)
		ed.setCell(x1, row, '│', w, h, style)
	}
	ed.setCell(x0, y0, '┌', w, h, style)
	ed.setCell(x1, y0, '┐', w, h, style)
	ed.setCell(x0, y1, '└', w, h, style)
	ed.setCell(x1, y1, '┘', w, h, style)

	label := truncate(n.Label, x1-x0-1)
	mid := (y0 + y1) / 2
	start := x0 + 1 + (x1-x0-1-len([]rune(label)))/2
	for i, r := range []rune(label) {
		ed.setCell(start+i, mid, r, w, h, style)
	}
}

func (ed *Editor) drawAnchors(n diagram.Node, w, h int) {
	g := ed.store.Geometry()
	for _, side := range diagram.Sides {
		for i := 0; i < g.Count(); i++ {
			p, err := diagram.ProjectAnchor(n, side, i, g)
			if err != nil {
				continue
			}
			col, row := ed.view.toCell(p)
			ed.setCell(col, row, '+', w, h, styleAnchor)
		}
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	ed.drawString(1, y, "anchorboard", styleStatus)

	mode := ed.machine.Mode().String()
	ed.drawString(w/2-len(mode)/2, y, mode, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		}
		msg := truncate(ed.message, w/2-len(mode)/2-2)
		ed.drawString(w-len([]rune(msg))-2, y, msg, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, helpText, styleHelp)
}

const helpText = "drag: move  click line: add point  shift: orthogonal/no add  " +
	"dbl-click point: remove  a:add d:delete g:anchors p:export q:quit"

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return strings.TrimSpace(string(r[:maxLen-1])) + "…"
}
