// Command boardedit is a terminal editor for anchored node diagrams.
//
// Drag nodes to move them, drag connection ends onto node anchors to attach
// them, click a connection to add a waypoint and drag waypoints to reshape
// it. Hold Shift while dragging a waypoint to keep its segments orthogonal,
// or while clicking to avoid adding one.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/anchorboard/pkg/config"
	"github.com/ha1tch/anchorboard/pkg/diagram"
	"github.com/ha1tch/anchorboard/pkg/interact"
	"github.com/ha1tch/anchorboard/pkg/logging"
	"github.com/ha1tch/anchorboard/pkg/render"
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

// Editor holds the terminal editor state.
type Editor struct {
	screen tcell.Screen
	cfg    *config.Config
	log    *zap.Logger

	store   *diagram.Store
	machine *interact.Machine

	view    view
	pointer pointer
	clicks  clickTracker
	cursor  diagram.Point // last pointer position, where new nodes go

	message     string
	messageType MessageType
	added       int // nodes created in this session, for default labels
}

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "boardedit",
		Short:        "Terminal editor for anchored node diagrams",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.Path(), "Config file path")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEditor(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// The screen owns stderr while the editor runs.
	if cfg.Log.File == "" && cfg.Log.Mode != "off" {
		cfg.Log.File = "boardedit.log"
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()
	screen.Clear()

	ed := newEditor(screen, cfg, log)
	ed.run()

	screen.Fini()
	return nil
}

func newEditor(screen tcell.Screen, cfg *config.Config, log *zap.Logger) *Editor {
	v := view{
		cellW:  cfg.Editor.CellWidth,
		cellH:  cfg.Editor.CellHeight,
		origin: diagram.Point{X: cfg.Interaction.OriginX, Y: cfg.Interaction.OriginY},
	}
	ed := &Editor{
		screen: screen,
		cfg:    cfg,
		log:    log,
		view:   v,
		clicks: clickTracker{window: time.Duration(cfg.Editor.DoubleClickMS) * time.Millisecond},
	}

	sopts := diagram.DefaultStoreOptions()
	sopts.Geometry = cfg.DiagramGeometry()
	sopts.Logger = log
	ed.store = diagram.NewSampleStore(sopts)
	ed.store.Subscribe(ed.onChange)

	mopts := cfg.MachineOptions()
	mopts.Logger = log
	mopts.Scheduler = interact.PostScheduler{Post: ed.post}
	mopts.OnLongPress = func(s interact.Session) {
		ed.showMessage(fmt.Sprintf("holding %s", describeSession(s)), MsgInfo)
	}
	ed.machine = interact.NewMachine(ed.store, mopts)
	return ed
}

// post runs f on the event loop.
func (ed *Editor) post(f func()) {
	if err := ed.screen.PostEvent(tcell.NewEventInterrupt(f)); err != nil {
		ed.log.Warn("event queue full, dropping timer callback", zap.Error(err))
	}
}

func (ed *Editor) run() {
	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			ed.cancelGesture()
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if f, ok := ev.Data().(func()); ok {
				f()
			}
		}
	}
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
	case tcell.KeyLeft:
		ed.view.pan(-4, 0)
	case tcell.KeyRight:
		ed.view.pan(4, 0)
	case tcell.KeyUp:
		ed.view.pan(0, -2)
	case tcell.KeyDown:
		ed.view.pan(0, 2)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'a':
			ed.addNode()
		case 'd':
			ed.deleteSelected()
		case 'g':
			ed.cfg.Editor.ShowAnchors = !ed.cfg.Editor.ShowAnchors
		case 'p':
			ed.export()
		}
	}
	return false
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	_, h := ed.screen.Size()

	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		ed.view.pan(0, -2)
		return
	case ev.Buttons()&tcell.WheelDown != 0:
		ed.view.pan(0, 2)
		return
	}
	if row >= h-2 && !ed.pointer.down {
		return // status and help bars
	}

	ed.cursor = ed.view.toModel(col, row)
	pe, ok := ed.pointer.translate(ev, ed.view, func(c, r int) interact.Target {
		return hitTest(ed.store, ed.view, c, r)
	})
	if !ok {
		return
	}

	if err := ed.machine.Handle(pe); err != nil {
		ed.showMessage(err.Error(), MsgError)
		ed.log.Warn("pointer event failed", zap.Stringer("phase", pe.Phase), zap.Error(err))
	}

	if pe.Phase == interact.PhaseUp && !ed.pointer.moved {
		if ed.clicks.click(ed.pointer.target, time.Now()) {
			ed.removeWaypoint(ed.pointer.target)
		}
	}
}

func (ed *Editor) cancelGesture() {
	if pe, ok := ed.pointer.cancel(); ok {
		_ = ed.machine.Handle(pe)
	}
}

// Actions

func (ed *Editor) addNode() {
	ed.added++
	p := ed.cursor
	n := ed.store.AddNode(fmt.Sprintf("Node %d", ed.added), p.X, p.Y,
		diagram.SampleNodeWidth, diagram.SampleNodeHeight)
	_ = ed.store.Select(n.ID)
}

func (ed *Editor) deleteSelected() {
	ok, err := ed.store.DeleteSelected()
	switch {
	case err != nil:
		ed.showMessage(err.Error(), MsgError)
	case !ok:
		ed.showMessage("Nothing selected", MsgInfo)
	}
}

func (ed *Editor) removeWaypoint(t interact.Target) {
	if err := ed.store.RemoveWaypoint(t.ConnID, t.Index); err != nil {
		if errors.Is(err, diagram.ErrInvalidIndex) {
			return // already gone
		}
		ed.showMessage(err.Error(), MsgError)
	}
}

// export writes the diagram as an image in the configured format.
func (ed *Editor) export() {
	rc := ed.cfg.Render
	opts := ed.cfg.RenderOptions()
	if g := ed.machine.Guide(); g.Visible {
		opts.Guide = &g.At
	}

	path := "anchorboard." + rc.Format
	f, err := os.Create(path)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	defer f.Close()

	if rc.Format == "svg" {
		_, err = f.WriteString(render.SVG(ed.store, opts))
	} else {
		err = render.PNG(ed.store, f, opts)
	}
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Wrote "+path, MsgSuccess)
}

// onChange reports store notifications in the status bar.
func (ed *Editor) onChange(c diagram.Change) {
	switch c.Kind {
	case diagram.NodeAdded:
		ed.showMessage("Added "+c.NodeID, MsgSuccess)
	case diagram.NodeRemoved:
		ed.showMessage("Deleted "+c.NodeID, MsgSuccess)
	case diagram.WaypointAdded:
		ed.showMessage(fmt.Sprintf("Waypoint %d added to %s", c.Index, c.ConnID), MsgSuccess)
	case diagram.WaypointRemoved:
		ed.showMessage(fmt.Sprintf("Waypoint %d removed from %s", c.Index, c.ConnID), MsgSuccess)
	}
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
}

func describeSession(s interact.Session) string {
	switch s.Kind {
	case interact.DragNode:
		return "node " + s.NodeID
	case interact.DragHandle:
		return fmt.Sprintf("%s end of %s", s.End, s.ConnID)
	}
	return fmt.Sprintf("waypoint %d of %s", s.Index, s.ConnID)
}
