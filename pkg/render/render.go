// Package render draws a diagram scene as SVG or PNG.
//
// Both renderers share one frame: shared-space coordinates are translated so
// the diagram bounds sit inside the padding. No scaling is applied, so one
// output pixel is one unit of diagram space.
package render

import (
	"math"

	"github.com/ha1tch/anchorboard/pkg/diagram"
)

// Options configures rendering.
type Options struct {
	Width    int // 0 = fit to diagram
	Height   int // 0 = fit to diagram
	Padding  int
	FontSize int
	Handles  bool           // draw endpoint and waypoint markers
	Guide    *diagram.Point // snap guide position, nil when hidden
}

// DefaultOptions returns sensible defaults for rendering.
func DefaultOptions() Options {
	return Options{
		Padding:  40,
		FontSize: 14,
		Handles:  true,
	}
}

const (
	handleRadius = 4.0
	guideRadius  = 8.0
)

func (o Options) withDefaults() Options {
	if o.FontSize <= 0 {
		o.FontSize = 14
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

// frame maps shared space onto the output canvas.
type frame struct {
	width, height int
	dx, dy        float64
}

func newFrame(scene diagram.Scene, opts Options) frame {
	minX, minY, maxX, maxY := diagram.Bounds(scene)
	pad := float64(opts.Padding)

	f := frame{
		width:  opts.Width,
		height: opts.Height,
		dx:     pad - minX,
		dy:     pad - minY,
	}
	if f.width <= 0 {
		f.width = int(math.Ceil(maxX-minX)) + 2*opts.Padding
	}
	if f.height <= 0 {
		f.height = int(math.Ceil(maxY-minY)) + 2*opts.Padding
	}
	if f.width < 1 {
		f.width = 1
	}
	if f.height < 1 {
		f.height = 1
	}
	return f
}

func (f frame) at(p diagram.Point) (float64, float64) {
	return p.X + f.dx, p.Y + f.dy
}

// picture is everything a renderer draws, already projected.
type picture struct {
	nodes   []diagram.Node
	lines   [][]diagram.Point
	handles []diagram.Handle
}

// collect projects the scene. Connections that fail to resolve are skipped
// rather than aborting the whole picture.
func collect(scene diagram.Scene, withHandles bool) picture {
	pic := picture{nodes: scene.Nodes()}
	for _, c := range scene.Connections() {
		points, err := diagram.ProjectConnection(c, scene)
		if err != nil {
			continue
		}
		pic.lines = append(pic.lines, points)
		if !withHandles {
			continue
		}
		hs, err := diagram.Handles(c, scene)
		if err == nil {
			pic.handles = append(pic.handles, hs...)
		}
	}
	return pic
}

func handleClass(k diagram.HandleKind) string {
	switch k {
	case diagram.HandleStart:
		return "handle-start"
	case diagram.HandleEnd:
		return "handle-end"
	}
	return "handle-waypoint"
}
