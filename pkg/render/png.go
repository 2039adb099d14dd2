// Native PNG rendering. Mirrors the SVG renderer output using Go's image
// packages.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/anchorboard/pkg/diagram"
)

// supersample is the oversampling factor used before downscaling.
const supersample = 4

var (
	colorWhite    = color.RGBA{255, 255, 255, 255}
	colorBlack    = color.RGBA{51, 51, 51, 255}   // #333
	colorGray     = color.RGBA{102, 102, 102, 255} // #666
	colorLine     = color.RGBA{21, 101, 192, 255}  // #1565c0
	colorStart    = color.RGBA{46, 125, 50, 255}   // #2e7d32
	colorEnd      = color.RGBA{230, 81, 0, 255}    // #e65100
	colorGuide    = colorEnd
	colorWaypoint = colorWhite
)

// renderContext holds rendering parameters including scale.
type renderContext struct {
	img       *image.RGBA
	scale     float64 // multiplier for line thickness and marker size
	lineWidth float64
	face      font.Face
	fr        frame
}

func newRenderContext(img *image.RGBA, scale, fontSize int, fr frame) (*renderContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	// Face at scaled size; hinting off since the image is downsampled.
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}

	return &renderContext{
		img:       img,
		scale:     float64(scale),
		lineWidth: float64(scale) * 2,
		face:      face,
		fr:        fr,
	}, nil
}

// at maps a shared-space point into supersampled pixel space.
func (ctx *renderContext) at(p diagram.Point) (float64, float64) {
	x, y := ctx.fr.at(p)
	return x * ctx.scale, y * ctx.scale
}

// PNG renders the scene to w in PNG format.
func PNG(scene diagram.Scene, w io.Writer, opts Options) error {
	img, err := Image(scene, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Image rasterises the scene. It renders at 4x and downsamples with
// Catmull-Rom for smoother edges.
func Image(scene diagram.Scene, opts Options) (*image.RGBA, error) {
	opts = opts.withDefaults()
	fr := newFrame(scene, opts)
	pic := collect(scene, opts.Handles)

	large := image.NewRGBA(image.Rect(0, 0, fr.width*supersample, fr.height*supersample))
	draw.Draw(large, large.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	ctx, err := newRenderContext(large, supersample, opts.FontSize, fr)
	if err != nil {
		return nil, err
	}

	for _, n := range pic.nodes {
		x, y := ctx.at(n.Origin())
		w, h := n.Width*ctx.scale, n.Height*ctx.scale
		fillRect(ctx, x, y, w, h, colorWhite)
		strokeRect(ctx, x, y, w, h, colorBlack)
		drawTextCentered(ctx, int(x+w/2), int(y+h/2), n.Label, colorBlack)
	}

	for _, line := range pic.lines {
		for i := 1; i < len(line); i++ {
			x1, y1 := ctx.at(line[i-1])
			x2, y2 := ctx.at(line[i])
			drawLine(ctx, x1, y1, x2, y2, colorLine)
		}
	}

	for _, h := range pic.handles {
		x, y := ctx.at(h.Pos)
		r := handleRadius * ctx.scale
		switch h.Kind {
		case diagram.HandleStart:
			drawDisc(ctx, x, y, r, colorStart, colorStart)
		case diagram.HandleEnd:
			drawDisc(ctx, x, y, r, colorEnd, colorEnd)
		default:
			drawDisc(ctx, x, y, r, colorWaypoint, colorGray)
		}
	}

	if opts.Guide != nil {
		x, y := ctx.at(*opts.Guide)
		drawDisc(ctx, x, y, guideRadius*ctx.scale, color.Transparent, colorGuide)
	}

	final := image.NewRGBA(image.Rect(0, 0, fr.width, fr.height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final, nil
}

// fillRect fills an axis-aligned rectangle.
func fillRect(ctx *renderContext, x, y, w, h float64, c color.Color) {
	for py := int(y); py <= int(y+h); py++ {
		for px := int(x); px <= int(x+w); px++ {
			ctx.img.Set(px, py, c)
		}
	}
}

// strokeRect draws the outline of an axis-aligned rectangle.
func strokeRect(ctx *renderContext, x, y, w, h float64, c color.Color) {
	drawLine(ctx, x, y, x+w, y, c)
	drawLine(ctx, x+w, y, x+w, y+h, c)
	drawLine(ctx, x+w, y+h, x, y+h, c)
	drawLine(ctx, x, y+h, x, y, c)
}

// drawDisc draws a circle outline and optional fill.
func drawDisc(ctx *renderContext, cx, cy, r float64, fill, stroke color.Color) {
	img := ctx.img
	if fill != color.Transparent {
		for dy := -r; dy <= r; dy++ {
			extent := math.Sqrt(math.Max(0, r*r-dy*dy))
			for dx := -extent; dx <= extent; dx++ {
				img.Set(int(cx+dx), int(cy+dy), fill)
			}
		}
	}

	half := ctx.lineWidth / 2
	for angle := 0.0; angle < 2*math.Pi; angle += 0.01 {
		nx, ny := math.Cos(angle), math.Sin(angle)
		for t := -half; t <= half; t += 0.5 {
			img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), stroke)
		}
	}
}

// drawLine draws a line between two points with thickness from context.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	img := ctx.img
	halfThick := ctx.lineWidth / 2

	dx := x2 - x1
	dy := y2 - y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	steps := math.Max(math.Abs(dx), math.Abs(dy))
	perpX := -dy / dist
	perpY := dx / dist

	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawTextCentered draws text centred at the given position.
func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	if text == "" {
		return
	}
	width := font.MeasureString(ctx.face, text).Ceil()

	// Baseline sits a little below centre so caps look vertically centred.
	ascent := ctx.face.Metrics().Ascent.Ceil()
	baselineY := y + int(float64(ascent)*0.35)

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(baselineY)},
	}
	d.DrawString(text)
}
