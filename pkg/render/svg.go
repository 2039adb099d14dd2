package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/ha1tch/anchorboard/pkg/diagram"
)

// SVG renders the scene as a standalone SVG document.
func SVG(scene diagram.Scene, opts Options) string {
	opts = opts.withDefaults()
	fr := newFrame(scene, opts)
	pic := collect(scene, opts.Handles)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<style>
  .node { fill: white; stroke: #333; stroke-width: 2; }
  .node-label { font-family: sans-serif; font-size: %dpx; text-anchor: middle; dominant-baseline: middle; }
  .connection { fill: none; stroke: #1565c0; stroke-width: 2; }
  .handle-start { fill: #2e7d32; }
  .handle-end { fill: #e65100; }
  .handle-waypoint { fill: white; stroke: #666; stroke-width: 1.5; }
  .guide { fill: none; stroke: #e65100; stroke-width: 1.5; stroke-dasharray: 3 2; }
</style>
`, fr.width, fr.height, fr.width, fr.height, opts.FontSize))

	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>
`, fr.width, fr.height))

	for _, n := range pic.nodes {
		x, y := fr.at(n.Origin())
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" class="node"/>
`, x, y, n.Width, n.Height))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" class="node-label">%s</text>
`, x+n.Width/2, y+n.Height/2, html.EscapeString(n.Label)))
	}

	for _, line := range pic.lines {
		coords := make([]string, len(line))
		for i, p := range line {
			x, y := fr.at(p)
			coords[i] = fmt.Sprintf("%.1f,%.1f", x, y)
		}
		sb.WriteString(fmt.Sprintf(`<polyline points="%s" class="connection"/>
`, strings.Join(coords, " ")))
	}

	for _, h := range pic.handles {
		x, y := fr.at(h.Pos)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" class="%s"/>
`, x, y, handleRadius, handleClass(h.Kind)))
	}

	if opts.Guide != nil {
		x, y := fr.at(*opts.Guide)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" class="guide"/>
`, x, y, guideRadius))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
