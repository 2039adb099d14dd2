package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ha1tch/anchorboard/pkg/diagram"
	"github.com/ha1tch/anchorboard/pkg/render"
)

func renderCmd(a *app) *cobra.Command {
	var (
		format    string
		output    string
		noHandles bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the diagram as PNG or SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Render.Format
			}
			opts := a.cfg.RenderOptions()
			opts.Handles = opts.Handles && !noHandles

			var buf bytes.Buffer
			switch format {
			case "svg":
				buf.WriteString(render.SVG(a.store, opts))
			case "png":
				if err := render.PNG(a.store, &buf, opts); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want png or svg)", format)
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			good.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: png or svg (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&noHandles, "no-handles", false, "Omit endpoint and waypoint markers")
	return cmd
}

func anchorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "anchors <node-id>",
		Short: "List the anchor positions of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, ok := a.store.Node(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", diagram.ErrUnknownNode, args[0])
			}
			g := a.store.Geometry()

			var rows [][]string
			for _, side := range diagram.Sides {
				for i := 0; i < g.Count(); i++ {
					p, err := diagram.ProjectAnchor(n, side, i, g)
					if err != nil {
						return err
					}
					rows = append(rows, []string{side.String(), strconv.Itoa(i), formatPoint(p)})
				}
			}

			out := cmd.OutOrStdout()
			brand.Fprintf(out, "%s", n.ID)
			fmt.Fprintf(out, " %q at %s, %gx%g\n", n.Label, formatPoint(n.Origin()), n.Width, n.Height)
			table(out, []string{"SIDE", "INDEX", "POSITION"}, rows)
			return nil
		},
	}
}

func snapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snap <x> <y>",
		Short: "Find the anchor a dragged endpoint would snap to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			snap, ok := a.cfg.Locator().FindClosestAnchor(p, a.store.Nodes())
			if !ok {
				warn.Fprintf(out, "no anchor within %g of %s: free point\n", a.cfg.Snap.Threshold, formatPoint(p))
				return nil
			}
			good.Fprintf(out, "%s", snap.Anchor)
			fmt.Fprintf(out, " at %s, distance %.2f\n", formatPoint(snap.Pos), snap.Dist)
			return nil
		},
	}
}

func insertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <conn-id> <x> <y>",
		Short: "Insert a waypoint where a click on a connection would put it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			idx, err := a.store.InsertWaypoint(args[0], p)
			if err != nil {
				return err
			}
			c, _ := a.store.Connection(args[0])
			path, err := diagram.ProjectConnection(c, a.store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			good.Fprintf(out, "inserted waypoint %d", idx)
			fmt.Fprintf(out, " into %s\n", c.ID)
			pts := make([]string, len(path))
			for i, q := range path {
				pts[i] = formatPoint(q)
			}
			subtle.Fprintln(out, "  path: "+strings.Join(pts, " -> "))
			return nil
		},
	}
}

func configCmd(a *app) *cobra.Command {
	var showPath bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showPath {
				fmt.Fprintln(out, a.configPath)
				return nil
			}
			subtle.Fprintf(out, "# %s\n", a.configPath)
			return toml.NewEncoder(out).Encode(a.cfg)
		},
	}
	cmd.Flags().BoolVar(&showPath, "path", false, "Print only the config file path")
	return cmd
}

func parsePoint(xs, ys string) (diagram.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return diagram.Point{}, fmt.Errorf("bad x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return diagram.Point{}, fmt.Errorf("bad y %q: %w", ys, err)
	}
	p := diagram.Point{X: x, Y: y}
	if !p.Finite() {
		return diagram.Point{}, fmt.Errorf("point (%s, %s): %w", xs, ys, diagram.ErrNonFinitePoint)
	}
	return p, nil
}

func formatPoint(p diagram.Point) string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
