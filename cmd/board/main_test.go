package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/anchorboard/pkg/diagram"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAnchors(t *testing.T) {
	out, err := run(t, "anchors", "node-a")
	require.NoError(t, err)

	assert.Contains(t, out, `node-a "Person A" at (400, 300), 90x40`)
	assert.Contains(t, out, "top     0      (400, 300)")
	assert.Contains(t, out, "right   8      (490, 340)")
	assert.Equal(t, 4*9+3, strings.Count(out, "\n"), "header, rule and 36 rows")
}

func TestAnchorsUnknownNode(t *testing.T) {
	_, err := run(t, "anchors", "nope")
	assert.ErrorContains(t, err, "nope")
}

func TestSnap(t *testing.T) {
	out, err := run(t, "snap", "447", "306")
	require.NoError(t, err)
	assert.Contains(t, out, "node-a:top[4] at (445, 300)")

	out, err = run(t, "snap", "10", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "free point")

	_, err = run(t, "snap", "x", "10")
	assert.Error(t, err)
}

func TestInsert(t *testing.T) {
	out, err := run(t, "insert", "conn-1", "572", "260")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted waypoint 0 into conn-1")
	assert.Contains(t, out, "(445, 300) -> (572, 260) -> (700, 220)")

	_, err = run(t, "insert", "conn-9", "0", "0")
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		x, y    string
		wantErr bool
	}{
		{"572", "260", false},
		{"-1.5", "1e3", false},
		{"NaN", "0", true},
		{"0", "nan", true},
		{"Inf", "0", true},
		{"0", "-Inf", true},
		{"x", "0", true},
	}

	for _, tt := range tests {
		_, err := parsePoint(tt.x, tt.y)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePoint(%q, %q): error %v, wantErr %v", tt.x, tt.y, err, tt.wantErr)
		}
	}

	_, err := run(t, "insert", "conn-1", "NaN", "0")
	assert.ErrorIs(t, err, diagram.ErrNonFinitePoint)
}

func TestRenderSVGToStdout(t *testing.T) {
	out, err := run(t, "render", "--format", "svg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<polyline"))
}

func TestRenderPNGToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	out, err := run(t, "render", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestRenderBadFormat(t *testing.T) {
	_, err := run(t, "render", "--format", "gif")
	assert.ErrorContains(t, err, "unknown format")
}

func TestConfig(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "[snap]")
	assert.Contains(t, out, "threshold = 30.0")
}
