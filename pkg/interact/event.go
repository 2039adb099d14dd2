// Package interact turns normalized pointer events into drag sessions that
// mutate a diagram.Store.
//
// Mouse and touch input are indistinguishable here: the input layer
// converts raw events into PointerEvent values in the shared diagram space
// and classifies the target under the pointer at pointer-down.
package interact

import "github.com/ha1tch/anchorboard/pkg/diagram"

// Phase is the stage of a pointer gesture.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel // gesture interrupted by the platform; handled like PhaseUp
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	case PhaseCancel:
		return "cancel"
	}
	return "unknown"
}

// TargetKind classifies what was under the pointer at pointer-down.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	TargetNode
	TargetHandle     // connection endpoint handle
	TargetWaypoint   // waypoint handle
	TargetConnection // connection body, not a handle
)

// Target identifies the hit element. Only the fields relevant to Kind are set.
type Target struct {
	Kind   TargetKind
	NodeID string
	ConnID string
	End    diagram.End // TargetHandle
	Index  int         // TargetWaypoint
}

// Interactive reports whether pointer-down on t opens a drag session.
func (t Target) Interactive() bool {
	return t.Kind == TargetNode || t.Kind == TargetHandle || t.Kind == TargetWaypoint
}

// PointerEvent is one normalized pointer event.
type PointerEvent struct {
	Pos      diagram.Point // shared diagram space
	Primary  bool          // primary mouse button or a touch
	Modifier bool          // orthogonal-constraint / suppress-insert modifier
	Phase    Phase
	Target   Target // classified at PhaseDown only
}
