package interact

import "testing"

func TestNext(t *testing.T) {
	down := func(kind TargetKind) PointerEvent {
		return PointerEvent{Phase: PhaseDown, Primary: true, Target: Target{Kind: kind}}
	}
	move := PointerEvent{Phase: PhaseMove, Primary: true}
	up := PointerEvent{Phase: PhaseUp, Primary: true}
	cancel := PointerEvent{Phase: PhaseCancel}
	secondary := PointerEvent{Phase: PhaseDown, Target: Target{Kind: TargetNode}}

	tests := []struct {
		from Mode
		ev   PointerEvent
		want Mode
		desc string
	}{
		{ModeIdle, down(TargetNode), ModeArmed, "node press arms"},
		{ModeIdle, down(TargetHandle), ModeArmed, "handle press arms"},
		{ModeIdle, down(TargetWaypoint), ModeArmed, "waypoint press arms"},
		{ModeIdle, down(TargetConnection), ModeClicking, "body press waits for click"},
		{ModeIdle, down(TargetBackground), ModeIdle, "background press stays idle"},
		{ModeIdle, secondary, ModeIdle, "secondary button ignored"},
		{ModeIdle, move, ModeIdle, "idle move"},
		{ModeIdle, up, ModeIdle, "idle release"},
		{ModeIdle, cancel, ModeIdle, "idle cancel"},
		{ModeArmed, move, ModeDragging, "first move starts dragging"},
		{ModeArmed, up, ModeIdle, "release without move"},
		{ModeArmed, cancel, ModeIdle, "cancel while armed"},
		{ModeArmed, down(TargetNode), ModeArmed, "second press ignored while armed"},
		{ModeDragging, move, ModeDragging, "keep dragging"},
		{ModeDragging, up, ModeIdle, "release ends drag"},
		{ModeDragging, cancel, ModeIdle, "cancel ends drag"},
		{ModeDragging, down(TargetWaypoint), ModeDragging, "second press ignored while dragging"},
		{ModeClicking, up, ModeIdle, "click completes"},
		{ModeClicking, move, ModeIdle, "move abandons click"},
		{ModeClicking, cancel, ModeIdle, "cancel abandons click"},
		{ModeClicking, down(TargetConnection), ModeClicking, "second press ignored while clicking"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := Next(tt.from, tt.ev); got != tt.want {
				t.Errorf("Next(%v, %v) = %v, want %v", tt.from, tt.ev.Phase, got, tt.want)
			}
		})
	}
}
