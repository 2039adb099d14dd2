package diagram

// ChangeKind classifies a model notification.
type ChangeKind int

const (
	NodeAdded ChangeKind = iota
	NodeMoved
	NodeRemoved
	ConnectionAdded
	ConnectionChanged // endpoint rebound
	ConnectionRemoved
	WaypointAdded
	WaypointMoved
	WaypointRemoved
	SelectionChanged
	GuideShown  // snap guide visible at At
	GuideHidden // snap guide hidden
)

var changeNames = [...]string{
	NodeAdded:         "node-added",
	NodeMoved:         "node-moved",
	NodeRemoved:       "node-removed",
	ConnectionAdded:   "connection-added",
	ConnectionChanged: "connection-changed",
	ConnectionRemoved: "connection-removed",
	WaypointAdded:     "waypoint-added",
	WaypointMoved:     "waypoint-moved",
	WaypointRemoved:   "waypoint-removed",
	SelectionChanged:  "selection-changed",
	GuideShown:        "guide-shown",
	GuideHidden:       "guide-hidden",
}

func (k ChangeKind) String() string {
	if k >= 0 && int(k) < len(changeNames) {
		return changeNames[k]
	}
	return "unknown"
}

// Change is pushed to listeners after every mutation. Fields not relevant
// to Kind are zero; Index is -1 unless Kind is a waypoint change.
type Change struct {
	Kind   ChangeKind
	NodeID string
	ConnID string
	Index  int
	At     Point
}

// Listener receives changes synchronously, in mutation order.
type Listener func(Change)
