package store

import "github.com/jmylchreest/notchbar/internal/model"

// EventType identifies a node mutation.
type EventType int

const (
	// NodeAdded appends a new node to a display.
	NodeAdded EventType = iota
	// NodeRemoved deletes a node and its descendants.
	NodeRemoved
	// NodeUpdated replaces a node in place without changing its order.
	NodeUpdated
	// NodeMoved relocates a node (and its descendants) to another display.
	NodeMoved
	// FullRefresh replaces every node of a display.
	FullRefresh
)

func (t EventType) String() string {
	switch t {
	case NodeAdded:
		return "added"
	case NodeRemoved:
		return "removed"
	case NodeUpdated:
		return "updated"
	case NodeMoved:
		return "moved"
	case FullRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Event is a node mutation applied to the store.
type Event struct {
	Type EventType
	// Display is the display the event targets. For NodeMoved it is the
	// source display.
	Display model.DisplayID
	// To is the destination display of a NodeMoved event.
	To model.DisplayID
	// Name is the node name for NodeRemoved.
	Name string
	// Node is the node payload for NodeAdded, NodeUpdated and NodeMoved.
	Node model.Node
	// Nodes is the replacement set for FullRefresh.
	Nodes []model.Node
}

// Added returns a NodeAdded event for n on n.Display.
func Added(n model.Node) Event {
	return Event{Type: NodeAdded, Display: n.Display, Name: n.Name, Node: n}
}

// Removed returns a NodeRemoved event.
func Removed(display model.DisplayID, name string) Event {
	return Event{Type: NodeRemoved, Display: display, Name: name}
}

// Updated returns a NodeUpdated event for n on n.Display.
func Updated(n model.Node) Event {
	return Event{Type: NodeUpdated, Display: n.Display, Name: n.Name, Node: n}
}

// Moved returns a NodeMoved event relocating n from one display to n.Display.
func Moved(from model.DisplayID, n model.Node) Event {
	return Event{Type: NodeMoved, Display: from, To: n.Display, Name: n.Name, Node: n}
}

// Refreshed returns a FullRefresh event.
func Refreshed(display model.DisplayID, nodes []model.Node) Event {
	return Event{Type: FullRefresh, Display: display, Nodes: nodes}
}
