// Package store provides the per-display node store.
package store

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/jmylchreest/notchbar/internal/model"
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type     EventType
	Displays []model.DisplayID
	Count    int
}

type record struct {
	node model.Node
	seq  uint64
}

// Store holds the nodes of every display. Each node carries an insertion
// sequence number that breaks ties between siblings of equal position.
type Store struct {
	mu       sync.RWMutex
	displays map[model.DisplayID]map[string]*record
	seq      uint64

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		displays:    make(map[model.DisplayID]map[string]*record),
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// Apply applies a node event and returns the displays whose content changed.
func (s *Store) Apply(ev Event) ([]model.DisplayID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var (
		affected []model.DisplayID
		count    int
		err      error
	)
	switch ev.Type {
	case NodeAdded:
		err = s.add(ev.Display, ev.Node)
		affected, count = []model.DisplayID{ev.Display}, 1
	case NodeRemoved:
		var removed []string
		removed, err = s.remove(ev.Display, ev.Name)
		affected, count = []model.DisplayID{ev.Display}, len(removed)
	case NodeUpdated:
		err = s.update(ev.Display, ev.Node)
		affected, count = []model.DisplayID{ev.Display}, 1
	case NodeMoved:
		count, err = s.move(ev.Display, ev.To, ev.Node)
		affected = []model.DisplayID{ev.Display}
		if ev.To != ev.Display {
			affected = append(affected, ev.To)
		}
	case FullRefresh:
		s.refresh(ev.Display, ev.Nodes)
		affected, count = []model.DisplayID{ev.Display}, len(ev.Nodes)
	default:
		err = fmt.Errorf("unknown event type %d", ev.Type)
	}
	if err != nil {
		return nil, err
	}

	s.notifyChange(ChangeEvent{Type: ev.Type, Displays: affected, Count: count})
	return affected, nil
}

// Add appends a node to a display.
func (s *Store) Add(display model.DisplayID, n model.Node) error {
	n.Display = display
	_, err := s.Apply(Added(n))
	return err
}

// Remove deletes a node and all of its descendants from a display.
func (s *Store) Remove(display model.DisplayID, name string) error {
	_, err := s.Apply(Removed(display, name))
	return err
}

// Update replaces a node in place, keeping its insertion order.
func (s *Store) Update(display model.DisplayID, n model.Node) error {
	n.Display = display
	_, err := s.Apply(Updated(n))
	return err
}

// Move relocates a node and its descendants from one display to another.
func (s *Store) Move(from, to model.DisplayID, n model.Node) error {
	n.Display = to
	_, err := s.Apply(Moved(from, n))
	return err
}

// Refresh replaces every node of a display.
func (s *Store) Refresh(display model.DisplayID, nodes []model.Node) error {
	_, err := s.Apply(Refreshed(display, nodes))
	return err
}

func (s *Store) add(display model.DisplayID, n model.Node) error {
	nodes := s.displayNodes(display)
	if _, exists := nodes[n.Name]; exists {
		return fmt.Errorf("%w: %q on display %d", ErrNodeExists, n.Name, display)
	}
	n.Display = display
	s.seq++
	nodes[n.Name] = &record{node: n, seq: s.seq}
	return nil
}

func (s *Store) update(display model.DisplayID, n model.Node) error {
	rec, ok := s.displays[display][n.Name]
	if !ok {
		return fmt.Errorf("%w: %q on display %d", ErrNodeNotFound, n.Name, display)
	}
	n.Display = display
	rec.node = n
	return nil
}

// remove deletes name and its descendants in post-order and returns the
// removed names in deletion order.
func (s *Store) remove(display model.DisplayID, name string) ([]string, error) {
	nodes := s.displays[display]
	if _, ok := nodes[name]; !ok {
		return nil, fmt.Errorf("%w: %q on display %d", ErrNodeNotFound, name, display)
	}

	removed := subtree(nodes, name)
	for _, n := range removed {
		delete(nodes, n)
	}
	if len(nodes) == 0 {
		delete(s.displays, display)
	}
	return removed, nil
}

func (s *Store) move(from, to model.DisplayID, n model.Node) (int, error) {
	src := s.displays[from]
	if _, ok := src[n.Name]; !ok {
		return 0, fmt.Errorf("%w: %q on display %d", ErrNodeNotFound, n.Name, from)
	}
	if from == to {
		return 1, s.update(from, n)
	}
	dst := s.displayNodes(to)

	names := subtree(src, n.Name)
	for _, name := range names {
		if _, exists := dst[name]; exists {
			return 0, fmt.Errorf("%w: %q on display %d", ErrNodeExists, name, to)
		}
	}

	// Descendants keep their relative order on the destination display.
	recs := make([]*record, 0, len(names))
	for _, name := range names {
		recs = append(recs, src[name])
		delete(src, name)
	}
	if len(src) == 0 {
		delete(s.displays, from)
	}
	slices.SortFunc(recs, func(a, b *record) int { return cmp.Compare(a.seq, b.seq) })
	for _, rec := range recs {
		moved := rec.node
		if moved.Name == n.Name {
			moved = n
		}
		moved.Display = to
		s.seq++
		dst[moved.Name] = &record{node: moved, seq: s.seq}
	}
	return len(recs), nil
}

func (s *Store) refresh(display model.DisplayID, nodes []model.Node) {
	delete(s.displays, display)
	if len(nodes) == 0 {
		return
	}
	m := s.displayNodes(display)
	for _, n := range nodes {
		n.Display = display
		s.seq++
		m[n.Name] = &record{node: n, seq: s.seq}
	}
}

func (s *Store) displayNodes(display model.DisplayID) map[string]*record {
	nodes, ok := s.displays[display]
	if !ok {
		nodes = make(map[string]*record)
		s.displays[display] = nodes
	}
	return nodes
}

// subtree returns name and all of its descendants in post-order.
func subtree(nodes map[string]*record, name string) []string {
	children := make(map[string][]string)
	for _, rec := range nodes {
		if rec.node.HasParent() {
			children[rec.node.Parent] = append(children[rec.node.Parent], rec.node.Name)
		}
	}
	for _, c := range children {
		sort.Strings(c)
	}

	var out []string
	visited := make(map[string]bool)
	var walk func(n string)
	walk = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, c := range children[n] {
			walk(c)
		}
		out = append(out, n)
	}
	walk(name)
	return out
}

// Nodes returns the nodes of a display ordered by position, ties broken by
// insertion order.
func (s *Store) Nodes(display model.DisplayID) []model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*record, 0, len(s.displays[display]))
	for _, rec := range s.displays[display] {
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *record) int {
		if c := cmp.Compare(a.node.Position, b.node.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]model.Node, len(recs))
	for i, rec := range recs {
		out[i] = rec.node
	}
	return out
}

// Get returns the named node on a display.
func (s *Store) Get(display model.DisplayID, name string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.displays[display][name]
	if !ok {
		return model.Node{}, false
	}
	return rec.node, true
}

// Find returns the first node with the given name, searching displays in
// ascending id order.
func (s *Store) Find(name string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedDisplays() {
		if rec, ok := s.displays[id][name]; ok {
			return rec.node, true
		}
	}
	return model.Node{}, false
}

// Displays returns the ids of displays holding at least one node.
func (s *Store) Displays() []model.DisplayID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedDisplays()
}

func (s *Store) sortedDisplays() []model.DisplayID {
	ids := make([]model.DisplayID, 0, len(s.displays))
	for id := range s.displays {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Count returns the number of nodes on a display.
func (s *Store) Count(display model.DisplayID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.displays[display])
}

// Total returns the number of nodes across all displays.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, nodes := range s.displays {
		total += len(nodes)
	}
	return total
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription channel.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes the store and all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}

// notifyChange sends an event to all subscribers. Must be called with the lock held.
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// Errors
var (
	ErrStoreClosed  = storeError("store is closed")
	ErrNodeExists   = storeError("node already exists")
	ErrNodeNotFound = storeError("node not found")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
