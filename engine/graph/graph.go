package graph

import (
	"log/slog"
	"strings"
)

// Store holds the fact graph. It follows a single-writer lifecycle: a loader
// populates it in one pass, after which it is only read. A reload builds a
// fresh Store and swaps it in; an existing Store is never mutated while
// readers can see it, so no locking happens here.
type Store struct {
	log       *slog.Logger
	nodes     map[string]*node
	typeIndex map[NodeType][]string
	edgeCount int
}

type node struct {
	attrs Attrs
	out   []edge
	in    []edge
}

type edge struct {
	source   string
	target   string
	relation string
	attrs    map[string]any
}

// New creates an empty Store.
func New(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		log:       log,
		nodes:     make(map[string]*node),
		typeIndex: make(map[NodeType][]string),
	}
}

// AddNode inserts a node or overwrites the attributes of an existing one.
// The id is registered in the type index exactly once per type; overwriting
// with a record of a different type moves the id between buckets.
func (s *Store) AddNode(id string, attrs Attrs) {
	typ := attrs.NodeType()
	if existing, ok := s.nodes[id]; ok {
		if prev := existing.attrs.NodeType(); prev != typ {
			s.typeIndex[prev] = removeID(s.typeIndex[prev], id)
			s.typeIndex[typ] = append(s.typeIndex[typ], id)
		}
		existing.attrs = attrs
		return
	}
	s.nodes[id] = &node{attrs: attrs}
	s.typeIndex[typ] = append(s.typeIndex[typ], id)
}

// AddEdge inserts a labeled edge between two existing nodes. Multiple edges
// between the same pair are allowed. An edge referencing a missing endpoint
// is dropped with a warning, not an error.
func (s *Store) AddEdge(source, target, relation string, attrs map[string]any) {
	src, ok := s.nodes[source]
	if !ok {
		s.log.Warn("edge source does not exist, dropping edge", "source", source, "relation", relation)
		return
	}
	dst, ok := s.nodes[target]
	if !ok {
		s.log.Warn("edge target does not exist, dropping edge", "target", target, "relation", relation)
		return
	}
	e := edge{source: source, target: target, relation: relation, attrs: attrs}
	src.out = append(src.out, e)
	dst.in = append(dst.in, e)
	s.edgeCount++
}

// NodeDetails returns the node's type, attributes and both edge lists.
// The second return is false when the node does not exist.
func (s *Store) NodeDetails(id string) (Details, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Details{}, false
	}
	d := Details{
		ID:         id,
		Type:       n.attrs.NodeType(),
		Attributes: n.attrs.Fields(),
		Outgoing:   make([]OutgoingEdge, 0, len(n.out)),
		Incoming:   make([]IncomingEdge, 0, len(n.in)),
	}
	for _, e := range n.out {
		d.Outgoing = append(d.Outgoing, OutgoingEdge{Target: e.target, Relation: e.relation, Attributes: e.attrs})
	}
	for _, e := range n.in {
		d.Incoming = append(d.Incoming, IncomingEdge{Source: e.source, Relation: e.relation, Attributes: e.attrs})
	}
	return d, true
}

// FindNodesByType returns all nodes of the given type whose attributes
// satisfy every filter, in insertion order. String filters match when either
// value contains the other case-insensitively; other values must be equal.
// A filter key missing from a node's attributes fails the filter.
func (s *Store) FindNodesByType(typ NodeType, filters map[string]any) []Details {
	var results []Details
	for _, id := range s.typeIndex[typ] {
		d, ok := s.NodeDetails(id)
		if !ok {
			continue
		}
		if matchesFilters(d.Attributes, filters) {
			results = append(results, d)
		}
	}
	return results
}

// QueryByRelation returns detail records for every neighbor reachable from
// id over an edge with the given relation label, in the given direction.
func (s *Store) QueryByRelation(id, relation string, dir Direction) []Details {
	n, ok := s.nodes[id]
	if !ok {
		s.log.Warn("node does not exist", "id", id)
		return nil
	}
	var related []Details
	switch dir {
	case Outgoing:
		for _, e := range n.out {
			if e.relation != relation {
				continue
			}
			if d, ok := s.NodeDetails(e.target); ok {
				related = append(related, d)
			}
		}
	case Incoming:
		for _, e := range n.in {
			if e.relation != relation {
				continue
			}
			if d, ok := s.NodeDetails(e.source); ok {
				related = append(related, d)
			}
		}
	}
	return related
}

// FindPath enumerates all simple directed paths from source to target with
// at most maxLen edges. Worst case is exponential; acceptable only because
// the graph is small and callers keep the bound shallow.
func (s *Store) FindPath(source, target string, maxLen int) [][]string {
	if _, ok := s.nodes[source]; !ok {
		return nil
	}
	if _, ok := s.nodes[target]; !ok {
		return nil
	}
	var paths [][]string
	onPath := map[string]bool{source: true}
	s.walkPaths(source, target, maxLen, []string{source}, onPath, &paths)
	return paths
}

func (s *Store) walkPaths(current, target string, budget int, path []string, onPath map[string]bool, paths *[][]string) {
	if current == target {
		*paths = append(*paths, append([]string(nil), path...))
		return
	}
	if budget == 0 {
		return
	}
	for _, e := range s.nodes[current].out {
		if onPath[e.target] {
			continue
		}
		onPath[e.target] = true
		s.walkPaths(e.target, target, budget-1, append(path, e.target), onPath, paths)
		delete(onPath, e.target)
	}
}

// RelatedEntities explores the neighborhood of a node with a breadth-first
// walk, following edges in both directions, and groups discoveries by type.
// A global visited set guarantees each node appears at its first discovery
// depth only; the walk stops early once a level finds nothing new. The
// origin node is never part of the result, and types with no discoveries
// are absent from the map.
func (s *Store) RelatedEntities(id string, maxDepth int) map[NodeType][]Details {
	if _, ok := s.nodes[id]; !ok {
		s.log.Warn("node does not exist", "id", id)
		return map[NodeType][]Details{}
	}
	visited := map[string]bool{id: true}
	level := []string{id}
	byType := make(map[NodeType][]Details)

	for depth := 0; depth < maxDepth && len(level) > 0; depth++ {
		var next []string
		for _, current := range level {
			n := s.nodes[current]
			for _, e := range n.out {
				next = s.discover(e.target, visited, next, byType)
			}
			for _, e := range n.in {
				next = s.discover(e.source, visited, next, byType)
			}
		}
		level = next
	}
	return byType
}

func (s *Store) discover(id string, visited map[string]bool, next []string, byType map[NodeType][]Details) []string {
	if visited[id] {
		return next
	}
	visited[id] = true
	if d, ok := s.NodeDetails(id); ok {
		byType[d.Type] = append(byType[d.Type], d)
	}
	return append(next, id)
}

// Stats returns node and edge totals plus per-type node counts.
func (s *Store) Stats() Stats {
	byType := make(map[NodeType]int, len(s.typeIndex))
	for typ, ids := range s.typeIndex {
		byType[typ] = len(ids)
	}
	return Stats{
		TotalNodes:  len(s.nodes),
		TotalEdges:  s.edgeCount,
		NodesByType: byType,
	}
}

func matchesFilters(attrs map[string]any, filters map[string]any) bool {
	for key, want := range filters {
		have, ok := attrs[key]
		if !ok {
			return false
		}
		if !matchValue(want, have) {
			return false
		}
	}
	return true
}

// matchValue compares a filter value against a node attribute. Strings match
// on case-insensitive containment in either direction; numbers compare by
// value regardless of int/float representation; everything else must be
// exactly equal.
func matchValue(want, have any) bool {
	if ws, ok := want.(string); ok {
		hs, ok := have.(string)
		if !ok {
			return false
		}
		w, h := strings.ToLower(ws), strings.ToLower(hs)
		return strings.Contains(h, w) || strings.Contains(w, h)
	}
	if wf, ok := asFloat(want); ok {
		hf, ok := asFloat(have)
		return ok && wf == hf
	}
	return want == have
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
