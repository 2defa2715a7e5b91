// Package sorter computes load orders. It builds a directed graph over the
// installed plugins from the hard partition rules, the header master lists,
// the merged metadata and the group order, then emits a deterministic
// topological sort of it.
package sorter

import (
	"github.com/charmbracelet/log"

	"github.com/loadstone/loadstone/internal/game"
	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/xerr"
)

// Sorter sorts one plugin set at a time. It is stateless between calls.
type Sorter struct {
	log *log.Logger
}

// New returns a sorter logging through the given logger.
func New(logger *log.Logger) *Sorter {
	return &Sorter{log: logger}
}

// Sort returns a permutation of the installed plugins that satisfies the
// ordering rules. metadataFor must return the merged, condition-evaluated
// metadata for a plugin name; groups is the declared group order;
// currentOrder is the load order plugins are in now, used for stability.
//
// The output is fully determined by its inputs: two calls with identical
// inputs return identical orders.
func (s *Sorter) Sort(plugins []*game.Plugin, metadataFor func(name string) metadata.PluginMetadata,
	groups *metadata.GroupGraph, currentOrder []string) ([]string, error) {

	g := newPluginGraph(plugins, metadataFor, currentOrder)

	for i := range g.vertices {
		v := &g.vertices[i]
		if v.meta.IsGroupExplicit() && !groups.IsDeclared(v.meta.Group()) {
			return nil, &xerr.UndefinedGroupError{Group: v.meta.Group()}
		}
	}

	s.addHardEdges(g)
	if cycle := g.findCycle(); cycle != nil {
		return nil, cycle
	}

	s.addGroupEdges(g, groups)
	s.addTieBreakEdges(g)

	order := g.topoSort()
	s.log.Debug("Sorted plugins", "count", len(order))
	return order, nil
}

// addHardEdges applies the non-negotiable rules: the master partition, the
// header master lists, and the metadata load-after and requirement sets.
func (s *Sorter) addHardEdges(g *pluginGraph) {
	for i := range g.vertices {
		if !g.vertices[i].sortsAsMaster() {
			continue
		}
		for j := range g.vertices {
			if !g.vertices[j].sortsAsMaster() {
				g.addEdge(i, j, xerr.RuleMasterPartition)
			}
		}
	}

	for i := range g.vertices {
		v := &g.vertices[i]
		for _, master := range v.plugin.Masters() {
			if m, ok := g.vertexOf(master); ok {
				g.addEdge(m, i, xerr.RuleHeaderMaster)
			} else {
				s.log.Warn("Plugin has a missing master", "plugin", v.plugin.Name(), "master", master)
			}
		}
		for _, ref := range v.meta.LoadAfter() {
			if r, ok := g.vertexOf(ref.Name); ok {
				g.addEdge(r, i, xerr.RuleLoadAfter)
			}
		}
		for _, ref := range v.meta.Requirements() {
			if r, ok := g.vertexOf(ref.Name); ok {
				g.addEdge(r, i, xerr.RuleRequirement)
			}
		}
	}
}

// addGroupEdges applies the group order. Group edges are soft: any edge
// that would close a cycle against the edges already present is dropped,
// checked incrementally per candidate.
func (s *Sorter) addGroupEdges(g *pluginGraph, groups *metadata.GroupGraph) {
	for i := range g.vertices {
		for j := range g.vertices {
			if i == j {
				continue
			}
			if !groups.Precedes(g.vertices[i].meta.Group(), g.vertices[j].meta.Group()) {
				continue
			}
			if g.reaches(j, i) {
				s.log.Debug("Skipping group edge that would close a cycle",
					"from", g.vertices[i].plugin.Name(), "to", g.vertices[j].plugin.Name())
				continue
			}
			g.addEdge(i, j, xerr.RuleGroup)
		}
	}
}

// addTieBreakEdges totals the order over the pairs the previous rules left
// unordered. Higher global priority loads first, then higher priority, then
// the current load-order rank, then the case-insensitive name; the rank
// comparison is total, so every remaining antichain collapses and no cycle
// can form.
func (s *Sorter) addTieBreakEdges(g *pluginGraph) {
	for i := range g.vertices {
		for j := i + 1; j < len(g.vertices); j++ {
			if g.reaches(i, j) || g.reaches(j, i) {
				continue
			}
			if tieBreakBefore(&g.vertices[i], &g.vertices[j]) {
				g.addEdge(i, j, xerr.RuleTieBreak)
			} else {
				g.addEdge(j, i, xerr.RuleTieBreak)
			}
		}
	}
}

// tieBreakBefore reports whether a loads before b once every graph rule has
// had its say. Vertex ranks are distinct, so the comparison never ties.
func tieBreakBefore(a, b *vertex) bool {
	if c := a.meta.GlobalPriority().Compare(b.meta.GlobalPriority()); c != 0 {
		return c > 0
	}
	if c := a.meta.Priority().Compare(b.meta.Priority()); c != 0 {
		return c > 0
	}
	return a.rank < b.rank
}
