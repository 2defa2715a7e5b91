package sorter

import (
	"sort"
	"strings"

	"github.com/loadstone/loadstone/internal/game"
	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/xerr"
)

// vertex couples a plugin snapshot with its merged metadata and the rank
// the plugin holds in the current load order.
type vertex struct {
	plugin *game.Plugin
	meta   metadata.PluginMetadata
	rank   int
}

// sortsAsMaster reports which side of the master partition a plugin falls
// on. Light plugins partition with the non-masters.
func (v *vertex) sortsAsMaster() bool {
	return v.plugin.IsMaster() && !v.plugin.IsLightPlugin()
}

type edge struct {
	to   int
	rule xerr.EdgeRule
}

// pluginGraph is the sorter's working state: an adjacency list indexed by
// plugin index, with each edge tagged by the rule that produced it.
type pluginGraph struct {
	vertices []vertex
	edges    [][]edge
	present  map[[2]int]bool
	index    map[string]int
}

// newPluginGraph lays out the vertices in current-load-order rank, with
// plugins absent from the current order appended in name order.
func newPluginGraph(plugins []*game.Plugin, metadataFor func(name string) metadata.PluginMetadata, currentOrder []string) *pluginGraph {
	orderRank := make(map[string]int, len(currentOrder))
	for i, name := range currentOrder {
		orderRank[strings.ToLower(name)] = i
	}

	vertices := make([]vertex, 0, len(plugins))
	for _, p := range plugins {
		rank, inOrder := orderRank[strings.ToLower(p.Name())]
		if !inOrder {
			rank = len(currentOrder)
		}
		vertices = append(vertices, vertex{plugin: p, meta: metadataFor(p.Name()), rank: rank})
	}
	sort.SliceStable(vertices, func(i, j int) bool {
		if vertices[i].rank != vertices[j].rank {
			return vertices[i].rank < vertices[j].rank
		}
		return strings.ToLower(vertices[i].plugin.Name()) < strings.ToLower(vertices[j].plugin.Name())
	})
	for i := range vertices {
		vertices[i].rank = i
	}

	g := &pluginGraph{
		vertices: vertices,
		edges:    make([][]edge, len(vertices)),
		present:  make(map[[2]int]bool),
		index:    make(map[string]int, len(vertices)),
	}
	for i, v := range vertices {
		g.index[strings.ToLower(v.plugin.Name())] = i
	}
	return g
}

// vertexOf resolves a plugin name to its index, false when the plugin is
// not installed.
func (g *pluginGraph) vertexOf(name string) (int, bool) {
	i, ok := g.index[strings.ToLower(name)]
	return i, ok
}

// addEdge records from → to under the given rule. The first rule to claim
// a pair keeps it.
func (g *pluginGraph) addEdge(from, to int, rule xerr.EdgeRule) {
	if from == to || g.present[[2]int{from, to}] {
		return
	}
	g.present[[2]int{from, to}] = true
	g.edges[from] = append(g.edges[from], edge{to: to, rule: rule})
}

// reaches reports whether to is reachable from from along existing edges.
func (g *pluginGraph) reaches(from, to int) bool {
	if from == to {
		return true
	}
	seen := make([]bool, len(g.vertices))
	stack := []int{from}
	seen[from] = true
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.edges[v] {
			if e.to == to {
				return true
			}
			if !seen[e.to] {
				seen[e.to] = true
				stack = append(stack, e.to)
			}
		}
	}
	return false
}

// findCycle runs a depth-first traversal and reports the first cycle it
// finds, with every plugin in the cycle tagged by the rule of its outgoing
// edge. Returns nil when the graph is acyclic.
func (g *pluginGraph) findCycle() *xerr.CyclicInteractionError {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.vertices))

	type frame struct {
		v    int
		rule xerr.EdgeRule
	}
	var path []frame
	var cycle *xerr.CyclicInteractionError

	var visit func(v int) bool
	visit = func(v int) bool {
		color[v] = gray
		for _, e := range g.edges[v] {
			switch color[e.to] {
			case gray:
				// Walk the path back to the repeated vertex to collect the
				// cycle; each vertex carries the rule of the edge leaving it.
				start := 0
				for i := range path {
					if path[i].v == e.to {
						start = i
						break
					}
				}
				var vertices []xerr.CycleVertex
				for i := start; i < len(path); i++ {
					outRule := e.rule
					if i+1 < len(path) {
						outRule = path[i+1].rule
					}
					vertices = append(vertices, xerr.CycleVertex{
						Name:    g.vertices[path[i].v].plugin.Name(),
						OutRule: outRule,
					})
				}
				cycle = &xerr.CyclicInteractionError{Cycle: vertices}
				return true
			case white:
				path = append(path, frame{v: e.to, rule: e.rule})
				if visit(e.to) {
					return true
				}
				path = path[:len(path)-1]
			}
		}
		color[v] = black
		return false
	}

	for v := range g.vertices {
		if color[v] == white {
			path = append(path[:0], frame{v: v})
			if visit(v) {
				return cycle
			}
		}
	}
	return nil
}

// topoSort emits the reverse postorder of a depth-first traversal. The
// outer loop visits vertices in reverse load-order rank so that plugins
// left unconstrained keep their current relative order.
func (g *pluginGraph) topoSort() []string {
	visited := make([]bool, len(g.vertices))
	var postorder []int

	var visit func(v int)
	visit = func(v int) {
		visited[v] = true
		for _, e := range g.edges[v] {
			if !visited[e.to] {
				visit(e.to)
			}
		}
		postorder = append(postorder, v)
	}

	for v := len(g.vertices) - 1; v >= 0; v-- {
		if !visited[v] {
			visit(v)
		}
	}

	out := make([]string, len(postorder))
	for i, v := range postorder {
		out[len(postorder)-1-i] = g.vertices[v].plugin.Name()
	}
	return out
}
