package metadata

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/loadstone/loadstone/internal/xerr"
)

// DefaultGroup is the group plugins belong to when none is assigned. It is
// implicitly declared by every metadata list.
const DefaultGroup = "default"

// Group is a named bucket of plugins. The After names declare groups whose
// members load before this group's members.
type Group struct {
	Name  string   `yaml:"name"`
	After []string `yaml:"after,omitempty"`
}

// UnmarshalYAML rejects unknown keys before decoding.
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	if err := checkMappingKeys(node, "name", "after"); err != nil {
		return err
	}
	type rawGroup Group
	var raw rawGroup
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*g = Group(raw)
	return nil
}

// GroupGraph resolves the partial order the groups declare. Precedence is
// transitive: if A precedes B and B precedes C then members of A load before
// members of C.
type GroupGraph struct {
	// afterClosure maps a group name to the set of group names that
	// transitively precede it.
	afterClosure map[string]map[string]bool
}

// NewGroupGraph builds the transitive closure of the declared groups. It
// fails with UndefinedGroupError when an `after` entry names an undeclared
// group, and rejects cyclic declarations.
func NewGroupGraph(groups []Group) (*GroupGraph, error) {
	after := make(map[string][]string, len(groups)+1)
	after[DefaultGroup] = nil
	for _, g := range groups {
		if _, ok := after[g.Name]; ok && g.Name != DefaultGroup {
			return nil, fmt.Errorf("the group %q is declared twice", g.Name)
		}
		after[g.Name] = g.After
	}
	for name, deps := range after {
		for _, dep := range deps {
			if _, ok := after[dep]; !ok {
				return nil, &xerr.UndefinedGroupError{Group: dep}
			}
			if dep == name {
				return nil, fmt.Errorf("the group %q loads after itself", name)
			}
		}
	}

	g := &GroupGraph{afterClosure: make(map[string]map[string]bool, len(after))}
	for name := range after {
		closure := make(map[string]bool)
		if err := g.expand(name, after, closure, map[string]bool{name: true}); err != nil {
			return nil, err
		}
		g.afterClosure[name] = closure
	}
	return g, nil
}

func (g *GroupGraph) expand(name string, after map[string][]string, closure, path map[string]bool) error {
	for _, dep := range after[name] {
		if path[dep] {
			return fmt.Errorf("the group %q is part of a cyclic declaration", dep)
		}
		if closure[dep] {
			continue
		}
		closure[dep] = true
		path[dep] = true
		if err := g.expand(dep, after, closure, path); err != nil {
			return err
		}
		delete(path, dep)
	}
	return nil
}

// IsDeclared reports whether the named group exists.
func (g *GroupGraph) IsDeclared(name string) bool {
	_, ok := g.afterClosure[name]
	return ok
}

// Precedes reports whether members of group a load before members of
// group b.
func (g *GroupGraph) Precedes(a, b string) bool {
	if a == b {
		return false
	}
	return g.afterClosure[b][a]
}

// Names returns the declared group names in sorted order.
func (g *GroupGraph) Names() []string {
	names := make([]string, 0, len(g.afterClosure))
	for name := range g.afterClosure {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
