package sorter

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadstone/loadstone/internal/game"
	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/xerr"
)

func testSorter() *Sorter {
	return New(log.New(io.Discard))
}

func makePlugin(name string, master bool, masters ...string) *game.Plugin {
	return game.NewPlugin(name, &game.PluginInfo{IsMaster: master, Masters: masters})
}

// metaTable adapts a map of prepared records to the sorter's lookup.
func metaTable(records ...metadata.PluginMetadata) func(name string) metadata.PluginMetadata {
	byName := make(map[string]metadata.PluginMetadata, len(records))
	for _, r := range records {
		byName[r.LowercasedName()] = r
	}
	return func(name string) metadata.PluginMetadata {
		if r, ok := byName[metadata.NewPluginMetadata(name).LowercasedName()]; ok {
			return r
		}
		return metadata.NewPluginMetadata(name)
	}
}

func noGroups(t *testing.T) *metadata.GroupGraph {
	t.Helper()
	g, err := metadata.NewGroupGraph(nil)
	require.NoError(t, err)
	return g
}

func TestSortMastersBeforePluginsWithNameTieBreak(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("ModB.esp", false, "Base.esm"),
		makePlugin("ModA.esp", false),
		makePlugin("Base.esm", true),
	}

	order, err := testSorter().Sort(plugins, metaTable(), noGroups(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Base.esm", "ModA.esp", "ModB.esp"}, order)
}

func TestSortPriorityOverridesNameTieBreak(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("ModB.esp", false, "Base.esm"),
		makePlugin("ModA.esp", false),
		makePlugin("Base.esm", true),
	}

	modB := metadata.NewPluginMetadata("ModB.esp")
	modB.SetPriority(metadata.NewPriority(10))
	modB.MarkUserSet()

	order, err := testSorter().Sort(plugins, metaTable(modB), noGroups(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Base.esm", "ModB.esp", "ModA.esp"}, order)
}

func TestSortGlobalPriorityBeatsPriority(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("ModA.esp", false),
		makePlugin("ModB.esp", false),
	}

	modA := metadata.NewPluginMetadata("ModA.esp")
	modA.SetPriority(metadata.NewPriority(100))
	modB := metadata.NewPluginMetadata("ModB.esp")
	modB.SetGlobalPriority(metadata.NewPriority(1))

	order, err := testSorter().Sort(plugins, metaTable(modA, modB), noGroups(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ModB.esp", "ModA.esp"}, order)
}

func TestSortReportsCycles(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("Base.esm", true),
		makePlugin("ModA.esp", false),
		makePlugin("ModB.esp", false, "Base.esm"),
	}

	modA := metadata.NewPluginMetadata("ModA.esp")
	modA.SetLoadAfter([]metadata.File{metadata.NewFile("ModB.esp")})
	modB := metadata.NewPluginMetadata("ModB.esp")
	modB.SetLoadAfter([]metadata.File{metadata.NewFile("ModA.esp")})

	_, err := testSorter().Sort(plugins, metaTable(modA, modB), noGroups(t), nil)

	var cycle *xerr.CyclicInteractionError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, xerr.CodeCyclicInteraction, cycle.Code())

	require.Len(t, cycle.Cycle, 2)
	names := []string{cycle.Cycle[0].Name, cycle.Cycle[1].Name}
	assert.ElementsMatch(t, []string{"ModA.esp", "ModB.esp"}, names)
	for _, v := range cycle.Cycle {
		assert.Equal(t, xerr.RuleLoadAfter, v.OutRule)
	}
}

func TestSortGroupOrder(t *testing.T) {
	groups, err := metadata.NewGroupGraph([]metadata.Group{
		{Name: "A"},
		{Name: "B", After: []string{"A"}},
	})
	require.NoError(t, err)

	plugins := []*game.Plugin{
		makePlugin("P.esp", false),
		makePlugin("Q.esp", false),
	}

	p := metadata.NewPluginMetadata("P.esp")
	p.SetGroup("B")
	q := metadata.NewPluginMetadata("Q.esp")
	q.SetGroup("A")

	order, err := testSorter().Sort(plugins, metaTable(p, q), groups, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q.esp", "P.esp"}, order)
}

func TestSortGroupEdgesAreSoft(t *testing.T) {
	groups, err := metadata.NewGroupGraph([]metadata.Group{
		{Name: "A"},
		{Name: "B", After: []string{"A"}},
	})
	require.NoError(t, err)

	// The header master edge X -> Y contradicts the group order, which
	// wants Y (group A) before X (group B); the group edge must yield.
	plugins := []*game.Plugin{
		makePlugin("X.esp", false),
		makePlugin("Y.esp", false, "X.esp"),
	}

	x := metadata.NewPluginMetadata("X.esp")
	x.SetGroup("B")
	y := metadata.NewPluginMetadata("Y.esp")
	y.SetGroup("A")

	order, err := testSorter().Sort(plugins, metaTable(x, y), groups, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"X.esp", "Y.esp"}, order)
}

func TestSortUndefinedGroup(t *testing.T) {
	plugins := []*game.Plugin{makePlugin("P.esp", false)}
	p := metadata.NewPluginMetadata("P.esp")
	p.SetGroup("ghost")

	_, err := testSorter().Sort(plugins, metaTable(p), noGroups(t), nil)

	var groupErr *xerr.UndefinedGroupError
	require.ErrorAs(t, err, &groupErr)
	assert.Equal(t, "ghost", groupErr.Group)
}

func TestSortKeepsCurrentOrderWhenRulesPermit(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("C.esp", false),
		makePlugin("A.esp", false),
		makePlugin("B.esp", false),
	}
	current := []string{"C.esp", "B.esp", "A.esp"}

	order, err := testSorter().Sort(plugins, metaTable(), noGroups(t), current)
	require.NoError(t, err)
	assert.Equal(t, current, order)
}

func TestSortMasterPartitionHolds(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("z.esm", true),
		makePlugin("a.esp", false),
		makePlugin("m.esm", true),
		makePlugin("light.esp", false),
		makePlugin("b.esp", false),
	}

	order, err := testSorter().Sort(plugins, metaTable(), noGroups(t), nil)
	require.NoError(t, err)
	require.Len(t, order, len(plugins))

	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	for _, master := range []string{"z.esm", "m.esm"} {
		for _, plugin := range []string{"a.esp", "light.esp", "b.esp"} {
			assert.Less(t, index[master], index[plugin])
		}
	}
}

func TestSortLightPluginsPartitionWithNonMasters(t *testing.T) {
	light := game.NewPlugin("Light.esl", &game.PluginInfo{IsMaster: true, IsLight: true})
	plugins := []*game.Plugin{
		light,
		makePlugin("Base.esm", true),
		makePlugin("Apple.esp", false),
	}

	order, err := testSorter().Sort(plugins, metaTable(), noGroups(t), nil)
	require.NoError(t, err)
	// The light flag moves the plugin to the non-master side, where names
	// break the tie.
	assert.Equal(t, []string{"Base.esm", "Apple.esp", "Light.esl"}, order)
}

func TestSortHeaderMastersRespected(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("Child.esp", false, "Parent.esp"),
		makePlugin("Parent.esp", false),
	}

	order, err := testSorter().Sort(plugins, metaTable(), noGroups(t), []string{"Child.esp", "Parent.esp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Parent.esp", "Child.esp"}, order)
}

func TestSortRequirementsOrder(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("Addon.esp", false),
		makePlugin("Lib.esp", false),
	}

	addon := metadata.NewPluginMetadata("Addon.esp")
	addon.SetRequirements([]metadata.File{metadata.NewFile("Lib.esp")})

	order, err := testSorter().Sort(plugins, metaTable(addon), noGroups(t), []string{"Addon.esp", "Lib.esp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lib.esp", "Addon.esp"}, order)
}

func TestSortIsDeterministic(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("Base.esm", true),
		makePlugin("Expansion.esm", true, "Base.esm"),
		makePlugin("ModC.esp", false, "Base.esm"),
		makePlugin("ModA.esp", false),
		makePlugin("ModB.esp", false, "Expansion.esm"),
		makePlugin("Patch.esp", false),
	}

	modA := metadata.NewPluginMetadata("ModA.esp")
	modA.SetPriority(metadata.NewPriority(5))
	patch := metadata.NewPluginMetadata("Patch.esp")
	patch.SetGlobalPriority(metadata.NewPriority(-10))

	current := []string{"Base.esm", "ModB.esp", "ModA.esp"}

	first, err := testSorter().Sort(plugins, metaTable(modA, patch), noGroups(t), current)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := testSorter().Sort(plugins, metaTable(modA, patch), noGroups(t), current)
		require.NoError(t, err)
		require.Equal(t, first, again, "sorting must be deterministic")
	}
}

func TestCycleReportIsSelfConsistent(t *testing.T) {
	plugins := []*game.Plugin{
		makePlugin("A.esp", false),
		makePlugin("B.esp", false),
		makePlugin("C.esp", false),
	}

	a := metadata.NewPluginMetadata("A.esp")
	a.SetLoadAfter([]metadata.File{metadata.NewFile("C.esp")})
	b := metadata.NewPluginMetadata("B.esp")
	b.SetLoadAfter([]metadata.File{metadata.NewFile("A.esp")})
	c := metadata.NewPluginMetadata("C.esp")
	c.SetRequirements([]metadata.File{metadata.NewFile("B.esp")})

	_, err := testSorter().Sort(plugins, metaTable(a, b, c), noGroups(t), nil)

	var cycle *xerr.CyclicInteractionError
	require.ErrorAs(t, err, &cycle)
	require.Len(t, cycle.Cycle, 3)

	// Every reported vertex appears exactly once and carries a rule tag.
	seen := make(map[string]bool)
	for _, v := range cycle.Cycle {
		assert.False(t, seen[v.Name])
		seen[v.Name] = true
		assert.NotEmpty(t, v.OutRule)
	}
}
