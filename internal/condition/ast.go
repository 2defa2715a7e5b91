package condition

// Context is the environment a parsed condition resolves against. The
// evaluator provides the real implementation; tests substitute fakes.
type Context interface {
	// File reports whether a plugin or data file exists.
	File(path string) (bool, error)
	// Active reports whether a plugin is in the active load order.
	Active(name string) (bool, error)
	// Many reports whether at least two data files match the regex.
	Many(pattern string) (bool, error)
	// ManyActive reports whether at least two active plugins match the regex.
	ManyActive(pattern string) (bool, error)
	// IsMaster reports whether the named plugin has its master flag set.
	IsMaster(name string) (bool, error)
	// Checksum reports whether the file's CRC-32 equals the literal.
	Checksum(path string, crc uint32) (bool, error)
	// Version compares the named plugin's version against the literal. An
	// empty name refers to the game executable.
	Version(name, version, comparator string) (bool, error)
}

// Node is one vertex of a parsed condition.
type Node interface {
	Eval(ctx Context) (bool, error)
}

type andNode struct {
	left, right Node
}

func (n andNode) Eval(ctx Context) (bool, error) {
	ok, err := n.left.Eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.Eval(ctx)
}

type orNode struct {
	left, right Node
}

func (n orNode) Eval(ctx Context) (bool, error) {
	ok, err := n.left.Eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.Eval(ctx)
}

type notNode struct {
	operand Node
}

func (n notNode) Eval(ctx Context) (bool, error) {
	ok, err := n.operand.Eval(ctx)
	return !ok, err
}

type fileNode struct{ path string }

func (n fileNode) Eval(ctx Context) (bool, error) { return ctx.File(n.path) }

type activeNode struct{ name string }

func (n activeNode) Eval(ctx Context) (bool, error) { return ctx.Active(n.name) }

type manyNode struct{ pattern string }

func (n manyNode) Eval(ctx Context) (bool, error) { return ctx.Many(n.pattern) }

type manyActiveNode struct{ pattern string }

func (n manyActiveNode) Eval(ctx Context) (bool, error) { return ctx.ManyActive(n.pattern) }

type isMasterNode struct{ name string }

func (n isMasterNode) Eval(ctx Context) (bool, error) { return ctx.IsMaster(n.name) }

type checksumNode struct {
	path string
	crc  uint32
}

func (n checksumNode) Eval(ctx Context) (bool, error) { return ctx.Checksum(n.path, n.crc) }

type versionNode struct {
	name       string
	version    string
	comparator string
}

func (n versionNode) Eval(ctx Context) (bool, error) {
	return ctx.Version(n.name, n.version, n.comparator)
}
