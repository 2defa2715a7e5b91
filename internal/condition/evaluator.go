package condition

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/loadstone/loadstone/internal/xerr"
)

// PluginView is the slice of a loaded plugin the evaluator needs.
type PluginView interface {
	IsMaster() bool
	Version() string
	CRC() uint32
}

// Store is the cache borrow the evaluator resolves against: loaded plugins,
// memoised condition results and memoised file CRCs. The evaluator is the
// only component that touches the filesystem during a query, and the store
// is the only state it mutates.
type Store interface {
	GetPlugin(name string) (PluginView, bool)
	CachedCondition(condition string) (result, ok bool)
	CacheCondition(condition string, result bool)
	GetCRC(path string) (uint32, error)
}

// ActiveChecker is the load-order handler slice the evaluator needs.
type ActiveChecker interface {
	IsActive(name string) bool
	ActivePlugins() []string
}

// Evaluator resolves condition strings against one game's data directory,
// plugin cache and load order. Results are memoised in the store until the
// cache epoch ends.
type Evaluator struct {
	dataPath    string
	store       Store
	loadOrder   ActiveChecker
	gameVersion string
}

// NewEvaluator returns an evaluator reading the given data directory. The
// caller keeps ownership of the store; the evaluator only borrows it for
// the queries it serves.
func NewEvaluator(dataPath string, store Store, loadOrder ActiveChecker) *Evaluator {
	return &Evaluator{dataPath: dataPath, store: store, loadOrder: loadOrder}
}

// SetGameVersion supplies the version string version("") compares against.
func (e *Evaluator) SetGameVersion(version string) {
	e.gameVersion = version
}

// Evaluate parses and resolves a condition string. The empty condition is
// true. Identical strings share one cached result per cache epoch; errors
// are never cached.
func (e *Evaluator) Evaluate(condition string) (bool, error) {
	if condition == "" {
		return true, nil
	}
	if result, ok := e.store.CachedCondition(condition); ok {
		return result, nil
	}

	node, err := Parse(condition)
	if err != nil {
		return false, err
	}
	result, err := node.Eval(e)
	if err != nil {
		return false, err
	}
	e.store.CacheCondition(condition, result)
	return result, nil
}

// resolve maps a forward-slash data-relative path onto the filesystem.
func (e *Evaluator) resolve(path string) string {
	return filepath.Join(e.dataPath, filepath.FromSlash(path))
}

// File reports whether the path names a loaded plugin or an existing file
// under the data directory.
func (e *Evaluator) File(path string) (bool, error) {
	if _, ok := e.store.GetPlugin(path); ok {
		return true, nil
	}
	_, err := os.Stat(e.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &xerr.FileAccessError{Path: path, Msg: "cannot stat file"}
}

// Active consults the load-order handler.
func (e *Evaluator) Active(name string) (bool, error) {
	return e.loadOrder.IsActive(name), nil
}

// Many counts files under the data directory matching the regex, true when
// at least two match. The directory part of the pattern is literal; only
// the final component is a pattern.
func (e *Evaluator) Many(pattern string) (bool, error) {
	dir, base := splitRegexDir(pattern)
	re, err := regexp.Compile("(?i)^(?:" + base + ")$")
	if err != nil {
		return false, &xerr.ConditionSyntaxError{Condition: pattern, Msg: err.Error()}
	}

	entries, err := os.ReadDir(filepath.Join(e.dataPath, filepath.FromSlash(dir)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &xerr.FileAccessError{Path: dir, Msg: "cannot read directory"}
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if re.MatchString(entry.Name()) {
			count++
			if count >= 2 {
				return true, nil
			}
		}
	}
	return false, nil
}

// ManyActive counts active plugins matching the regex, true when at least
// two match.
func (e *Evaluator) ManyActive(pattern string) (bool, error) {
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
	if err != nil {
		return false, &xerr.ConditionSyntaxError{Condition: pattern, Msg: err.Error()}
	}
	count := 0
	for _, name := range e.loadOrder.ActivePlugins() {
		if re.MatchString(name) {
			count++
			if count >= 2 {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsMaster reports the master header flag of a loaded plugin. An unloaded
// name is not a master.
func (e *Evaluator) IsMaster(name string) (bool, error) {
	plugin, ok := e.store.GetPlugin(name)
	if !ok {
		return false, nil
	}
	return plugin.IsMaster(), nil
}

// Checksum compares the CRC-32 of a loaded plugin or data file against the
// literal. A missing file matches nothing.
func (e *Evaluator) Checksum(path string, crc uint32) (bool, error) {
	if plugin, ok := e.store.GetPlugin(path); ok {
		return plugin.CRC() == crc, nil
	}
	exists, err := e.File(path)
	if err != nil || !exists {
		return false, err
	}
	actual, err := e.store.GetCRC(e.resolve(path))
	if err != nil {
		return false, err
	}
	return actual == crc, nil
}

// Version compares the version of the named plugin (or of the game
// executable when the name is empty) against the literal under pseudosem
// ordering. A plugin without a parseable version counts as version zero; a
// missing plugin satisfies only the != comparator.
func (e *Evaluator) Version(name, version, comparator string) (bool, error) {
	var actual string
	if name == "" {
		actual = e.gameVersion
	} else {
		plugin, ok := e.store.GetPlugin(name)
		if !ok {
			exists, err := e.File(name)
			if err != nil {
				return false, err
			}
			if !exists {
				return comparator == "!=", nil
			}
			return false, &xerr.FileAccessError{Path: name,
				Msg: "cannot read the version of an unloaded plugin"}
		}
		actual = plugin.Version()
	}
	if actual == "" {
		actual = "0"
	}

	c := ComparePseudosem(actual, version)
	switch comparator {
	case "==":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case ">":
		return c > 0, nil
	case "<=":
		return c <= 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown comparator %q", comparator)
}

var _ Context = (*Evaluator)(nil)
