package game

import (
	"bufio"
	"os"
	"strings"

	"github.com/loadstone/loadstone/internal/xerr"
)

// LoadOrderHandler is the load-order library contract: the current active
// order, an activity predicate, and the ability to persist a new order.
type LoadOrderHandler interface {
	LoadOrder() []string
	ActivePlugins() []string
	IsActive(name string) bool
	SetLoadOrder(order []string) error
}

// TextFileLoadOrder reads and writes a plugins.txt-style file: one plugin
// per line, '#' lines ignored, every listed plugin active. A missing file
// is an empty order.
type TextFileLoadOrder struct {
	path   string
	names  []string
	active map[string]bool
}

// NewTextFileLoadOrder loads the order from path.
func NewTextFileLoadOrder(path string) (*TextFileLoadOrder, error) {
	lo := &TextFileLoadOrder{path: path, active: make(map[string]bool)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lo, nil
		}
		return nil, &xerr.FileAccessError{Path: path, Msg: "cannot read load order file"}
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lo.names = append(lo.names, line)
		lo.active[strings.ToLower(line)] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, &xerr.FileAccessError{Path: path, Msg: "cannot read load order file"}
	}
	return lo, nil
}

// LoadOrder returns the current order.
func (lo *TextFileLoadOrder) LoadOrder() []string { return lo.names }

// ActivePlugins returns the active plugins in load order.
func (lo *TextFileLoadOrder) ActivePlugins() []string { return lo.names }

// IsActive reports whether the named plugin is listed, case-insensitively.
func (lo *TextFileLoadOrder) IsActive(name string) bool {
	return lo.active[strings.ToLower(name)]
}

// SetLoadOrder persists a new order and replaces the in-memory one.
func (lo *TextFileLoadOrder) SetLoadOrder(order []string) error {
	var b strings.Builder
	for _, name := range order {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(lo.path, []byte(b.String()), 0644); err != nil {
		return &xerr.FileAccessError{Path: lo.path, Msg: "cannot write load order file"}
	}

	lo.names = append([]string(nil), order...)
	lo.active = make(map[string]bool, len(order))
	for _, name := range order {
		lo.active[strings.ToLower(name)] = true
	}
	return nil
}

var _ LoadOrderHandler = (*TextFileLoadOrder)(nil)
