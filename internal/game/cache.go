package game

import (
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loadstone/loadstone/internal/condition"
	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/xerr"
)

// Cache is the process-local state of one game handle: the loaded plugin
// snapshots, the memoised condition results and file CRCs, and the metadata
// list snapshots queries run against. It has a single owner and is not safe
// for concurrent use; callers serialise access per handle.
type Cache struct {
	plugins    map[string]*Plugin
	conditions map[string]bool
	crcs       map[string]uint32

	masterlist *metadata.Masterlist
	userlist   *metadata.MetadataList
}

// NewCache returns an empty cache with empty metadata lists installed.
func NewCache() *Cache {
	return &Cache{
		plugins:    make(map[string]*Plugin),
		conditions: make(map[string]bool),
		crcs:       make(map[string]uint32),
		masterlist: metadata.NewMasterlist(),
		userlist:   metadata.NewMetadataList(),
	}
}

// LoadPlugin inspects one file through the reader and caches its snapshot,
// replacing any previous snapshot of the same name.
func (c *Cache) LoadPlugin(reader PluginReader, path string) (*Plugin, error) {
	info, err := reader.ReadPlugin(path)
	if err != nil {
		return nil, err
	}
	plugin := NewPlugin(filepath.Base(path), info)
	c.AddPlugin(plugin)
	return plugin, nil
}

// AddPlugin caches a snapshot, keyed case-insensitively by name.
func (c *Cache) AddPlugin(plugin *Plugin) {
	c.plugins[strings.ToLower(plugin.Name())] = plugin
}

// Plugin returns the cached snapshot for the name, if any.
func (c *Cache) Plugin(name string) (*Plugin, bool) {
	p, ok := c.plugins[strings.ToLower(name)]
	return p, ok
}

// Plugins returns every cached snapshot in name order.
func (c *Cache) Plugins() []*Plugin {
	names := make([]string, 0, len(c.plugins))
	for name := range c.plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Plugin, 0, len(names))
	for _, name := range names {
		out = append(out, c.plugins[name])
	}
	return out
}

// ClearCachedPlugins drops every plugin snapshot.
func (c *Cache) ClearCachedPlugins() {
	c.plugins = make(map[string]*Plugin)
}

// GetPlugin adapts Plugin to the evaluator's view of the cache.
func (c *Cache) GetPlugin(name string) (condition.PluginView, bool) {
	p, ok := c.Plugin(name)
	if !ok {
		return nil, false
	}
	return p, true
}

// CachedCondition returns the memoised result for a condition string.
func (c *Cache) CachedCondition(cond string) (bool, bool) {
	result, ok := c.conditions[cond]
	return result, ok
}

// CacheCondition memoises a condition result for the current cache epoch.
func (c *Cache) CacheCondition(cond string, result bool) {
	c.conditions[cond] = result
}

// ClearCachedConditions starts a new cache epoch for condition results.
func (c *Cache) ClearCachedConditions() {
	c.conditions = make(map[string]bool)
}

// GetCRC returns the CRC-32 of the file at path, memoised for the life of
// the cache.
func (c *Cache) GetCRC(path string) (uint32, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	if crc, ok := c.crcs[path]; ok {
		return crc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, &xerr.FileAccessError{Path: path, Msg: "cannot read file for checksum"}
	}
	crc := crc32.ChecksumIEEE(data)
	c.crcs[path] = crc
	return crc, nil
}

// Masterlist returns the installed masterlist snapshot.
func (c *Cache) Masterlist() *metadata.Masterlist { return c.masterlist }

// SetMasterlist swaps in a new masterlist snapshot. Condition results are
// invalidated: the new list may carry different conditions over the same
// strings' on-disk state.
func (c *Cache) SetMasterlist(list *metadata.Masterlist) {
	c.masterlist = list
	c.ClearCachedConditions()
}

// Userlist returns the installed userlist snapshot.
func (c *Cache) Userlist() *metadata.MetadataList { return c.userlist }

// SetUserlist swaps in a new userlist snapshot.
func (c *Cache) SetUserlist(list *metadata.MetadataList) {
	c.userlist = list
}

var _ condition.Store = (*Cache)(nil)
