// Package database is the query surface over the merged masterlist and
// userlist metadata of one game.
package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/loadstone/loadstone/internal/condition"
	"github.com/loadstone/loadstone/internal/game"
	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/sorter"
	"github.com/loadstone/loadstone/internal/xerr"
)

// Database answers metadata queries for one game handle. It owns nothing
// itself: the cache belongs to the game handle and is borrowed for each
// query, so the handle must not be used from more than one goroutine.
type Database struct {
	cache     *game.Cache
	loadOrder game.LoadOrderHandler
	eval      *condition.Evaluator
	sorter    *sorter.Sorter
	log       *log.Logger

	// Progress receives transfer output during masterlist updates. Nil
	// disables it.
	Progress io.Writer
}

// New returns a database reading the given data directory through the
// game's cache and load-order handler.
func New(dataPath string, cache *game.Cache, loadOrder game.LoadOrderHandler, logger *log.Logger) *Database {
	return &Database{
		cache:     cache,
		loadOrder: loadOrder,
		eval:      condition.NewEvaluator(dataPath, cache, loadOrder),
		sorter:    sorter.New(logger),
		log:       logger,
	}
}

// SetGameVersion supplies the version that version("") conditions compare
// against.
func (d *Database) SetGameVersion(version string) {
	d.eval.SetGameVersion(version)
}

// LoadLists loads the masterlist and userlist from the given paths. Either
// path may be empty to skip that list; a non-empty path that does not exist
// is a FileAccessError. The lists already installed survive any failure.
func (d *Database) LoadLists(masterlistPath, userlistPath string) error {
	masterlist := metadata.NewMasterlist()
	userlist := metadata.NewMetadataList()

	if masterlistPath != "" {
		if err := masterlist.Load(masterlistPath); err != nil {
			return err
		}
	}
	if userlistPath != "" {
		if err := userlist.Load(userlistPath); err != nil {
			return err
		}
	}
	userlist.MarkUserSet()

	d.cache.SetMasterlist(masterlist)
	d.cache.SetUserlist(userlist)
	d.log.Debug("Loaded metadata lists", "masterlist", masterlistPath, "userlist", userlistPath)
	return nil
}

// checkOutputPath rejects output paths whose parent directory is missing
// and existing files the caller did not ask to overwrite.
func checkOutputPath(path string, overwrite bool) error {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return &xerr.InvalidArgumentError{Msg: "output directory does not exist: " + filepath.Dir(path)}
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return &xerr.InvalidArgumentError{Msg: "output file exists and overwrite is not set: " + path}
	}
	return nil
}

// WriteUserMetadata saves the userlist.
func (d *Database) WriteUserMetadata(path string, overwrite bool) error {
	if err := checkOutputPath(path, overwrite); err != nil {
		return err
	}
	return d.cache.Userlist().Save(path)
}

// WriteMinimalList saves a masterlist reduced to the plugins that carry tag
// suggestions or cleaning data, keeping only those two fields (and their
// conditions) per plugin.
func (d *Database) WriteMinimalList(path string, overwrite bool) error {
	if err := checkOutputPath(path, overwrite); err != nil {
		return err
	}

	minimal := metadata.NewMetadataList()
	for _, plugin := range d.cache.Masterlist().Plugins() {
		if len(plugin.Tags()) == 0 && len(plugin.DirtyInfo()) == 0 {
			continue
		}
		entry := metadata.NewPluginMetadata(plugin.Name())
		entry.SetTags(plugin.Tags())
		entry.SetDirtyInfo(plugin.DirtyInfo())
		if err := minimal.AddPlugin(entry); err != nil {
			return err
		}
	}
	return minimal.Save(path)
}

// UpdateMasterlist fetches the named branch of the remote repository into
// the masterlist path and reloads from it, reporting whether the on-disk
// file changed. On success the new masterlist replaces the old one
// atomically from the caller's point of view; on failure the installed one
// stays in effect.
func (d *Database) UpdateMasterlist(ctx context.Context, path, url, branch string) (bool, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return false, &xerr.InvalidArgumentError{
			Msg: "masterlist path has no valid parent directory: " + path}
	}

	masterlist := metadata.NewMasterlist()
	changed, err := masterlist.Update(ctx, path, url, branch, d.Progress)
	if err != nil {
		return false, err
	}
	d.cache.SetMasterlist(masterlist)
	d.log.Info("Masterlist updated", "path", path, "branch", branch, "changed", changed)
	return changed, nil
}

// GetMasterlistRevision reports the revision of the working copy holding
// the masterlist.
func (d *Database) GetMasterlistRevision(path string, short bool) (metadata.MasterlistInfo, error) {
	return metadata.GetInfo(path, short)
}

// IsLatestMasterlist reports whether the working copy is at the tip of the
// named branch.
func (d *Database) IsLatestMasterlist(ctx context.Context, path, branch string) (bool, error) {
	return metadata.IsLatest(ctx, path, branch)
}

// GetKnownBashTags returns the union of the two lists' known tag names.
func (d *Database) GetKnownBashTags() []string {
	tags := append(d.cache.Masterlist().BashTags(), d.cache.Userlist().BashTags()...)
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// GetGeneralMessages returns the masterlist's global messages followed by
// the userlist's. When evaluating, the condition cache is cleared first so
// the messages reflect the current on-disk state, and messages whose
// conditions fail are dropped.
func (d *Database) GetGeneralMessages(evaluateConditions bool) ([]metadata.Message, error) {
	messages := append([]metadata.Message(nil), d.cache.Masterlist().Messages()...)
	messages = append(messages, d.cache.Userlist().Messages()...)

	if !evaluateConditions {
		return messages, nil
	}

	d.cache.ClearCachedConditions()
	kept := messages[:0]
	for _, m := range messages {
		ok, err := m.EvalCondition(d.eval)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, m)
		}
	}
	return kept, nil
}

// GetPluginMetadata returns the masterlist entry for the plugin, merged
// with the userlist entry when asked. Evaluating resolves every
// condition-bearing sub-value and strips the condition strings from the
// returned copy.
func (d *Database) GetPluginMetadata(plugin string, includeUserMetadata, evaluateConditions bool) (metadata.PluginMetadata, error) {
	meta := d.cache.Masterlist().FindPlugin(plugin)
	if includeUserMetadata {
		meta.MergeMetadata(d.cache.Userlist().FindPlugin(plugin))
	}
	if evaluateConditions {
		return meta.EvalConditions(d.eval)
	}
	return meta, nil
}

// GetPluginUserMetadata returns the userlist entry for the plugin alone.
func (d *Database) GetPluginUserMetadata(plugin string, evaluateConditions bool) (metadata.PluginMetadata, error) {
	meta := d.cache.Userlist().FindPlugin(plugin)
	if evaluateConditions {
		return meta.EvalConditions(d.eval)
	}
	return meta, nil
}

// SetPluginUserMetadata replaces the user entry for the plugin. The entry
// replaces rather than merges with any prior user entry of the same name.
func (d *Database) SetPluginUserMetadata(pluginMetadata metadata.PluginMetadata) error {
	pluginMetadata.MarkUserSet()
	d.cache.Userlist().ErasePlugin(pluginMetadata.Name())
	return d.cache.Userlist().AddPlugin(pluginMetadata)
}

// DiscardPluginUserMetadata drops the user entry for the named plugin.
func (d *Database) DiscardPluginUserMetadata(plugin string) {
	d.cache.Userlist().ErasePlugin(plugin)
}

// DiscardAllUserMetadata drops the whole userlist.
func (d *Database) DiscardAllUserMetadata() {
	d.cache.Userlist().Clear()
}

// SortPlugins computes a load order for every plugin currently cached.
// Conditions are evaluated from scratch against the current on-disk state.
func (d *Database) SortPlugins() ([]string, error) {
	plugins := d.cache.Plugins()

	groups := append(append([]metadata.Group(nil), d.cache.Masterlist().Groups()...),
		d.cache.Userlist().Groups()...)
	groupGraph, err := metadata.NewGroupGraph(groups)
	if err != nil {
		return nil, err
	}

	d.cache.ClearCachedConditions()
	merged := make(map[string]metadata.PluginMetadata, len(plugins))
	for _, p := range plugins {
		meta, err := d.GetPluginMetadata(p.Name(), true, true)
		if err != nil {
			return nil, err
		}
		merged[strings.ToLower(p.Name())] = meta
	}

	return d.sorter.Sort(plugins, func(name string) metadata.PluginMetadata {
		if meta, ok := merged[strings.ToLower(name)]; ok {
			return meta
		}
		return metadata.NewPluginMetadata(name)
	}, groupGraph, d.loadOrder.LoadOrder())
}
