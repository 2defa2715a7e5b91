package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/loadstone/loadstone/internal/database"
	"github.com/loadstone/loadstone/internal/game"
)

// session bundles the per-invocation game handle: the cache, the load-order
// handler and the database facade over them.
type session struct {
	cache     *game.Cache
	loadOrder game.LoadOrderHandler
	db        *database.Database
}

var (
	manifestPath  string
	loadOrderPath string
)

// newSession builds a game handle from the current flag values. The plugin
// set comes from the manifest when one is given; a masterlist path whose
// file doesn't exist is skipped, whether it is the default or explicit.
func newSession(requirePlugins bool) (*session, error) {
	cache := game.NewCache()

	loadOrder, err := game.NewTextFileLoadOrder(loadOrderPath)
	if err != nil {
		return nil, err
	}

	if manifestPath != "" {
		manifest, err := game.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		for _, name := range manifest.Names() {
			if _, err := cache.LoadPlugin(manifest, name); err != nil {
				return nil, err
			}
		}
	} else if requirePlugins {
		return nil, fmt.Errorf("no plugin manifest given (use --manifest)")
	}

	db := database.New(dataDir, cache, loadOrder, getLogger())
	db.Progress = os.Stderr
	db.SetGameVersion(gameVersion)

	master := masterlistPath
	if _, err := os.Stat(master); err != nil {
		// A missing masterlist file is an empty masterlist; the update
		// command creates it on first fetch.
		getLogger().Warn("Masterlist file not found, continuing without it", "path", master)
		master = ""
	}
	if err := db.LoadLists(master, userlistPath); err != nil {
		return nil, err
	}

	return &session{cache: cache, loadOrder: loadOrder, db: db}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "Path to a plugin manifest file")
	rootCmd.PersistentFlags().StringVar(&loadOrderPath, "loadorder", filepath.Join(".", "plugins.txt"), "Path to the load order file")
}
