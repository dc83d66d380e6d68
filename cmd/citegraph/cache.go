package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citegraph/internal/cache"
	"github.com/pdiddy/citegraph/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the response cache",
	Long: `Cache examines the response cache that build maintains. Entries are keyed
by paper id and fetch direction; negative entries record permanent fetch
failures so later runs do not retry them.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entry counts for the cache",
	RunE:  runCacheStats,
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <paperId>",
	Short: "Print the cached response for a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheGet,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cache entry",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.PersistentFlags().String("cache", defaultCachePath, "response cache location")
	cacheCmd.PersistentFlags().String("cache-backend", "sqlite", "cache store: sqlite, badger, or memory")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openStore opens the response cache store selected by --cache-backend.
func openStore(cmd *cobra.Command) (cache.Store, error) {
	backend, _ := cmd.Flags().GetString("cache-backend")
	path, _ := cmd.Flags().GetString("cache")

	switch types.CacheBackend(backend) {
	case types.CacheSQLite:
		return cache.NewSQLite(path)
	case types.CacheBadger:
		return cache.NewBadger(path, false)
	case types.CacheMemory:
		return cache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want sqlite, badger, or memory)", backend)
	}
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	var negative int
	for _, k := range keys {
		e, err := store.Get(k)
		if err != nil {
			return err
		}
		if e.Negative() {
			negative++
		}
	}
	fmt.Printf("entries: %d\nnegative: %d\n", len(keys), negative)
	return nil
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	id := types.ParseID(args[0])
	if id == "" {
		return fmt.Errorf("unrecognized paper id %q", args[0])
	}

	found := false
	for _, dir := range []types.Direction{types.DirReferences, types.DirBoth} {
		e, err := store.Get(cache.Key(id, dir))
		if errors.Is(err, cache.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		found = true
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	if !found {
		return fmt.Errorf("no cache entry for %s", id)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Len()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Printf("cleared %d entries\n", n)
	return nil
}
