package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citegraph/internal/bib"
	"github.com/pdiddy/citegraph/internal/cache"
	"github.com/pdiddy/citegraph/internal/explore"
	"github.com/pdiddy/citegraph/internal/export"
	"github.com/pdiddy/citegraph/internal/semapi"
	"github.com/pdiddy/citegraph/internal/tags"
	"github.com/pdiddy/citegraph/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "citegraph/0.1"
	defaultCachePath = "citegraph.cache.db"

	apiKeySecret = "semantic-scholar-api-key"
)

var buildCmd = &cobra.Command{
	Use:   "build [paperId ...]",
	Short: "Explore the citation graph around seed papers",
	Long: `Build explores the citation network outward from seed papers and writes
the resulting graph. Exploration is budgeted: it stops after --size visited
papers or --max-requests live API calls, whichever comes first. Interrupting
a run (Ctrl-C) stops cleanly and still writes the partial graph.

Seeds are positional paper ids plus every --bib bibliography entry that
carries a recognizable identifier. Valid id forms include:

  S2 paper hash : 0796f6cd7f0403a854d67d525e9b32af3b277331
  DOI           : DOI:10.1038/nrn3241
  arXiv         : arXiv:1705.10311
  Corpus id     : CorpusID:37220927
  paper page    : https://www.semanticscholar.org/paper/<slug>/<hash>`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("bib", "b", "", "CSL-YAML bibliography whose entries seed and guide the exploration")
	buildCmd.Flags().String("tags", "", "YAML tag rules file for node styling")
	buildCmd.Flags().Int("size", 80, "visited-paper budget (0 keeps only the seeds)")
	buildCmd.Flags().Int("max-requests", 300, "live API request budget")
	buildCmd.Flags().Bool("citing", false, "also explore papers citing a visited paper")
	buildCmd.Flags().Float64("decay", 0.5, "per-hop score decay in [0,1)")
	buildCmd.Flags().StringP("format", "f", "dot", "output format: dot, gexf, or json")
	buildCmd.Flags().StringP("outfile", "o", "", "output path (default stdout)")
	buildCmd.Flags().String("cache", defaultCachePath, "response cache location")
	buildCmd.Flags().String("cache-backend", "sqlite", "cache store: sqlite, badger, or memory")
	buildCmd.Flags().Duration("cache-max-age", 0, "refetch cache entries older than this (0 means never)")
	buildCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	buildCmd.Flags().String("api-key", "", "Semantic Scholar API key (default: .secrets/"+apiKeySecret+")")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	var corpus *bib.Bibliography
	if path, _ := cmd.Flags().GetString("bib"); path != "" {
		corpus, err = bib.Load(path)
		if err != nil {
			return err
		}
		logger.Debug("bibliography loaded", "path", path, "entries", corpus.Len())
	}

	seeds := seedIDs(args, corpus)
	if len(seeds) == 0 {
		return fmt.Errorf("provide at least one paper id, or a bibliography whose entries carry identifiers")
	}

	rules, err := tagRules(cmd, corpus)
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}
	client := semapi.New(types.ProviderConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		APIKey:     secretDefault(apiKeySecret, apiKey),
	})

	maxAge, _ := cmd.Flags().GetDuration("cache-max-age")
	src := cache.NewSource(store, client, maxAge)
	src.Permanent = func(err error) bool { return errors.Is(err, semapi.ErrNotFound) }

	cfg := exploreConfig(cmd)
	eng := &explore.Engine{
		Cfg:    cfg,
		Source: src,
		Log:    logger,
	}
	if corpus != nil {
		eng.Corpus = corpus
	}
	eng.Progress = func(p explore.Progress) {
		fmt.Fprintf(os.Stderr, "[%d / %d / %d] (DOI %.2f) %s\n", p.Visited, cfg.MaxSize, p.Discovered, p.Score, p.Title)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := eng.Explore(ctx, seeds)
	if err != nil {
		return err
	}
	logger.Info("exploration finished",
		"stop", res.Stop,
		"visited", res.Visited,
		"requests", res.Requests,
		"failures", res.Failures,
		"nodes", res.Graph.Len(),
	)

	attrs := tags.Classify(res.Graph, rules)
	return writeGraph(cmd, format, res, attrs)
}

// exploreConfig builds the engine configuration from flags over the
// documented defaults.
func exploreConfig(cmd *cobra.Command) types.ExploreConfig {
	cfg := types.DefaultExploreConfig()
	cfg.MaxSize, _ = cmd.Flags().GetInt("size")
	cfg.MaxRequests, _ = cmd.Flags().GetInt("max-requests")
	cfg.Citing, _ = cmd.Flags().GetBool("citing")
	cfg.Decay, _ = cmd.Flags().GetFloat64("decay")
	return cfg
}

// seedIDs merges positional ids with the bibliography's identifiable
// entries, deduplicated in input order. Unparseable positional ids are
// dropped here and reported by the caller's empty-seeds check when nothing
// else remains.
func seedIDs(args []string, corpus *bib.Bibliography) []types.PaperID {
	var out []types.PaperID
	seen := make(map[types.PaperID]bool)
	add := func(id types.PaperID) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, a := range args {
		add(types.ParseID(a))
	}
	if corpus != nil {
		for _, id := range corpus.SeedIDs() {
			add(id)
		}
	}
	return out
}

// tagRules merges the built-in bibliography rules (when a bibliography is
// present) with the user's rules file. User rules come later, so they win
// on conflicting attribute keys.
func tagRules(cmd *cobra.Command, corpus *bib.Bibliography) (*tags.Rules, error) {
	var lists []*tags.Rules
	if corpus != nil {
		lists = append(lists, tags.Builtin())
	}
	if path, _ := cmd.Flags().GetString("tags"); path != "" {
		user, err := tags.Load(path)
		if err != nil {
			return nil, err
		}
		lists = append(lists, user)
	}
	return tags.Merge(lists...), nil
}

// writeGraph serializes the finished graph to --outfile, or stdout when the
// flag is empty.
func writeGraph(cmd *cobra.Command, format types.GraphFormat, res *explore.Result, attrs map[types.PaperID]tags.Attrs) error {
	outfile, _ := cmd.Flags().GetString("outfile")
	if outfile == "" {
		return export.Write(os.Stdout, format, res.Graph, attrs)
	}
	f, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := export.Write(f, format, res.Graph, attrs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
