// Copyright 2025 Soundscout Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/soundscout/soundscout"
	"github.com/soundscout/soundscout/ai"
	"github.com/soundscout/soundscout/ai/openai"
	"github.com/soundscout/soundscout/bench"
	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/reembed"
	"github.com/soundscout/soundscout/search"
	"github.com/soundscout/soundscout/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "soundscout",
		Usage: "Hybrid lexical and semantic search over a local media asset catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			searchCommand(),
			savedCommand(),
			reembedCommand(),
			benchCommand(),
			gateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func catalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db-path",
			Aliases:  []string{"d"},
			Usage:    "Path to the catalog database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "Embedding service API key (local servers ignore it)",
			Value: "none",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
}

func openEngine(c *cli.Context) (*soundscout.Engine, error) {
	engine, err := soundscout.New(c.String("db-path"),
		soundscout.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return engine, nil
}

// rankingFlags tune one search invocation. A --tuning file replaces
// the individual flags wholesale.
func rankingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "top-k",
			Aliases: []string{"k"},
			Usage:   "Maximum number of hits to return",
			Value:   20,
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Ranking mode: hybrid, lexical, or semantic",
			Value: "hybrid",
		},
		&cli.Float64Flag{
			Name:  "rrf-k",
			Usage: "Rank fusion smoothing constant",
			Value: 60,
		},
		&cli.Float64Flag{
			Name:  "lexical-weight",
			Usage: "Fusion weight of the lexical ranking",
			Value: 1.0,
		},
		&cli.Float64Flag{
			Name:  "semantic-weight",
			Usage: "Fusion weight of the semantic ranking",
			Value: 1.0,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-branch time budget",
			Value: 5 * time.Second,
		},
		&cli.StringFlag{
			Name:  "tuning",
			Usage: "YAML tuning file; overrides the individual ranking flags",
		},
	}
}

func searcherOptions(c *cli.Context) ([]search.Option, error) {
	if path := c.String("tuning"); path != "" {
		tuning, err := search.LoadTuning(path)
		if err != nil {
			return nil, err
		}
		return tuning.Options(), nil
	}

	timeout := c.Duration("timeout")
	return []search.Option{
		search.WithTopK(c.Int("top-k")),
		search.WithFusionConfig(search.FusionConfig{
			K:              c.Float64("rrf-k"),
			LexicalWeight:  c.Float64("lexical-weight"),
			SemanticWeight: c.Float64("semantic-weight"),
		}),
		search.WithBranchTimeouts(timeout, timeout),
	}, nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Rank the catalog against a query",
		ArgsUsage: "<query>",
		Flags: append(append(catalogFlags(), rankingFlags()...),
			&cli.StringFlag{
				Name:  "save",
				Usage: "Store the query under this name for later reuse",
			},
		),
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			rawQuery := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if rawQuery == "" {
				return fmt.Errorf("query is required")
			}

			mode, err := search.ParseMode(c.String("mode"))
			if err != nil {
				return err
			}

			engine, err := openEngine(c)
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := runSearch(ctx, engine, rawQuery, mode, c); err != nil {
				return err
			}

			if name := c.String("save"); name != "" {
				saved, err := engine.SavedSearches().SaveSearch(ctx, &core.SavedSearch{
					Name:  name,
					Query: rawQuery,
				})
				if err != nil {
					return fmt.Errorf("failed to save search: %w", err)
				}
				fmt.Printf("\nSaved as %q (id %d)\n", saved.Name, saved.Id)
			}
			return nil
		},
	}
}

func runSearch(ctx context.Context, engine *soundscout.Engine, rawQuery string, mode search.Mode, c *cli.Context) error {
	opts, err := searcherOptions(c)
	if err != nil {
		return err
	}
	searcher, err := engine.NewSearcher(opts...)
	if err != nil {
		return err
	}

	result, err := searcher.Search(ctx, rawQuery, search.WithMode(mode))
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(result *search.Result) {
	if result.Lexical.Err != nil {
		fmt.Fprintf(os.Stderr, "warning: lexical ranking unavailable: %v\n", result.Lexical.Err)
	}
	if result.Semantic.Err != nil {
		fmt.Fprintf(os.Stderr, "warning: semantic ranking unavailable: %v\n", result.Semantic.Err)
	}

	if len(result.Hits) == 0 {
		fmt.Println("No matches.")
		return
	}

	for i, hit := range result.Hits {
		fmt.Printf("%3d. %-44s %.4f  %s\n", i+1, hitName(hit), hit.Score, provenance(hit))
		if hit.Asset != nil {
			fmt.Printf("     %s  %s  %.1fs\n", hit.Asset.Path, hit.Asset.Format, hit.Asset.Duration)
		}
	}

	fmt.Printf("\n%d hits in %s (lexical %s, semantic %s, fuse %s)\n",
		len(result.Hits),
		result.TotalTime.Round(time.Microsecond),
		result.Lexical.Elapsed.Round(time.Microsecond),
		result.Semantic.Elapsed.Round(time.Microsecond),
		result.FuseTime.Round(time.Microsecond))
}

func hitName(hit *core.SearchHit) string {
	if hit.Asset == nil {
		return fmt.Sprintf("(asset %d no longer in catalog)", hit.AssetId)
	}
	return hit.Asset.Filename
}

func provenance(hit *core.SearchHit) string {
	switch {
	case hit.InBoth():
		return fmt.Sprintf("lexical #%d + semantic #%d", hit.LexicalRank, hit.SemanticRank)
	case hit.LexicalRank > 0:
		return fmt.Sprintf("lexical #%d", hit.LexicalRank)
	case hit.SemanticRank > 0:
		return fmt.Sprintf("semantic #%d", hit.SemanticRank)
	default:
		return ""
	}
}

func savedCommand() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage stored queries",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved searches",
				Flags: catalogFlags(),
				Action: func(c *cli.Context) error {
					ctx := context.Background()
					engine, err := openEngine(c)
					if err != nil {
						return err
					}
					defer engine.Close()

					searches, err := engine.SavedSearches().ListSavedSearches(ctx)
					if err != nil {
						return err
					}
					if len(searches) == 0 {
						fmt.Println("No saved searches.")
						return nil
					}

					for _, s := range searches {
						lastUsed := "never"
						if !s.LastUsed.IsZero() {
							lastUsed = s.LastUsed.Local().Format("2006-01-02 15:04")
						}
						fmt.Printf("%-24s uses %-4d last %-17s %s\n", s.Name, s.UseCount, lastUsed, s.Query)
					}
					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "Run a saved search by name",
				ArgsUsage: "<name>",
				Flags:     append(catalogFlags(), rankingFlags()...),
				Action: func(c *cli.Context) error {
					ctx := context.Background()

					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("saved search name is required")
					}

					mode, err := search.ParseMode(c.String("mode"))
					if err != nil {
						return err
					}

					engine, err := openEngine(c)
					if err != nil {
						return err
					}
					defer engine.Close()

					saved, err := engine.SavedSearches().GetSavedSearchByName(ctx, name)
					if err != nil {
						return fmt.Errorf("saved search %q: %w", name, err)
					}
					if _, err := engine.SavedSearches().TouchSavedSearch(ctx, saved.Id); err != nil {
						return err
					}

					fmt.Printf("Query: %s\n\n", saved.Query)
					return runSearch(ctx, engine, saved.Query, mode, c)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved search by name",
				ArgsUsage: "<name>",
				Flags:     catalogFlags(),
				Action: func(c *cli.Context) error {
					ctx := context.Background()

					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("saved search name is required")
					}

					engine, err := openEngine(c)
					if err != nil {
						return err
					}
					defer engine.Close()

					saved, err := engine.SavedSearches().GetSavedSearchByName(ctx, name)
					if err != nil {
						return fmt.Errorf("saved search %q: %w", name, err)
					}
					if err := engine.SavedSearches().DeleteSavedSearch(ctx, saved.Id); err != nil {
						return err
					}
					fmt.Printf("Deleted %q\n", name)
					return nil
				},
			},
		},
	}
}

func reembedCommand() *cli.Command {
	return &cli.Command{
		Name:  "reembed",
		Usage: "Fill in missing embeddings, or regenerate all of them",
		Flags: append(catalogFlags(),
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of assets to process in each batch",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  "report-interval",
				Usage: "Report progress every N assets",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Maximum retry attempts for failed operations",
				Value: 3,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: 1 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Reembed every asset, not just the ones missing vectors",
			},
			&cli.StringFlag{
				Name:  "job",
				Usage: "Checkpoint name; runs sharing a name resume each other",
				Value: "reembed",
			},
		),
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			dbPath := c.String("db-path")
			if dbPath == "" {
				return fmt.Errorf("database path is required")
			}

			backend, err := badger.OpenBackend(dbPath, false)
			if err != nil {
				return fmt.Errorf("failed to open catalog: %w", err)
			}
			defer backend.Close()

			repo, err := badger.NewAssetRepository(backend)
			if err != nil {
				return fmt.Errorf("failed to open asset repository: %w", err)
			}
			defer repo.Close()

			checkpoints := badger.NewCheckpointRepository(backend)

			aiConfig := aiConfigFromFlags(c)
			if err := aiConfig.Validate(); err != nil {
				return fmt.Errorf("invalid AI configuration: %w", err)
			}
			embedder, err := openai.NewEmbedder(aiConfig)
			if err != nil {
				return fmt.Errorf("failed to create embedder: %w", err)
			}

			config := &reembed.Config{
				BatchSize:      c.Int("batch-size"),
				ReportInterval: c.Int("report-interval"),
				MaxRetries:     c.Int("max-retries"),
				RetryDelay:     c.Duration("retry-delay"),
				All:            c.Bool("all"),
				JobName:        c.String("job"),
			}
			if config.BatchSize <= 0 {
				return fmt.Errorf("batch-size must be greater than 0")
			}
			if config.ReportInterval <= 0 {
				return fmt.Errorf("report-interval must be greater than 0")
			}
			if config.MaxRetries <= 0 {
				return fmt.Errorf("max-retries must be greater than 0")
			}

			fmt.Fprintf(os.Stderr, "Catalog: %s\n", dbPath)
			fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
			fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
			fmt.Fprintln(os.Stderr)

			reembedder := reembed.NewReembedder(repo, checkpoints, embedder, config, os.Stderr)
			if err := reembedder.Run(ctx); err != nil {
				return fmt.Errorf("reembedding failed: %w", err)
			}
			return nil
		},
	}
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Benchmark retrieval over a synthetic catalog and write a report",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "assets",
				Usage: "Number of synthetic assets",
				Value: 500,
			},
			&cli.IntFlag{
				Name:  "queries",
				Usage: "Number of benchmark queries",
				Value: 60,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Dataset generation seed",
				Value: 42,
			},
			&cli.IntFlag{
				Name:    "top-k",
				Aliases: []string{"k"},
				Usage:   "Hits per query",
				Value:   50,
			},
			&cli.StringFlag{
				Name:  "thresholds",
				Usage: "YAML file overriding the gate thresholds",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Report output path",
				Value:   "bench-report.json",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			thresholds := bench.DefaultThresholds()
			if path := c.String("thresholds"); path != "" {
				var err error
				thresholds, err = bench.LoadThresholds(path)
				if err != nil {
					return err
				}
			}

			harness := bench.NewHarness(bench.HarnessConfig{
				Assets:     c.Int("assets"),
				Queries:    c.Int("queries"),
				Seed:       c.Int64("seed"),
				TopK:       c.Int("top-k"),
				Thresholds: thresholds,
			}, slog.Default())

			report, err := harness.Run(ctx)
			if err != nil {
				return fmt.Errorf("benchmark failed: %w", err)
			}

			if err := report.Write(c.String("out")); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n\n", c.String("out"))
			printSummary(report.Summary, report.Thresholds)
			return nil
		},
	}
}

func gateCommand() *cli.Command {
	return &cli.Command{
		Name:  "gate",
		Usage: "Recompute the latest benchmark report and fail on regression",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory holding benchmark reports",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "thresholds",
				Usage: "YAML file overriding the report's stored thresholds",
			},
		},
		Action: func(c *cli.Context) error {
			path, err := latestReport(c.String("dir"))
			if err != nil {
				return err
			}

			report, err := bench.LoadReport(path)
			if err != nil {
				return err
			}

			thresholds := report.Thresholds
			if override := c.String("thresholds"); override != "" {
				thresholds, err = bench.LoadThresholds(override)
				if err != nil {
					return err
				}
			}

			// Judge the raw measurements, not the stored verdict
			summary := bench.Evaluate(report.Measurements, thresholds)

			fmt.Printf("Report: %s (generated %s)\n\n", path,
				report.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
			printSummary(summary, thresholds)

			if !summary.Passed {
				return cli.Exit("\nbenchmark gate failed", 1)
			}
			fmt.Println("\nbenchmark gate passed")
			return nil
		},
	}
}

// latestReport returns the most recently modified JSON file in dir.
func latestReport(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read report directory: %w", err)
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no benchmark reports in %s", dir)
	}
	return newest, nil
}

func printSummary(s bench.Summary, t bench.Thresholds) {
	fmt.Printf("Queries: %d (degraded %d)\n", s.Queries, s.Degraded)
	fmt.Printf("Lexical  p50 %7.2fms  p95 %7.2fms\n", s.Lexical.P50MS, s.Lexical.P95MS)
	fmt.Printf("Semantic p50 %7.2fms  p95 %7.2fms\n", s.Semantic.P50MS, s.Semantic.P95MS)
	fmt.Printf("Fuse     p50 %7.2fms  p95 %7.2fms  %s (limit %.0fms)\n",
		s.Fuse.P50MS, s.Fuse.P95MS, passLabel(s.FusePass), t.FuseP95MS)
	fmt.Printf("Total    p50 %7.2fms  p95 %7.2fms  %s (limit %.0fms)\n",
		s.Total.P50MS, s.Total.P95MS, passLabel(s.TotalPass), t.TotalP95MS)
	fmt.Printf("Overlap  mean %.3f              %s (floor %.2f)\n",
		s.MeanOverlap, passLabel(s.OverlapPass), t.MinMeanOverlap)
}

func passLabel(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// setupLogger installs a stderr text handler at the level named by the
// log-level flag.
func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
