package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/soundscout/soundscout/core"
	"github.com/soundscout/soundscout/search"
)

func stringFlag(t *testing.T, cmd *cli.Command, name string) *cli.StringFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("command %s has no string flag %s", cmd.Name, name)
	return nil
}

func intFlag(t *testing.T, cmd *cli.Command, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("command %s has no int flag %s", cmd.Name, name)
	return nil
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := searchCommand()

	t.Run("db-path is required", func(t *testing.T) {
		f := stringFlag(t, cmd, "db-path")
		assert.True(t, f.Required)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		f := stringFlag(t, cmd, "embedding-host")
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
	})

	t.Run("embedding-model has default value", func(t *testing.T) {
		f := stringFlag(t, cmd, "embedding-model")
		assert.Equal(t, "embeddinggemma", f.Value)
	})

	t.Run("top-k has default value of 20", func(t *testing.T) {
		f := intFlag(t, cmd, "top-k")
		assert.Equal(t, 20, f.Value)
	})

	t.Run("mode defaults to hybrid", func(t *testing.T) {
		f := stringFlag(t, cmd, "mode")
		assert.Equal(t, "hybrid", f.Value)
	})

	t.Run("missing db-path fails", func(t *testing.T) {
		app := &cli.App{Name: "soundscout", Commands: []*cli.Command{searchCommand()}}
		err := app.Run([]string{"soundscout", "search", "kick drum"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db-path")
	})

	t.Run("missing query fails before opening the catalog", func(t *testing.T) {
		app := &cli.App{Name: "soundscout", Commands: []*cli.Command{searchCommand()}}
		err := app.Run([]string{"soundscout", "search", "--db-path", "/nonexistent"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("unknown mode fails before opening the catalog", func(t *testing.T) {
		app := &cli.App{Name: "soundscout", Commands: []*cli.Command{searchCommand()}}
		err := app.Run([]string{"soundscout", "search", "--db-path", "/nonexistent", "--mode", "sideways", "kick"})
		require.Error(t, err)
		assert.ErrorIs(t, err, search.ErrUnknownMode)
	})
}

func TestSavedCommandValidation(t *testing.T) {
	t.Run("run requires a name", func(t *testing.T) {
		app := &cli.App{Name: "soundscout", Commands: []*cli.Command{savedCommand()}}
		err := app.Run([]string{"soundscout", "saved", "run", "--db-path", "/nonexistent"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("delete requires a name", func(t *testing.T) {
		app := &cli.App{Name: "soundscout", Commands: []*cli.Command{savedCommand()}}
		err := app.Run([]string{"soundscout", "saved", "delete", "--db-path", "/nonexistent"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})
}

func TestReembedCommandFlags(t *testing.T) {
	cmd := reembedCommand()

	t.Run("db-path is required", func(t *testing.T) {
		f := stringFlag(t, cmd, "db-path")
		assert.True(t, f.Required)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		f := stringFlag(t, cmd, "embedding-host")
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
	})

	t.Run("batch-size has default value of 100", func(t *testing.T) {
		f := intFlag(t, cmd, "batch-size")
		assert.Equal(t, 100, f.Value)
	})

	t.Run("report-interval has default value of 100", func(t *testing.T) {
		f := intFlag(t, cmd, "report-interval")
		assert.Equal(t, 100, f.Value)
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		f := intFlag(t, cmd, "max-retries")
		assert.Equal(t, 3, f.Value)
	})

	t.Run("job defaults to reembed", func(t *testing.T) {
		f := stringFlag(t, cmd, "job")
		assert.Equal(t, "reembed", f.Value)
	})

	t.Run("missing db-path fails", func(t *testing.T) {
		app := &cli.App{Name: "soundscout", Commands: []*cli.Command{reembedCommand()}}
		err := app.Run([]string{"soundscout", "reembed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db-path")
	})
}

func TestProvenance(t *testing.T) {
	t.Run("both rankings", func(t *testing.T) {
		hit := &core.SearchHit{LexicalRank: 2, SemanticRank: 5}
		assert.Equal(t, "lexical #2 + semantic #5", provenance(hit))
	})

	t.Run("lexical only", func(t *testing.T) {
		hit := &core.SearchHit{LexicalRank: 1}
		assert.Equal(t, "lexical #1", provenance(hit))
	})

	t.Run("semantic only", func(t *testing.T) {
		hit := &core.SearchHit{SemanticRank: 3}
		assert.Equal(t, "semantic #3", provenance(hit))
	})

	t.Run("neither", func(t *testing.T) {
		assert.Equal(t, "", provenance(&core.SearchHit{}))
	})
}

func TestHitName(t *testing.T) {
	t.Run("asset present", func(t *testing.T) {
		hit := &core.SearchHit{Asset: &core.Asset{Filename: "kick_808.wav"}}
		assert.Equal(t, "kick_808.wav", hitName(hit))
	})

	t.Run("asset vanished", func(t *testing.T) {
		hit := &core.SearchHit{AssetId: 7}
		assert.Equal(t, "(asset 7 no longer in catalog)", hitName(hit))
	})
}

func TestLatestReport(t *testing.T) {
	t.Run("picks the most recent json file", func(t *testing.T) {
		dir := t.TempDir()
		older := filepath.Join(dir, "older.json")
		newer := filepath.Join(dir, "newer.json")
		require.NoError(t, os.WriteFile(older, []byte("{}"), 0644))
		require.NoError(t, os.WriteFile(newer, []byte("{}"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

		now := time.Now()
		require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
		require.NoError(t, os.Chtimes(newer, now, now))

		path, err := latestReport(dir)
		require.NoError(t, err)
		assert.Equal(t, newer, path)
	})

	t.Run("empty directory fails", func(t *testing.T) {
		_, err := latestReport(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no benchmark reports")
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := latestReport(filepath.Join(t.TempDir(), "gone"))
		require.Error(t, err)
	})
}

func TestPassLabel(t *testing.T) {
	assert.Equal(t, "PASS", passLabel(true))
	assert.Equal(t, "FAIL", passLabel(false))
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("default log level is info", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "info", level)
				return nil
			},
		}

		err := app.Run([]string{"test"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
