// Seeder fills ./catalog_db either from a file of media paths or with
// a synthetic corpus, so the other dev binaries have something to
// search.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/soundscout/soundscout"
	"github.com/soundscout/soundscout/bench"
	"github.com/soundscout/soundscout/core"
)

var (
	seedFileName = flag.String("src", "", "file of media paths, one per line")
	assetCount   = flag.Int("n", 200, "number of synthetic assets when no src file is given")
	seed         = flag.Int64("seed", 1, "synthetic corpus seed")
)

const ingestBatchSize = 5

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	assets, err := loadAssets()
	if err != nil {
		return err
	}

	engine, err := soundscout.New("./catalog_db")
	if err != nil {
		return err
	}
	defer engine.Close()

	ingester, err := engine.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer ingester.Release()

	ctx := context.Background()
	stored := 0
	for batch := range slices.Chunk(assets, ingestBatchSize) {
		added, err := ingester.Ingest(ctx, batch...)
		if err != nil {
			return err
		}
		stored += len(added)
	}

	slog.Info("catalog seeded", "assets", stored)
	return nil
}

// loadAssets reads media paths from -src, or falls back to a synthetic
// corpus of -n assets.
func loadAssets() ([]*core.Asset, error) {
	if *seedFileName != "" {
		return assetsFromFile(*seedFileName)
	}
	dataset := bench.GenerateDataset(bench.DatasetConfig{
		Assets: *assetCount,
		Seed:   *seed,
	})
	return dataset.Assets, nil
}

// assetsFromFile builds one asset per listed path. Only the path is
// known, so scalar metadata stays zero and a tag is guessed from the
// parent directory.
func assetsFromFile(filename string) ([]*core.Asset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var assets []*core.Asset
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}
		asset := &core.Asset{
			Path:     path,
			Filename: filepath.Base(path),
			Format:   core.NormalizeFormat(filepath.Ext(path)),
		}
		if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
			asset.Tags = []string{dir}
		}
		assets = append(assets, asset)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}
