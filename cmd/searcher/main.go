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
	"log/slog"
	"os"
	"strings"

	"github.com/soundscout/soundscout"
)

// Smoke binary: search ./catalog_db for the args (or a default query)
// and dump the fused ranking.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(strings.Join(os.Args[1:], " ")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(query string) error {
	if query == "" {
		query = "rain"
	}

	engine, err := soundscout.New("./catalog_db")
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher()
	if err != nil {
		return err
	}

	result, err := searcher.Search(context.Background(), query)
	if err != nil {
		return err
	}

	fmt.Printf("%d hits for %q\n", len(result.Hits), query)
	for i, hit := range result.Hits {
		name := "?"
		if hit.Asset != nil {
			name = hit.Asset.Filename
		}
		fmt.Printf("%2d. %s  score=%.3f  id=%d\n", i+1, name, hit.Score, hit.AssetId)
	}
	return nil
}
