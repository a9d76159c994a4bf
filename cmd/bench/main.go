package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/tagnote"
)

// bench measures whole-collection persistence: every Add rewrites the full
// notes document, so write cost grows with the collection.
func main() {
	count := flag.Int("count", 500, "Number of notes to add")
	keep := flag.Bool("keep", false, "Keep the benchmark vaults after running")
	versioning := flag.Bool("versioning", false, "Commit every write with git (fs only)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, adapter := range []string{"memory", "bolt", "fs"} {
		dir, err := os.MkdirTemp("", "tagnote_bench_")
		if err != nil {
			panic(err)
		}

		opts := []tagnote.Option{
			tagnote.WithAdapter(adapter),
			tagnote.WithAutoInit(true),
			tagnote.WithLogger(logger),
		}
		if adapter == "fs" {
			opts = append(opts, tagnote.WithVersioning(*versioning))
		}

		run(adapter, dir, *count, opts)

		if *keep {
			fmt.Printf("Keeping bench dir: %s\n", dir)
		} else {
			os.RemoveAll(dir)
		}
	}
}

func run(adapter, dir string, count int, opts []tagnote.Option) {
	ctx := context.Background()

	app, err := tagnote.New(dir, opts...)
	if err != nil {
		panic(err)
	}

	start := time.Now()
	for i := 0; i < count; i++ {
		tag := fmt.Sprintf("tag-%d", i%10)
		if _, err := app.Notes.Add(ctx, fmt.Sprintf("Note %d", i), "This is a benchmark note.", tag); err != nil {
			panic(err)
		}
	}
	addTook := time.Since(start)

	start = time.Now()
	app.Notes.Load(ctx)
	loadTook := time.Since(start)

	start = time.Now()
	changed, err := app.Notes.RetagAll(ctx, "tag-0", "tag-renamed")
	if err != nil {
		panic(err)
	}
	retagTook := time.Since(start)

	if err := app.Close(ctx); err != nil {
		panic(err)
	}

	fmt.Printf("%-6s add x%d: %v (%v/op), reload: %v, retag %d: %v\n",
		adapter, count, addTook, addTook/time.Duration(count), loadTook, changed, retagTook)
}
