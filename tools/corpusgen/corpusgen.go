// Generate a cleaned text corpus from wikipedia dump files.
//
// Records are written as JSON lines; counters and the shard plan are
// reported at the end.
package main

import (
	"compress/bzip2"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/corpustools/wikicorpus"
	"github.com/dustin/go-humanize"
)

var (
	numWorkers = flag.Int("workers", runtime.NumCPU(), "Number of parse/clean workers")
	language   = flag.String("lang", "en", "Language tag for counters")
	shardBytes = flag.Int64("shardbytes", wikicorpus.DefaultMaxShardBytes, "Max output shard size in bytes")
	outFile    = flag.String("o", "", "Output file (default stdout)")
)

func openDump(fn string) (io.Reader, *os.File, int64, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, 0, err
	}
	var r io.Reader = f
	if strings.HasSuffix(fn, ".bz2") {
		r = bzip2.NewReader(f)
	}
	return r, f, st.Size(), nil
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatalf("Need at least one dump file")
	}

	var streams []io.Reader
	var totalBytes int64
	for _, fn := range flag.Args() {
		r, f, size, err := openDump(fn)
		if err != nil {
			log.Fatalf("Error opening %v: %v", fn, err)
		}
		defer f.Close()
		streams = append(streams, r)
		totalBytes += size
	}

	p, err := wikicorpus.NewPipeline(wikicorpus.Config{
		Language:      *language,
		Workers:       *numWorkers,
		MaxShardBytes: *shardBytes,
	})
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}

	w := os.Stdout
	if *outFile != "" {
		w, err = os.Create(*outFile)
		if err != nil {
			log.Fatalf("Error creating %v: %v", *outFile, err)
		}
		defer w.Close()
	}
	enc := json.NewEncoder(w)

	out, errs := p.Run(context.Background(), streams)

	records := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(1000)
	for rec := range out {
		if err := enc.Encode(rec); err != nil {
			log.Fatalf("Error writing record %q: %v", rec.Title, err)
		}
		records++
		if records%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Printf("Cleaned %s pages total (%.2f/s)",
				humanize.Comma(records), float64(reportfreq)/d.Seconds())
			prev = now
		}
	}
	for err := range errs {
		log.Fatalf("Error processing dump: %v", err)
	}

	log.Printf("Cleaned %s pages in %v", humanize.Comma(records), time.Since(start))
	log.Printf("Would partition output into %d shards of at most %s bytes",
		wikicorpus.NumShards(totalBytes, *shardBytes),
		humanize.Comma(*shardBytes))
	for k, v := range p.Counters().Snapshot() {
		log.Printf("  %s/%s: %s", k.Language, k.Event, humanize.Comma(v))
	}
}
