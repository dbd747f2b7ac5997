// Print a multistream index with unwrapped offsets, for verifying or
// repairing index files whose 32-bit offsets wrapped.
package main

import (
	"compress/bzip2"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/corpustools/wikicorpus"
	"github.com/dustin/go-humanize"
)

var chunks = flag.Bool("chunks", false,
	"Print per-stream offset,count summaries instead of entries")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [-chunks] wikipedia.index.bz2\n\nOptions:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error opening %v: %v", flag.Arg(0), err)
	}
	defer f.Close()

	if *chunks {
		dumpChunks(bzip2.NewReader(f))
		return
	}
	dumpEntries(bzip2.NewReader(f))
}

func dumpEntries(r io.Reader) {
	ir := wikicorpus.NewIndexReader(r)
	entries := int64(0)
	for {
		e, err := ir.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Error reading index: %v", err)
		}
		fmt.Println(e.String())
		entries++
	}
	log.Printf("Rewrote %s entries", humanize.Comma(entries))
}

func dumpChunks(r io.Reader) {
	isr, err := wikicorpus.NewIndexSummaryReader(r)
	if err != nil {
		log.Fatalf("Error reading index: %v", err)
	}
	streams := int64(0)
	for {
		offset, count, err := isr.Next()
		if err != nil && err != io.EOF {
			log.Fatalf("Error reading index: %v", err)
		}
		fmt.Printf("%v,%v\n", offset, count)
		streams++
		if err == io.EOF {
			break
		}
	}
	log.Printf("Summarized %s streams", humanize.Comma(streams))
}
