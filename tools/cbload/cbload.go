// Load a cleaned wikipedia corpus into CouchBase
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/corpustools/wikicorpus"
	"github.com/couchbase/go-couchbase"
	"github.com/dustin/go-humanize"
)

var numWorkers = flag.Int("numWorkers", 8, "Number of page workers")
var language = flag.String("lang", "en", "Language tag for counters")

var wg sync.WaitGroup

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] wikipedia.index.bz2 wikipedia.xml.bz2\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

type Geo struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

type Article struct {
	PageID string   `json:"pageid"`
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Files  []string `json:"files,omitempty"`
	Links  []string `json:"links,omitempty"`
	Geo    *Geo     `json:"geo,omitempty"`
}

func doPage(db *couchbase.Bucket, p *wikicorpus.Pipeline, page *wikicorpus.RawPage) {
	rec, ok := p.Process(page)
	if !ok {
		return
	}
	article := Article{
		PageID: rec.ID,
		Title:  rec.Title,
		Text:   rec.Text,
		Files:  wikicorpus.FindFiles(page.Text),
		Links:  wikicorpus.FindLinks(page.Text),
	}
	if gl, err := wikicorpus.ParseCoords(page.Text); err == nil {
		article.Geo = &Geo{Type: "Feature"}
		article.Geo.Geometry.Type = "Point"
		article.Geo.Geometry.Coordinates = []float64{gl.Lon, gl.Lat}
	}
	if err := db.Set(rec.Title, 0, article); err != nil {
		log.Printf("Error setting %v: %v", rec.Title, err)
	}
}

func pageHandler(db *couchbase.Bucket, p *wikicorpus.Pipeline,
	ch <-chan *wikicorpus.RawPage) {
	defer wg.Done()
	for page := range ch {
		doPage(db, p, page)
	}
}

func main() {
	couchbaseServer := flag.String("couchbase", "http://localhost:8091/",
		"Couchbase URL")
	couchbaseBucket := flag.String("bucket", "default", "Couchbase bucket")
	procs := flag.Int("cpus", runtime.NumCPU(), "Number of CPUS to use")
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
	}
	runtime.GOMAXPROCS(*procs)

	db, err := couchbase.GetBucket(*couchbaseServer,
		"default", *couchbaseBucket)
	if err != nil {
		log.Fatalf("Error connecting to couchbase: %v", err)
	}

	p, err := wikicorpus.NewPipeline(wikicorpus.Config{Language: *language})
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}

	src, err := wikicorpus.NewIndexedSource(flag.Arg(0), flag.Arg(1),
		runtime.GOMAXPROCS(0), *language, p.Counters())
	if err != nil {
		log.Fatalf("Error initializing multistream source: %v", err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	log.Printf("Got site info:  %+v", src.SiteInfo())

	ch := make(chan *wikicorpus.RawPage, 1000)
	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go pageHandler(db, p, ch)
	}

	pages := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(1000)
	for err == nil {
		var page *wikicorpus.RawPage
		page, err = src.Next()
		if err == nil {
			ch <- page
		}

		pages++
		if pages%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Printf("Processed %s pages total (%.2f/s)",
				humanize.Comma(pages), float64(reportfreq)/d.Seconds())
			prev = now
		}
	}
	close(ch)
	wg.Wait()
	log.Printf("Ended with err after %v:  %v after %s pages",
		time.Since(start), err, humanize.Comma(pages))
	for k, v := range p.Counters().Snapshot() {
		log.Printf("  %s/%s: %s", k.Language, k.Event, humanize.Comma(v))
	}
}
