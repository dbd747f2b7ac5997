// Load a cleaned wikipedia corpus into MongoDB
package main

import (
	"compress/bzip2"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/corpustools/wikicorpus"
	"github.com/dustin/go-humanize"
	"gopkg.in/mgo.v2"
)

var proc = flag.Int("proc", 8, "How many insert workers to run.")
var file = flag.String("file", "", "The dump file (bz2 or plain xml).")
var cpus = flag.Int("cpus", runtime.NumCPU(), "Number of CPUs to use.")
var dburl = flag.String("dburl", "localhost", "The dburl(s). I.e. localhost.")
var language = flag.String("lang", "en", "Language tag for counters.")
var verbose = flag.Bool("v", false, "Verbose logging?")
var collection = flag.String("collection", "articles", "The collection to store cleaned articles in.")
var dbname = flag.String("dbname", "wp", "The database name to use.")

var wg sync.WaitGroup

// Titles are unique since the title is the URL path in wikimedia:
// My Title => My_Title
var titleIndex = mgo.Index{
	Key:        []string{"title"},
	Unique:     true,
	DropDups:   true,
	Background: true,
	Sparse:     true,
}

type article struct {
	ID     string `bson:"_id,omitempty"`
	PageID string `bson:"pageid"`
	Title  string `bson:"title"`
	Text   string `bson:"text"`
}

func recordHandler(db *mgo.Database, ch <-chan wikicorpus.CleanedRecord) {
	defer wg.Done()
	for rec := range ch {
		a := article{
			ID:     rec.Title,
			PageID: rec.ID,
			Title:  rec.Title,
			Text:   rec.Text,
		}
		err := db.C(*collection).Insert(&a)
		if err != nil {
			if mgo.IsDup(err) {
				if *verbose {
					log.Printf("Duplicate Key Error inserting %s", a.Title)
				}
			} else {
				log.Printf("Error inserting %s: %s", a.Title, err)
			}
		}
	}
}

func main() {
	flag.Parse()
	if *file == "" {
		log.Fatal("You must supply a dump file.")
	}
	runtime.GOMAXPROCS(*cpus)

	session, err := mgo.Dial(*dburl)
	if err != nil {
		log.Fatalf("Error connecting to mongodb: %v", err)
	}
	db := session.DB(*dbname)

	err = db.C(*collection).EnsureIndex(titleIndex)
	if err != nil {
		log.Fatal("Error creating title index", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(*file, ".bz2") {
		r = bzip2.NewReader(f)
	}

	p, err := wikicorpus.NewPipeline(wikicorpus.Config{Language: *language})
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}

	out, errs := p.Run(context.Background(), []io.Reader{r})

	ch := make(chan wikicorpus.CleanedRecord, 1000)
	for i := 0; i < *proc; i++ {
		wg.Add(1)
		go recordHandler(db, ch)
	}

	records := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(10000)
	for rec := range out {
		ch <- rec
		records++
		if records%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Printf("Loaded %s records total (%.2f/s)\n",
				humanize.Comma(records), float64(reportfreq)/d.Seconds())
			prev = now
		}
	}
	close(ch)
	wg.Wait()

	if err := <-errs; err != nil {
		log.Fatalf("Error processing dump: %v", err)
	}
	d := time.Since(start)
	log.Printf("Loaded %s records in %v (%.2f r/s)",
		humanize.Comma(records), d, float64(records)/d.Seconds())
}
