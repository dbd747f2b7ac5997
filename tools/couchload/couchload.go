// Load a cleaned wikipedia corpus into CouchDB
package main

import (
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/corpustools/wikicorpus"
	"github.com/dustin/go-couch"
	"github.com/dustin/go-humanize"
	"github.com/dustin/httputil"
)

var wg sync.WaitGroup

type Geo struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

type Article struct {
	ID     string   `json:"_id"`
	Rev    string   `json:"_rev,omitempty"`
	PageID string   `json:"pageid"`
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Files  []string `json:"files,omitempty"`
	Links  []string `json:"links,omitempty"`
	Geo    *Geo     `json:"geo,omitempty"`
}

func escapeTitle(in string) string {
	return strings.Replace(strings.Replace(in, "/", "%2f", -1),
		"+", "%2b", -1)
}

func resolveConflict(db *couch.Database, a *Article) {
	log.Printf("Resolving conflict on %s", a.ID)
	var prev Article
	err := db.Retrieve(escapeTitle(a.ID), &prev)
	if err != nil {
		log.Printf("  Error retrieving existing %v: %v", a.ID, err)
		return
	}
	if prev.Rev == "" {
		log.Printf("Got no rev from %v", a.ID)
		return
	}
	_, err = db.EditWith(a, a.ID, prev.Rev)
	if err != nil {
		log.Printf("  Error updating %v: %v", prev.ID, err)
	}
}

func doPage(db *couch.Database, p *wikicorpus.Pipeline, page *wikicorpus.RawPage) {
	defer wg.Done()
	rec, ok := p.Process(page)
	if !ok {
		return
	}
	article := Article{
		ID:     escapeTitle(rec.Title),
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

	_, _, err := db.Insert(&article)
	switch {
	case err == nil:
		// yay
	case httputil.IsHTTPStatus(err, 409):
		resolveConflict(db, &article)
	default:
		log.Printf("Error inserting %v: %v", article.ID, err)
	}
}

func pageHandler(db couch.Database, p *wikicorpus.Pipeline,
	ch <-chan *wikicorpus.RawPage) {
	for page := range ch {
		doPage(&db, p, page)
	}
}

func main() {
	dburl, idx, file := os.Args[1], os.Args[2], os.Args[3]

	db, err := couch.Connect(dburl)
	if err != nil {
		log.Fatalf("Error connecting to couchdb: %v", err)
	}

	p, err := wikicorpus.NewPipeline(wikicorpus.Config{Language: "en"})
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}

	src, err := wikicorpus.NewIndexedSource(idx, file,
		runtime.GOMAXPROCS(0), "en", p.Counters())
	if err != nil {
		log.Fatalf("Error initializing multistream source: %v", err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	log.Printf("Got site info:  %+v", src.SiteInfo())

	ch := make(chan *wikicorpus.RawPage, 1000)
	for i := 0; i < 20; i++ {
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
			wg.Add(1)
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
	wg.Wait()
	close(ch)
	log.Printf("Ended with err after %v:  %v after %s pages",
		time.Since(start), err, humanize.Comma(pages))
}
