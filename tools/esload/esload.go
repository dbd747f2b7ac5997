// Load a cleaned wikipedia corpus into ElasticSearch
package main

import (
	"compress/bzip2"
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/corpustools/wikicorpus"
	"github.com/dustin/go-elasticsearch"
	"github.com/dustin/go-humanize"
	"github.com/dustin/httputil"
)

var wg = sync.WaitGroup{}

func recordHandler(u string, ch <-chan wikicorpus.CleanedRecord) {
	defer wg.Done()
	counter := 0
	es := elasticsearch.ElasticSearch{URL: u}
	bulkLoader := es.Bulk()

	for rec := range ch {
		counter++
		if counter > 1000 {
			bulkLoader.SendBatch()
			counter = 0
		}
		ui := elasticsearch.UpdateInstruction{
			Id:    rec.Title,
			Index: "wikipedia",
			Type:  "article",
			Body: map[string]interface{}{
				"pageid": rec.ID,
				"title":  rec.Title,
				"text":   rec.Text,
			},
		}
		bulkLoader.Update(&ui)
	}
	bulkLoader.Quit()
}

func checkES(u string) error {
	res, err := http.Get(u)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return httputil.HTTPError(res)
	}
	return nil
}

func main() {
	filename, esurl := os.Args[1], os.Args[2]

	if err := checkES(esurl); err != nil {
		log.Fatalf("Error checking elasticsearch at %v: %v", esurl, err)
	}

	f, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".bz2") {
		r = bzip2.NewReader(f)
	}

	p, err := wikicorpus.NewPipeline(wikicorpus.Config{Language: "en"})
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}

	out, errs := p.Run(context.Background(), []io.Reader{r})

	ch := make(chan wikicorpus.CleanedRecord, 1000)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go recordHandler(esurl, ch)
	}

	records := int64(0)
	start := time.Now()
	prev := start
	reportfreq := int64(1000)
	for rec := range out {
		ch <- rec
		records++
		if records%reportfreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Printf("Loaded %s records total (%.2f/s)",
				humanize.Comma(records), float64(reportfreq)/d.Seconds())
			prev = now
		}
	}
	close(ch)
	wg.Wait()

	if err := <-errs; err != nil {
		log.Fatalf("Error processing dump: %v", err)
	}
	log.Printf("Loaded %s records in %v", humanize.Comma(records),
		time.Since(start))
}
