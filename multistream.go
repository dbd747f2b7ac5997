package wikicorpus

import (
	"compress/bzip2"
	"encoding/xml"
	"io"
	"os"
	"sync"
)

type indexChunk struct {
	offset int64
	count  int
}

// multiStreamSource pulls filtered pages out of a bz2 multistream dump
// by seeking workers to the chunk offsets named in the companion index
// file.  Chunks are independent bz2 streams, so workers decode in
// parallel.
type multiStreamSource struct {
	siteInfo SiteInfo
	language string
	counters *Counters

	chunks chan indexChunk
	pages  chan *RawPage
	errs   chan error
	quit   chan struct{}

	quitOnce sync.Once
	errOnce  sync.Once
	err      error
}

// NewIndexedSource gets a Source over a multistream dump plus its bz2
// index file, decoding with the given number of workers.
func NewIndexedSource(indexFile, dumpFile string, workers int, language string, counters *Counters) (Source, error) {
	if workers < 1 {
		workers = 1
	}
	if counters == nil {
		counters = NewCounters()
	}

	r, err := os.Open(dumpFile)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	d := xml.NewDecoder(bzip2.NewReader(r))
	if _, err := d.Token(); err != nil {
		return nil, &MalformedDumpError{Detail: "reading document root", Err: err}
	}
	si := SiteInfo{}
	if err := d.Decode(&si); err != nil {
		return nil, &MalformedDumpError{Detail: "decoding siteinfo", Err: err}
	}

	ms := &multiStreamSource{
		siteInfo: si,
		language: language,
		counters: counters,
		chunks:   make(chan indexChunk, 1000),
		pages:    make(chan *RawPage, 1000),
		errs:     make(chan error, workers+1),
		quit:     make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go ms.chunkWorker(dumpFile, &wg)
	}
	go ms.indexWorker(indexFile)
	go func() {
		wg.Wait()
		close(ms.pages)
	}()
	return ms, nil
}

func (ms *multiStreamSource) SiteInfo() SiteInfo { return ms.siteInfo }

// Close abandons the source: any worker parked on a full channel drains
// off and exits, releasing its dump file handle.  Callers that stop
// pulling from Next before io.EOF must call it.  Safe to call more than
// once and concurrently with Next.
func (ms *multiStreamSource) Close() error {
	ms.quitOnce.Do(func() { close(ms.quit) })
	return nil
}

// Next gets the next filtered page from any worker.  Page order across
// chunks is not preserved.
func (ms *multiStreamSource) Next() (*RawPage, error) {
	p, ok := <-ms.pages
	if !ok {
		ms.errOnce.Do(func() {
			select {
			case ms.err = <-ms.errs:
			default:
			}
		})
		if ms.err != nil {
			return nil, ms.err
		}
		return nil, io.EOF
	}
	return p, nil
}

func (ms *multiStreamSource) indexWorker(indexFile string) {
	defer close(ms.chunks)

	r, err := os.Open(indexFile)
	if err != nil {
		ms.errs <- err
		return
	}
	defer r.Close()

	isr, err := NewIndexSummaryReader(bzip2.NewReader(r))
	if err != nil {
		ms.errs <- err
		return
	}
	for {
		offset, count, err := isr.Next()
		select {
		case ms.chunks <- indexChunk{offset, count}:
		case <-ms.quit:
			return
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			ms.errs <- err
			return
		}
	}
}

// emit hands a page to the consumer unless the source was closed.
func (ms *multiStreamSource) emit(p *RawPage) bool {
	select {
	case ms.pages <- p:
		return true
	case <-ms.quit:
		return false
	}
}

func (ms *multiStreamSource) chunkWorker(dumpFile string, wg *sync.WaitGroup) {
	defer wg.Done()

	r, err := os.Open(dumpFile)
	if err != nil {
		ms.errs <- err
		r = nil
	}
	if r != nil {
		defer r.Close()
	}

	// Once a worker fails it keeps draining chunks so the index
	// goroutine never blocks on a full channel.
	failed := r == nil
	for chunk := range ms.chunks {
		if failed {
			continue
		}
		if _, err := r.Seek(chunk.offset, io.SeekStart); err != nil {
			ms.errs <- err
			failed = true
			continue
		}
		d := xml.NewDecoder(bzip2.NewReader(r))
		for i := 0; i < chunk.count && !failed; i++ {
			pe := pageElement{}
			err := d.Decode(&pe)
			if err == io.EOF {
				break
			}
			if err != nil {
				ms.errs <- &MalformedDumpError{Detail: "decoding page element", Err: err}
				failed = true
				break
			}
			rp, ok, err := filterPage(&pe, ms.language, ms.counters)
			if err != nil {
				ms.errs <- err
				failed = true
				break
			}
			if ok && !ms.emit(rp) {
				return
			}
		}
	}
}
