package wikicorpus

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
)

// CleanedRecord is one page's final corpus entry.
type CleanedRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Config carries every knob the pipeline needs.  It is passed in
// explicitly; nothing is read from package state.
type Config struct {
	// Language namespaces the counters.  Required.
	Language string
	// Workers sizes the parse/clean pool.  Defaults to NumCPU.
	Workers int
	// MaxShardBytes drives output sharding.  Defaults to
	// DefaultMaxShardBytes.
	MaxShardBytes int64
	// MaxTemplateDepth bounds wikitext nesting.  Defaults to
	// DefaultMaxTemplateDepth.
	MaxTemplateDepth int
}

// Pipeline wires extraction, parsing and cleaning across a worker
// pool and tallies every page's fate.
type Pipeline struct {
	cfg      Config
	counters *Counters
}

// NewPipeline validates the config and applies defaults.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Language == "" {
		return nil, errors.New("pipeline config needs a language tag")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxShardBytes <= 0 {
		cfg.MaxShardBytes = DefaultMaxShardBytes
	}
	if cfg.MaxTemplateDepth <= 0 {
		cfg.MaxTemplateDepth = DefaultMaxTemplateDepth
	}
	return &Pipeline{cfg: cfg, counters: NewCounters()}, nil
}

// Counters exposes the pipeline's tallies; safe to read concurrently
// with a run for progress, and stable once the run finishes.
func (p *Pipeline) Counters() *Counters { return p.counters }

// MaxShardBytes reports the configured shard budget for downstream
// partitioning.
func (p *Pipeline) MaxShardBytes() int64 { return p.cfg.MaxShardBytes }

// Run streams cleaned records from every input dump.
//
// One extraction goroutine per stream feeds a shared channel where
// pages from all inputs pool and redistribute across the worker pool,
// so parse/clean load spreads evenly however unevenly the inputs are
// sized.  Record order is unspecified.
//
// The record channel closes when all work is done or abandoned.  The
// error channel then delivers any per-stream fatal errors
// (MalformedDumpError, cancellation) and closes; per-page parser
// failures are counted, never surfaced.
func (p *Pipeline) Run(ctx context.Context, streams []io.Reader) (<-chan CleanedRecord, <-chan error) {
	sources := make([]func() (Source, error), 0, len(streams))
	for _, r := range streams {
		r := r
		sources = append(sources, func() (Source, error) {
			return NewExtractor(r, p.cfg.Language, p.counters)
		})
	}
	return p.run(ctx, sources)
}

// RunSources is Run for pre-built sources, such as indexed multistream
// readers.
func (p *Pipeline) RunSources(ctx context.Context, sources []Source) (<-chan CleanedRecord, <-chan error) {
	open := make([]func() (Source, error), 0, len(sources))
	for _, s := range sources {
		s := s
		open = append(open, func() (Source, error) { return s, nil })
	}
	return p.run(ctx, open)
}

func (p *Pipeline) run(ctx context.Context, open []func() (Source, error)) (<-chan CleanedRecord, <-chan error) {
	raw := make(chan *RawPage, 1000)
	out := make(chan CleanedRecord, 1000)
	errs := make(chan error, len(open))

	var extracting sync.WaitGroup
	for _, openSource := range open {
		extracting.Add(1)
		go func(openSource func() (Source, error)) {
			defer extracting.Done()
			src, err := openSource()
			if err != nil {
				errs <- err
				return
			}
			if c, ok := src.(io.Closer); ok {
				defer c.Close()
			}
			if err := drain(ctx, src, raw); err != nil {
				errs <- err
			}
		}(openSource)
	}

	var working sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		working.Add(1)
		go func() {
			defer working.Done()
			for page := range raw {
				rec, ok := p.Process(page)
				if !ok {
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		extracting.Wait()
		close(raw)
		working.Wait()
		close(out)
		close(errs)
	}()
	return out, errs
}

func drain(ctx context.Context, src Source, raw chan<- *RawPage) error {
	for {
		page, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		select {
		case raw <- page:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Process parses and cleans one page.  A parse failure or an empty
// post-clean text counts and drops the page; only survivors yield a
// record.
func (p *Pipeline) Process(page *RawPage) (CleanedRecord, bool) {
	doc, err := ParseDocument(page.Text, p.cfg.MaxTemplateDepth)
	if err != nil {
		p.counters.Inc(p.cfg.Language, EventParserError)
		return CleanedRecord{}, false
	}
	text := CleanDocument(doc)
	if text == "" {
		p.counters.Inc(p.cfg.Language, EventEmptyClean)
		return CleanedRecord{}, false
	}
	p.counters.Inc(p.cfg.Language, EventCleaned)
	return CleanedRecord{ID: page.ID, Title: page.Title, Text: text}, true
}

// Collect runs the pipeline to completion and gathers the output.  The
// first per-stream fatal error, if any, is returned alongside whatever
// was cleaned before it.
func (p *Pipeline) Collect(ctx context.Context, streams []io.Reader) ([]CleanedRecord, error) {
	out, errs := p.Run(ctx, streams)
	var records []CleanedRecord
	for rec := range out {
		records = append(records, rec)
	}
	return records, <-errs
}
