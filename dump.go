package wikicorpus

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// MainNamespace is the namespace id carrying encyclopedia articles.
const MainNamespace = "0"

const redirectPrefix = "#redirect"

// SiteInfo is the toplevel block describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// RawPage is a main-namespace, non-redirect page pulled from a dump,
// ready for parsing.
type RawPage struct {
	ID    string
	Title string
	Text  string
}

// Source emits filtered raw pages until io.EOF.  Streams are single
// pass and not restartable.
type Source interface {
	Next() (*RawPage, error)
	SiteInfo() SiteInfo
}

// MalformedDumpError means the dump stream itself is broken: structural
// XML damage or a page missing an element the format guarantees.  It is
// fatal for that stream; page boundaries cannot be recovered past it.
type MalformedDumpError struct {
	Detail string
	Err    error
}

func (e *MalformedDumpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed dump: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("malformed dump: %s", e.Detail)
}

func (e *MalformedDumpError) Unwrap() error { return e.Err }

// pageElement is the wire shape of one <page>.  Pointer fields
// distinguish an absent element from an empty one.
type pageElement struct {
	Title    *string `xml:"title"`
	Ns       *string `xml:"ns"`
	ID       *string `xml:"id"`
	Revision struct {
		Text *string `xml:"text"`
	} `xml:"revision"`
}

// Extractor streams filtered pages out of one dump document.  Only one
// page's XML subtree is held at a time, so dumps of any size stream in
// bounded memory.
type Extractor struct {
	siteInfo SiteInfo
	d        *xml.Decoder
	language string
	counters *Counters
}

// NewExtractor gets an extractor reading one dump document from the
// given reader.  Counters may be shared across extractors; nil gets a
// private set.
func NewExtractor(r io.Reader, language string, counters *Counters) (*Extractor, error) {
	d := xml.NewDecoder(r)
	if _, err := d.Token(); err != nil {
		return nil, &MalformedDumpError{Detail: "reading document root", Err: err}
	}

	si := SiteInfo{}
	if err := d.Decode(&si); err != nil {
		return nil, &MalformedDumpError{Detail: "decoding siteinfo", Err: err}
	}

	if counters == nil {
		counters = NewCounters()
	}
	return &Extractor{siteInfo: si, d: d, language: language, counters: counters}, nil
}

// SiteInfo reports the dump's toplevel site block.
func (e *Extractor) SiteInfo() SiteInfo { return e.siteInfo }

// Next gets the next main-namespace, non-redirect page, or io.EOF when
// the dump is exhausted.
func (e *Extractor) Next() (*RawPage, error) {
	for {
		pe := pageElement{}
		err := e.d.Decode(&pe)
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &MalformedDumpError{Detail: "decoding page element", Err: err}
		}
		rp, ok, err := filterPage(&pe, e.language, e.counters)
		if err != nil {
			return nil, err
		}
		if ok {
			return rp, nil
		}
	}
}

// filterPage applies the namespace and redirect policy.  Non-main
// namespaces are discarded silently; nil or redirect text counts as
// filtered-redirects; everything else counts as extracted and yields.
func filterPage(pe *pageElement, language string, counters *Counters) (*RawPage, bool, error) {
	if pe.Title == nil || pe.Ns == nil || pe.ID == nil {
		return nil, false, &MalformedDumpError{
			Detail: fmt.Sprintf("page %q missing a required element", derefString(pe.Title)),
		}
	}
	if *pe.Ns != MainNamespace {
		return nil, false, nil
	}
	text := pe.Revision.Text
	if text == nil || isRedirect(*text) {
		counters.Inc(language, EventFilteredRedirects)
		return nil, false, nil
	}
	counters.Inc(language, EventExtracted)
	return &RawPage{ID: *pe.ID, Title: *pe.Title, Text: *text}, true, nil
}

func isRedirect(text string) bool {
	return len(text) >= len(redirectPrefix) &&
		strings.EqualFold(text[:len(redirectPrefix)], redirectPrefix)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
