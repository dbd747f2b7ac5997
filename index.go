package wikicorpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// IndexEntry is one line of a multistream dump index: where a page's
// bz2 stream starts in the data file, the page id, and the title.
type IndexEntry struct {
	StreamOffset int64
	PageID       int
	Title        string
}

func (e IndexEntry) String() string {
	return fmt.Sprintf("%v:%v:%v", e.StreamOffset, e.PageID, e.Title)
}

// IndexReader reads a multistream index line by line.  Offsets in older
// index files were written as 32-bit values and wrap; the reader
// assumes they were meant to be monotonic and unwraps them.
type IndexReader struct {
	s          *bufio.Scanner
	base       int64
	prevOffset int64
}

// NewIndexReader gets a multistream index reader.
func NewIndexReader(r io.Reader) *IndexReader {
	return &IndexReader{s: bufio.NewScanner(r)}
}

// Next gets the next index entry, or io.EOF.
func (ir *IndexReader) Next() (IndexEntry, error) {
	if !ir.s.Scan() {
		err := ir.s.Err()
		if err == nil {
			err = io.EOF
		}
		return IndexEntry{}, err
	}
	parts := strings.SplitN(ir.s.Text(), ":", 3)
	if len(parts) != 3 {
		return IndexEntry{}, errors.New("bad index record")
	}
	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, err
	}
	id, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return IndexEntry{}, err
	}
	if offset < ir.prevOffset {
		ir.base += 1 << 32
	}
	ir.prevOffset = offset
	return IndexEntry{
		StreamOffset: offset + ir.base,
		PageID:       int(id),
		Title:        parts[2],
	}, nil
}

// IndexSummaryReader collapses an index into (offset, page count) pairs,
// one per bz2 stream, for callers that schedule work by chunk rather
// than by article.
type IndexSummaryReader struct {
	index      *IndexReader
	prevOffset int64
	count      int
}

// NewIndexSummaryReader gets a summary reader over a stream of index
// lines.
func NewIndexSummaryReader(r io.Reader) (*IndexSummaryReader, error) {
	isr := &IndexSummaryReader{index: NewIndexReader(r)}
	first, err := isr.index.Next()
	if err != nil {
		return nil, err
	}
	isr.prevOffset = first.StreamOffset
	isr.count = 1
	return isr, nil
}

// Next gets the next stream offset and its page count.  The final chunk
// is returned together with io.EOF.
func (isr *IndexSummaryReader) Next() (offset int64, count int, err error) {
	for {
		e, err := isr.index.Next()
		if err != nil {
			offset, count = isr.prevOffset, isr.count
			isr.prevOffset, isr.count = 0, 0
			return offset, count, err
		}
		if e.StreamOffset != isr.prevOffset {
			offset, count = isr.prevOffset, isr.count
			isr.prevOffset, isr.count = e.StreamOffset, 1
			return offset, count, nil
		}
		isr.count++
	}
}
