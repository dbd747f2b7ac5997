package wikicorpus

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const testDump = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/" xml:lang="en">
  <siteinfo>
    <sitename>Testipedia</sitename>
    <base>https://en.wikipedia.org/wiki/Main_Page</base>
    <generator>MediaWiki 1.35</generator>
    <case>first-letter</case>
    <namespaces>
      <namespace key="0" case="first-letter" />
      <namespace key="1" case="first-letter">Talk</namespace>
    </namespaces>
  </siteinfo>
  <page>
    <title>Cat</title>
    <ns>0</ns>
    <id>1</id>
    <revision>
      <id>100</id>
      <text>A small animal.</text>
    </revision>
  </page>
  <page>
    <title>Talk:Cat</title>
    <ns>1</ns>
    <id>2</id>
    <revision><text>chatter</text></revision>
  </page>
  <page>
    <title>Feline</title>
    <ns>0</ns>
    <id>3</id>
    <revision><text>#REDIRECT [[Cat]]</text></revision>
  </page>
  <page>
    <title>Blanked</title>
    <ns>0</ns>
    <id>4</id>
    <revision></revision>
  </page>
  <page>
    <title>Dog</title>
    <ns>0</ns>
    <id>5</id>
    <revision><text>Loyal companion.</text></revision>
  </page>
</mediawiki>`

func TestExtractorFiltering(t *testing.T) {
	counters := NewCounters()
	e, err := NewExtractor(strings.NewReader(testDump), "en", counters)
	if err != nil {
		t.Fatalf("Error making extractor: %v", err)
	}

	if got := e.SiteInfo().SiteName; got != "Testipedia" {
		t.Errorf("Expected sitename Testipedia, got %q", got)
	}
	if got := len(e.SiteInfo().Namespaces); got != 2 {
		t.Errorf("Expected 2 namespaces, got %d", got)
	}

	var titles []string
	for {
		p, err := e.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Error reading page: %v", err)
		}
		titles = append(titles, p.Title)
	}
	want := []string{"Cat", "Dog"}
	if len(titles) != len(want) {
		t.Fatalf("Expected titles %v, got %v", want, titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("Expected titles %v, got %v", want, titles)
		}
	}

	if got := counters.Get("en", EventExtracted); got != 2 {
		t.Errorf("Expected 2 extracted, got %d", got)
	}
	// the redirect and the text-less page
	if got := counters.Get("en", EventFilteredRedirects); got != 2 {
		t.Errorf("Expected 2 filtered, got %d", got)
	}
}

func TestExtractorPageFields(t *testing.T) {
	e, err := NewExtractor(strings.NewReader(testDump), "en", nil)
	if err != nil {
		t.Fatalf("Error making extractor: %v", err)
	}
	p, err := e.Next()
	if err != nil {
		t.Fatalf("Error reading page: %v", err)
	}
	if p.ID != "1" || p.Title != "Cat" || p.Text != "A small animal." {
		t.Fatalf("Unexpected page %#v", p)
	}
}

func TestExtractorRedirectCaseInsensitive(t *testing.T) {
	const dump = `<mediawiki>
  <siteinfo><sitename>x</sitename></siteinfo>
  <page>
    <title>R1</title><ns>0</ns><id>1</id>
    <revision><text>#REDIRECT [[Other Page]]</text></revision>
  </page>
  <page>
    <title>R2</title><ns>0</ns><id>2</id>
    <revision><text>#redirect [[Other Page]]</text></revision>
  </page>
  <page>
    <title>R3</title><ns>0</ns><id>3</id>
    <revision><text>#Redirect [[Other Page]]</text></revision>
  </page>
</mediawiki>`
	counters := NewCounters()
	e, err := NewExtractor(strings.NewReader(dump), "en", counters)
	if err != nil {
		t.Fatalf("Error making extractor: %v", err)
	}
	if p, err := e.Next(); err != io.EOF {
		t.Fatalf("Expected io.EOF, got %v, %v", p, err)
	}
	if got := counters.Get("en", EventFilteredRedirects); got != 3 {
		t.Errorf("Expected 3 filtered redirects, got %d", got)
	}
	if got := counters.Get("en", EventExtracted); got != 0 {
		t.Errorf("Expected 0 extracted, got %d", got)
	}
}

func TestExtractorTruncatedDump(t *testing.T) {
	const dump = `<mediawiki>
  <siteinfo><sitename>x</sitename></siteinfo>
  <page><title>Broken</title>`
	e, err := NewExtractor(strings.NewReader(dump), "en", nil)
	if err != nil {
		t.Fatalf("Error making extractor: %v", err)
	}
	_, err = e.Next()
	var mde *MalformedDumpError
	if !errors.As(err, &mde) {
		t.Fatalf("Expected a MalformedDumpError, got %v", err)
	}
}

func TestExtractorMissingRequiredElement(t *testing.T) {
	const dump = `<mediawiki>
  <siteinfo><sitename>x</sitename></siteinfo>
  <page>
    <title>NoNamespace</title><id>9</id>
    <revision><text>hi</text></revision>
  </page>
</mediawiki>`
	e, err := NewExtractor(strings.NewReader(dump), "en", nil)
	if err != nil {
		t.Fatalf("Error making extractor: %v", err)
	}
	_, err = e.Next()
	var mde *MalformedDumpError
	if !errors.As(err, &mde) {
		t.Fatalf("Expected a MalformedDumpError, got %v", err)
	}
}

func TestExtractorGarbageInput(t *testing.T) {
	_, err := NewExtractor(strings.NewReader("total garbage"), "en", nil)
	var mde *MalformedDumpError
	if !errors.As(err, &mde) {
		t.Fatalf("Expected a MalformedDumpError, got %v", err)
	}
}
