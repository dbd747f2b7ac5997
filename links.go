package wikicorpus

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// FindLinks finds all the wikilink targets within an article body.
// Unparseable markup yields no links rather than an error.
func FindLinks(text string) []string {
	rv := []string{}
	for _, wl := range articleWikilinks(text) {
		rv = append(rv, wl.Target)
	}
	return rv
}

// FindFiles finds all the File/Image references within an article body,
// with the namespace prefix stripped.
func FindFiles(text string) []string {
	rv := []string{}
	for _, wl := range articleWikilinks(text) {
		if !isMediaLink(wl.Target) {
			continue
		}
		if i := strings.Index(wl.Target, ":"); i >= 0 {
			rv = append(rv, strings.TrimSpace(wl.Target[i+1:]))
		}
	}
	return rv
}

func articleWikilinks(text string) []*Wikilink {
	doc, err := ParseDocument(text, DefaultMaxTemplateDepth)
	if err != nil {
		return nil
	}
	var matches []Node
	for _, sec := range doc.Flat() {
		collectNodes(sec.Body, func(n Node) bool {
			_, ok := n.(*Wikilink)
			return ok
		}, &matches)
	}
	rv := make([]*Wikilink, 0, len(matches))
	for _, n := range matches {
		rv = append(rv, n.(*Wikilink))
	}
	return rv
}

// URLForFile gets the wikimedia commons URL for the given named file.
func URLForFile(name string) string {
	name = strings.Replace(name, " ", "_", -1)
	m := md5.New()
	m.Write([]byte(name))
	h := hex.EncodeToString(m.Sum(nil))

	return "http://upload.wikimedia.org/wikipedia/commons/" +
		string(h[0]) + "/" + h[0:2] + "/" + url.QueryEscape(name)
}
