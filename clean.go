package wikicorpus

import (
	"regexp"
	"strings"
)

// Template names whose transclusions are navigation/reference noise.
var removedTemplates = map[string]bool{
	"reflist":     true,
	"notelist":    true,
	"notelist-ua": true,
	"notelist-lr": true,
	"notelist-ur": true,
	"notelist-lg": true,
}

var mediaLinkPrefixes = []string{"file:", "image:", "media:"}

var (
	extLinkRE    = regexp.MustCompile(`\[(?:https?|ftp)://[^\s\]]*(?: ([^\]]*))?\]`)
	innerLinkRE  = regexp.MustCompile(`\[\[(?:[^|\[\]]*\|)?([^\[\]]*)\]\]`)
	listMarkerRE = regexp.MustCompile(`(?m)^[*#:;]+ *`)
	spaceRunRE   = regexp.MustCompile(`[ \t]+`)
	blankRunRE   = regexp.MustCompile(`\n{3,}`)
)

// CleanDocument strips references, tables, navigation templates and
// file/image links from every section, flattens each section to prose
// and joins the non-empty results with a blank line.
func CleanDocument(doc *Document) string {
	var parts []string
	for _, sec := range doc.Flat() {
		cleanSection(sec)
		// A section cleaning to nothing is skipped rather than
		// joined, so page text never begins or ends with
		// separator runs.
		if text := flattenSection(sec); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// cleanSection removes unwanted nodes at any depth.  Matches are
// collected first and detached after, so a match whose ancestor was
// already removed simply misses, which Section.Remove tolerates.
func cleanSection(sec *Section) {
	var doomed []Node
	collectNodes(sec.Body, removable, &doomed)
	for _, n := range doomed {
		sec.Remove(n)
	}
}

func removable(n Node) bool {
	switch v := n.(type) {
	case *Wikilink:
		return isMediaLink(v.Target)
	case *Template:
		return removedTemplates[strings.ToLower(strings.TrimSpace(v.Name))]
	case *Tag:
		return v.Name == "ref" || v.Name == "table"
	}
	return false
}

func isMediaLink(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	for _, p := range mediaLinkPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// flattenSection renders the surviving body to plain text.  Headings
// are structure, not content, and surviving templates have no prose
// rendering, so neither contributes.
func flattenSection(sec *Section) string {
	var sb strings.Builder
	flattenNodes(sec.Body, &sb)
	return stripResidualMarkup(sb.String())
}

func flattenNodes(nodes []Node, sb *strings.Builder) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Text:
			sb.WriteString(v.Value)
		case *Wikilink:
			if v.Display != "" {
				sb.WriteString(v.Display)
			} else {
				sb.WriteString(v.Target)
			}
		case *Tag:
			flattenNodes(v.Children, sb)
		case *Template, *Heading:
			// no prose rendering
		}
	}
}

// stripResidualMarkup clears the punctuation-level markup the tree does
// not model: bold/italic quotes, external link brackets, links embedded
// in raw display text, and list markers.
func stripResidualMarkup(s string) string {
	s = innerLinkRE.ReplaceAllString(s, "$1")
	s = extLinkRE.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "'''", "")
	s = strings.ReplaceAll(s, "''", "")
	s = listMarkerRE.ReplaceAllString(s, "")
	s = spaceRunRE.ReplaceAllString(s, " ")
	s = blankRunRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
