package wikicorpus

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxTemplateDepth bounds template/tag nesting so adversarial
// markup cannot run the parser away.
const DefaultMaxTemplateDepth = 40

// WikitextParseError reports markup a page cannot recover from, such as
// nesting past the configured depth bound.  Pages failing this way are
// dropped by the pipeline, not the whole run.
type WikitextParseError struct {
	Offset int
	Reason string
}

func (e *WikitextParseError) Error() string {
	return fmt.Sprintf("wikitext parse error at offset %d: %s", e.Offset, e.Reason)
}

// ParseDocument builds the section tree for one page's raw markup.
//
// Markup irregularities degrade to literal text: an opening construct
// with no close is kept as-is rather than failing the page.  The only
// hard failure is nesting beyond maxTemplateDepth (<= 0 selects
// DefaultMaxTemplateDepth).
func ParseDocument(src string, maxTemplateDepth int) (*Document, error) {
	if maxTemplateDepth <= 0 {
		maxTemplateDepth = DefaultMaxTemplateDepth
	}

	lead := &Section{}
	doc := &Document{Sections: []*Section{lead}}
	current := lead
	var stack []*Section
	var bodyLines []string

	flushBody := func() error {
		if len(bodyLines) == 0 {
			return nil
		}
		text := strings.Join(bodyLines, "\n")
		bodyLines = nil
		sc := &scanner{src: text, maxDepth: maxTemplateDepth}
		nodes, err := sc.parseNodes()
		if err != nil {
			return err
		}
		current.Body = nodes
		return nil
	}

	for _, line := range strings.Split(src, "\n") {
		level, inner, isHeading := splitHeading(line)
		if !isHeading {
			bodyLines = append(bodyLines, line)
			continue
		}
		if err := flushBody(); err != nil {
			return nil, err
		}
		hsc := &scanner{src: inner, maxDepth: maxTemplateDepth}
		title, err := hsc.parseNodes()
		if err != nil {
			return nil, err
		}
		sec := &Section{
			Heading: &Heading{Level: level, Children: title},
			Level:   level,
		}
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			doc.Sections = append(doc.Sections, sec)
		} else {
			parent := stack[len(stack)-1]
			parent.Subsections = append(parent.Subsections, sec)
		}
		stack = append(stack, sec)
		current = sec
	}
	if err := flushBody(); err != nil {
		return nil, err
	}
	return doc, nil
}

// splitHeading recognizes an == title == line.  Level is the smaller of
// the two runs of equals signs, capped at 6.
func splitHeading(line string) (level int, inner string, ok bool) {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < 3 || trimmed[0] != '=' {
		return 0, "", false
	}
	lead := 0
	for lead < len(trimmed) && trimmed[lead] == '=' {
		lead++
	}
	trail := 0
	for trail < len(trimmed)-lead && trimmed[len(trimmed)-1-trail] == '=' {
		trail++
	}
	if trail == 0 || lead+trail >= len(trimmed) {
		return 0, "", false
	}
	level = lead
	if trail < level {
		level = trail
	}
	if level > 6 {
		level = 6
	}
	inner = strings.TrimSpace(trimmed[lead : len(trimmed)-trail])
	if inner == "" {
		return 0, "", false
	}
	return level, inner, true
}

type scanner struct {
	src      string
	pos      int
	maxDepth int
	depth    int
}

var tagOpenRE = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9-]*)((?:\s+[^<>]*)?)(/?)>`)

// parseNodes scans left to right until the input ends or any terminator
// matches at the current position.  The terminator is left unconsumed.
func (sc *scanner) parseNodes(terms ...string) ([]Node, error) {
	var nodes []Node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, &Text{Value: text.String()})
			text.Reset()
		}
	}

	for sc.pos < len(sc.src) {
		if sc.atAny(terms) {
			break
		}
		rest := sc.src[sc.pos:]
		if strings.HasPrefix(rest, "[[") {
			if n, ok := sc.parseWikilink(); ok {
				flush()
				nodes = append(nodes, n)
				continue
			}
		} else if strings.HasPrefix(rest, "{{") {
			n, ok, err := sc.parseTemplate()
			if err != nil {
				return nil, err
			}
			if ok {
				flush()
				nodes = append(nodes, n)
				continue
			}
		} else if strings.HasPrefix(rest, "{|") && sc.atLineStart() {
			if n, ok := sc.parseTable(); ok {
				flush()
				nodes = append(nodes, n)
				continue
			}
		} else if rest[0] == '<' {
			n, ok, err := sc.parseTag()
			if err != nil {
				return nil, err
			}
			if ok {
				flush()
				if n != nil { // nil for a swallowed comment
					nodes = append(nodes, n)
				}
				continue
			}
		}
		text.WriteByte(sc.src[sc.pos])
		sc.pos++
	}
	flush()
	return nodes, nil
}

func (sc *scanner) atAny(terms []string) bool {
	for _, t := range terms {
		if strings.HasPrefix(sc.src[sc.pos:], t) {
			return true
		}
	}
	return false
}

// parseWikilink consumes [[target]] or [[target|display]].  The display
// may itself contain balanced [[...]] pairs.  Targets never span lines;
// anything unbalanced is left for the caller to treat as text.
func (sc *scanner) parseWikilink() (Node, bool) {
	start := sc.pos
	sc.pos += 2
	rest := sc.src[sc.pos:]

	pipe, end := -1, -1
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '\n' || (c == '[' && i+1 < len(rest) && rest[i+1] == '[') {
			break
		}
		if c == '|' {
			pipe = i
			break
		}
		if c == ']' && i+1 < len(rest) && rest[i+1] == ']' {
			end = i
			break
		}
	}

	if end >= 0 {
		sc.pos += end + 2
		return &Wikilink{Target: strings.TrimSpace(rest[:end])}, true
	}
	if pipe >= 0 {
		depth := 0
		for i := pipe + 1; i+1 < len(rest); i++ {
			if rest[i] == '[' && rest[i+1] == '[' {
				depth++
				i++
				continue
			}
			if rest[i] == ']' && rest[i+1] == ']' {
				if depth == 0 {
					sc.pos += i + 2
					return &Wikilink{
						Target:  strings.TrimSpace(rest[:pipe]),
						Display: rest[pipe+1 : i],
					}, true
				}
				depth--
				i++
			}
		}
	}
	sc.pos = start
	return nil, false
}

// parseTemplate consumes {{name|arg|key=value|...}}.  Arguments are
// parsed recursively, so templates nest inside template arguments.
func (sc *scanner) parseTemplate() (Node, bool, error) {
	start := sc.pos
	if sc.depth+1 > sc.maxDepth {
		return nil, false, &WikitextParseError{Offset: start, Reason: "nesting exceeds depth bound"}
	}
	sc.depth++
	defer func() { sc.depth-- }()
	sc.pos += 2

	// The name runs to the first pipe or closing braces.  A nested
	// opening construct before either means the braces do not balance.
	rest := sc.src[sc.pos:]
	nameEnd := -1
	for i := 0; i < len(rest); i++ {
		if strings.HasPrefix(rest[i:], "{{") || strings.HasPrefix(rest[i:], "[[") {
			break
		}
		if rest[i] == '|' || strings.HasPrefix(rest[i:], "}}") {
			nameEnd = i
			break
		}
	}
	if nameEnd < 0 {
		sc.pos = start
		return nil, false, nil
	}
	tpl := &Template{Name: strings.TrimSpace(rest[:nameEnd])}
	sc.pos += nameEnd

	for sc.pos < len(sc.src) && sc.src[sc.pos] == '|' {
		sc.pos++
		value, err := sc.parseNodes("|", "}}")
		if err != nil {
			return nil, false, err
		}
		tpl.Params = append(tpl.Params, splitParam(value))
	}
	if !strings.HasPrefix(sc.src[sc.pos:], "}}") {
		sc.pos = start
		return nil, false, nil
	}
	sc.pos += 2
	return tpl, true, nil
}

func (sc *scanner) atLineStart() bool {
	return sc.pos == 0 || sc.src[sc.pos-1] == '\n'
}

// parseTable consumes a {| ... |} wikitable, which only opens at the
// start of a line.  The table body is not given further structure; it
// becomes a "table" tag node so the cleaner can match it by name.
func (sc *scanner) parseTable() (Node, bool) {
	start := sc.pos
	sc.pos += 2
	depth := 1
	for sc.pos < len(sc.src) {
		if strings.HasPrefix(sc.src[sc.pos:], "{|") {
			depth++
			sc.pos += 2
			continue
		}
		if strings.HasPrefix(sc.src[sc.pos:], "|}") {
			depth--
			sc.pos += 2
			if depth == 0 {
				inner := sc.src[start+2 : sc.pos-2]
				return &Tag{Name: "table", Children: []Node{&Text{Value: inner}}}, true
			}
			continue
		}
		sc.pos++
	}
	sc.pos = start
	return nil, false
}

// splitParam pulls a key= prefix off the first text node, if present.
func splitParam(value []Node) Param {
	if len(value) > 0 {
		if t, ok := value[0].(*Text); ok {
			if eq := strings.Index(t.Value, "="); eq >= 0 {
				p := Param{Name: strings.TrimSpace(t.Value[:eq])}
				if restText := t.Value[eq+1:]; restText != "" {
					p.Value = append(p.Value, &Text{Value: restText})
				}
				p.Value = append(p.Value, value[1:]...)
				return p
			}
		}
	}
	return Param{Value: value}
}

// parseTag consumes <name ...>body</name>, a self-closing <name/>, or
// an HTML comment (dropped entirely).  A close tag that never comes
// means the '<' is plain text.
func (sc *scanner) parseTag() (Node, bool, error) {
	rest := sc.src[sc.pos:]
	if strings.HasPrefix(rest, "<!--") {
		i := strings.Index(rest, "-->")
		if i < 0 {
			return nil, false, nil
		}
		sc.pos += i + 3
		return nil, true, nil
	}
	m := tagOpenRE.FindStringSubmatch(rest)
	if m == nil {
		return nil, false, nil
	}
	name := strings.ToLower(m[1])
	attrs := strings.TrimSpace(m[2])
	if m[3] == "/" || strings.HasSuffix(attrs, "/") {
		sc.pos += len(m[0])
		return &Tag{Name: name, Attrs: strings.TrimSuffix(attrs, "/"), SelfClosing: true}, true, nil
	}
	if sc.depth+1 > sc.maxDepth {
		return nil, false, &WikitextParseError{Offset: sc.pos, Reason: "nesting exceeds depth bound"}
	}
	inner, consumed, ok := findTagEnd(rest[len(m[0]):], name)
	if !ok {
		return nil, false, nil
	}
	sub := &scanner{src: inner, maxDepth: sc.maxDepth, depth: sc.depth + 1}
	children, err := sub.parseNodes()
	if err != nil {
		return nil, false, err
	}
	sc.pos += len(m[0]) + consumed
	return &Tag{Name: name, Attrs: attrs, Children: children}, true, nil
}

// findTagEnd locates the close tag matching an already-consumed open
// tag, counting nested same-name opens.  consumed indexes just past the
// close tag's '>'.
func findTagEnd(s, name string) (inner string, consumed int, ok bool) {
	lower := strings.ToLower(s)
	openTok := "<" + name
	closeTok := "</" + name
	depth := 1

	for i := 0; i < len(lower); {
		lt := strings.Index(lower[i:], "<")
		if lt < 0 {
			return "", 0, false
		}
		j := i + lt
		if strings.HasPrefix(lower[j:], closeTok) {
			k := j + len(closeTok)
			for k < len(lower) && (lower[k] == ' ' || lower[k] == '\t') {
				k++
			}
			if k < len(lower) && lower[k] == '>' {
				depth--
				if depth == 0 {
					return s[:j], k + 1, true
				}
				i = k + 1
				continue
			}
		} else if strings.HasPrefix(lower[j:], openTok) {
			k := j + len(openTok)
			if k < len(lower) && !isTagNameByte(lower[k]) {
				gt := strings.Index(lower[k:], ">")
				if gt >= 0 {
					if !strings.HasSuffix(strings.TrimSpace(lower[k:k+gt]), "/") {
						depth++
					}
					i = k + gt + 1
					continue
				}
			}
		}
		i = j + 1
	}
	return "", 0, false
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-'
}
