package wikicorpus

// Node is one element of a parsed wikitext tree.  The variant set is
// closed; the cleaner switches exhaustively over it.
type Node interface {
	node()
}

// Text is a literal run of prose.
type Text struct {
	Value string
}

// Wikilink is a [[target]] or [[target|display]] construct.  Display is
// kept as the raw text between the pipe and the closing brackets; an
// empty Display means the link had no pipe.
type Wikilink struct {
	Target  string
	Display string
}

// Param is one template argument, named (key=value) or positional
// (Name empty).
type Param struct {
	Name  string
	Value []Node
}

// Template is a {{name|...}} transclusion.  Never expanded here, only
// matched by name.
type Template struct {
	Name   string
	Params []Param
}

// Tag is a <name ...>...</name> or self-closing <name/> construct.
type Tag struct {
	Name        string
	Attrs       string
	Children    []Node
	SelfClosing bool
}

// Heading is an == title == line, level 1-6.
type Heading struct {
	Level    int
	Children []Node
}

func (*Text) node()     {}
func (*Wikilink) node() {}
func (*Template) node() {}
func (*Tag) node()      {}
func (*Heading) node()  {}

// Section groups the content under one heading.  The lead section has a
// nil Heading and level 0.  Subsections hold any deeper headings; Body
// never contains the subsections' content.
type Section struct {
	Heading     *Heading
	Level       int
	Body        []Node
	Subsections []*Section
}

// Document is one page's parse result.
type Document struct {
	Sections []*Section
}

// Flat returns every section in document order: the lead first, then
// one entry per heading regardless of nesting depth.
func (d *Document) Flat() []*Section {
	var out []*Section
	var walk func(*Section)
	walk = func(s *Section) {
		out = append(out, s)
		for _, sub := range s.Subsections {
			walk(sub)
		}
	}
	for _, s := range d.Sections {
		walk(s)
	}
	return out
}

// Remove detaches the node (matched by identity) from the section body,
// looking at any depth.  Removing a node that is no longer present, for
// instance because an ancestor went first, is a no-op returning false.
func (s *Section) Remove(target Node) bool {
	body, ok := removeNode(s.Body, target)
	if ok {
		s.Body = body
	}
	return ok
}

func removeNode(nodes []Node, target Node) ([]Node, bool) {
	for i, n := range nodes {
		if n == target {
			return append(nodes[:i], nodes[i+1:]...), true
		}
		switch v := n.(type) {
		case *Tag:
			if ch, ok := removeNode(v.Children, target); ok {
				v.Children = ch
				return nodes, true
			}
		case *Heading:
			if ch, ok := removeNode(v.Children, target); ok {
				v.Children = ch
				return nodes, true
			}
		case *Template:
			for pi := range v.Params {
				if ch, ok := removeNode(v.Params[pi].Value, target); ok {
					v.Params[pi].Value = ch
					return nodes, true
				}
			}
		}
	}
	return nodes, false
}

// collectNodes gathers every node matching the predicate, recursing
// into tag bodies, heading text and template arguments.
func collectNodes(nodes []Node, match func(Node) bool, out *[]Node) {
	for _, n := range nodes {
		if match(n) {
			*out = append(*out, n)
		}
		switch v := n.(type) {
		case *Tag:
			collectNodes(v.Children, match, out)
		case *Heading:
			collectNodes(v.Children, match, out)
		case *Template:
			for _, p := range v.Params {
				collectNodes(p.Value, match, out)
			}
		}
	}
}
