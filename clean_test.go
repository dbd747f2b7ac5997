package wikicorpus

import (
	"testing"
)

func cleanWikitext(t *testing.T, src string) string {
	t.Helper()
	return CleanDocument(mustParse(t, src))
}

func TestCleanMediaLinksAndRefs(t *testing.T) {
	got := cleanWikitext(t, "[[File:Cat.jpg|thumb]] A cat. <ref>source</ref>")
	if got != "A cat." {
		t.Fatalf("Expected %q, got %q", "A cat.", got)
	}
}

func TestCleanReferenceSection(t *testing.T) {
	got := cleanWikitext(t, "== History ==\nFounded in 1900. {{reflist}}")
	if got != "Founded in 1900." {
		t.Fatalf("Expected %q, got %q", "Founded in 1900.", got)
	}
}

func TestCleanMediaPrefixesCaseInsensitive(t *testing.T) {
	got := cleanWikitext(t, "[[image:A.png]] x [[MEDIA:B.ogg]] y [[File:C.jpg]] z")
	if got != "x y z" {
		t.Fatalf("Expected %q, got %q", "x y z", got)
	}
}

func TestCleanTemplateRemoval(t *testing.T) {
	tests := []struct {
		src     string
		removed bool
	}{
		{"{{reflist}}", true},
		{"{{Reflist}}", true},
		{"{{ reflist }}", true},
		{"{{notelist}}", true},
		{"{{Notelist-UA}}", true},
		{"{{notelist-lr}}", true},
		{"{{notelist-zz}}", false},
		{"{{convert|1|m}}", false},
	}
	for _, tc := range tests {
		sec := mustParse(t, tc.src).Flat()[0]
		cleanSection(sec)
		if tc.removed && len(sec.Body) != 0 {
			t.Errorf("%q: expected removal, body %#v", tc.src, sec.Body)
		}
		if !tc.removed && len(sec.Body) != 1 {
			t.Errorf("%q: expected survival, body %#v", tc.src, sec.Body)
		}
	}
}

func TestSurvivingTemplatesRenderNothing(t *testing.T) {
	got := cleanWikitext(t, "It is {{convert|8800|m|mi}} high.")
	if got != "It is high." {
		t.Fatalf("Expected %q, got %q", "It is high.", got)
	}
}

func TestHeadingsExcludedFromProse(t *testing.T) {
	got := cleanWikitext(t, "Lead.\n== History ==\nBody text.")
	if got != "Lead.\n\nBody text." {
		t.Fatalf("Heading text leaked: %q", got)
	}
}

func TestEmptySectionsSkipped(t *testing.T) {
	got := cleanWikitext(t, "Lead.\n== References ==\n{{reflist}}\n== Legacy ==\nLives on.")
	if got != "Lead.\n\nLives on." {
		t.Fatalf("Expected empty section dropped, got %q", got)
	}
}

func TestCleanWikitable(t *testing.T) {
	got := cleanWikitext(t, "a\n{| class=\"wikitable\"\n! h\n|-\n| cell\n|}\nb")
	if got != "a\n\nb" {
		t.Fatalf("Expected table removed, got %q", got)
	}
}

func TestCleanBoldItalicAndLists(t *testing.T) {
	tests := []struct{ src, want string }{
		{"'''Sponges''' are ''animals''.", "Sponges are animals."},
		{"* item one\n* item two", "item one\nitem two"},
		{"See [http://example.com/x the site] now.", "See the site now."},
		{"Bare [http://example.com] link.", "Bare link."},
		{"a\n\n\n\n\nb", "a\n\nb"},
	}
	for _, tc := range tests {
		if got := cleanWikitext(t, tc.src); got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestCleanKeepsOrdinaryLinks(t *testing.T) {
	got := cleanWikitext(t, "A [[sponge]] is an [[Animalia|animal]].")
	if got != "A sponge is an animal." {
		t.Fatalf("Expected link text kept, got %q", got)
	}
}

func TestRemoveIsIdentityBasedAndIdempotent(t *testing.T) {
	sec := mustParse(t, "a [[File:X.jpg]] b").Flat()[0]
	var doomed []Node
	collectNodes(sec.Body, removable, &doomed)
	if len(doomed) != 1 {
		t.Fatalf("Expected one removable node, got %#v", doomed)
	}
	if !sec.Remove(doomed[0]) {
		t.Fatal("First removal should succeed")
	}
	if sec.Remove(doomed[0]) {
		t.Fatal("Second removal should miss")
	}
	if len(sec.Body) != 2 {
		t.Fatalf("Sibling order disturbed: %#v", sec.Body)
	}
	if sec.Body[0].(*Text).Value != "a " || sec.Body[1].(*Text).Value != " b" {
		t.Fatalf("Unexpected survivors %#v", sec.Body)
	}
}

func TestRemoveToleratesRemovedAncestor(t *testing.T) {
	sec := mustParse(t, "<ref>[[File:X.jpg]]</ref>").Flat()[0]
	var doomed []Node
	collectNodes(sec.Body, removable, &doomed)
	if len(doomed) != 2 {
		t.Fatalf("Expected the ref and the nested link, got %#v", doomed)
	}
	if !sec.Remove(doomed[0]) {
		t.Fatal("Removing the ref should succeed")
	}
	if sec.Remove(doomed[1]) {
		t.Fatal("The nested link went with its ancestor")
	}
	if len(sec.Body) != 0 {
		t.Fatalf("Expected empty body, got %#v", sec.Body)
	}
}

func TestCleanDocumentStable(t *testing.T) {
	doc := mustParse(t, "'''Lead'''.\n== A ==\n[[File:X.jpg]] Text. <ref>n</ref>")
	first := CleanDocument(doc)
	second := CleanDocument(doc)
	if first != second {
		t.Fatalf("Cleaning is not stable: %q vs %q", first, second)
	}
}

const spongeArticle = `{{About|the aquatic animal|the porous cleaning tool|Sponge (material)}}
[[File:Aplysina archeri.jpg|thumb|A stove-pipe sponge]]
'''Sponges''' are [[animal]]s of the [[phylum]] '''Porifera'''.<ref>{{Cite journal|title=Prey capture}}</ref> They are multicellular organisms.

== Overview ==
Sponges are like other animals in that they are multicellular.<ref name="a"/> Many sponges have internal skeletons.

== References ==
{{reflist}}
`

func TestCleanRealisticArticle(t *testing.T) {
	want := "Sponges are animals of the phylum Porifera. They are multicellular organisms." +
		"\n\n" +
		"Sponges are like other animals in that they are multicellular. Many sponges have internal skeletons."
	if got := cleanWikitext(t, spongeArticle); got != want {
		t.Fatalf("Expected:\n%q\ngot:\n%q", want, got)
	}
}
