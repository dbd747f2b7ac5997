package wikicorpus

import (
	"strings"
	"testing"
)

func TestFindLinks(t *testing.T) {
	got := FindLinks("See [[Dog]] and [[File:Cat.jpg|thumb]] beside [[Canis lupus|the wolf]].")
	want := []string{"Dog", "File:Cat.jpg", "Canis lupus"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}

	if got := FindLinks("No links at all."); len(got) != 0 {
		t.Errorf("Expected no links, got %v", got)
	}
}

func TestFindLinksUnparseable(t *testing.T) {
	deep := strings.Repeat("{{a|", DefaultMaxTemplateDepth+1) +
		strings.Repeat("}}", DefaultMaxTemplateDepth+1)
	if got := FindLinks(deep + " [[Dog]]"); len(got) != 0 {
		t.Errorf("Expected no links from unparseable markup, got %v", got)
	}
}

func TestFindFiles(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"See [[Dog]] and [[File:Cat.jpg|thumb]].", []string{"Cat.jpg"}},
		{"[[Image:A.png]] and [[media:B.ogg]]", []string{"A.png", "B.ogg"}},
		{"{{Infobox|image=[[File:X.png]]}}", []string{"X.png"}},
		{"<gallery>plain</gallery> [[File: Spaced.jpg ]]", []string{"Spaced.jpg"}},
		{"No files here.", nil},
	}
	for _, tc := range tests {
		got := FindFiles(tc.text)
		if len(got) != len(tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.text, tc.want, got)
			continue
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%q: expected %v, got %v", tc.text, tc.want, got)
			}
		}
	}
}

func TestURLForFile(t *testing.T) {
	u := URLForFile("Stove pipe sponge.jpg")
	const prefix = "http://upload.wikimedia.org/wikipedia/commons/"
	if !strings.HasPrefix(u, prefix) {
		t.Fatalf("Unexpected URL base: %q", u)
	}
	parts := strings.Split(u[len(prefix):], "/")
	if len(parts) != 3 {
		t.Fatalf("Unexpected URL shape: %q", u)
	}
	if len(parts[0]) != 1 || len(parts[1]) != 2 || parts[1][:1] != parts[0] {
		t.Errorf("Hash directories disagree in %q", u)
	}
	if parts[2] != "Stove_pipe_sponge.jpg" {
		t.Errorf("Expected underscored filename, got %q", parts[2])
	}
}
