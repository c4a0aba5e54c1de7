package travel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDestinationDocument(t *testing.T) {
	var paris Destination
	for _, d := range Destinations() {
		if d.Code == "CDG" {
			paris = d
		}
	}
	doc := paris.Document()
	for _, want := range []string{
		"# Paris, France",
		"## Overview",
		"**Airport Code**: CDG",
		"- Eiffel Tower",
		"## Travel Style Tags",
		"romantic, cultural, art",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected document to contain %q:\n%s", want, doc)
		}
	}
}

func TestWriteKnowledgeBaseDocs(t *testing.T) {
	dir := t.TempDir()
	if err := WriteKnowledgeBaseDocs(dir); err != nil {
		t.Fatalf("write kb docs: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != len(Destinations()) {
		t.Fatalf("expected %d documents, got %d", len(Destinations()), len(entries))
	}
	content, err := os.ReadFile(filepath.Join(dir, "syd.md"))
	if err != nil {
		t.Fatalf("read syd.md: %v", err)
	}
	if !strings.Contains(string(content), "Sydney, Australia") {
		t.Fatalf("unexpected syd.md content:\n%s", content)
	}
}
