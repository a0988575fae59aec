package ir

import "testing"

func TestDedupFields_FirstWins(t *testing.T) {
	fields := []*Field{
		{Name: "id", Type: "string", OriginalName: "atId"},
		{Name: "name", Type: "string", OriginalName: "name"},
		{Name: "id", Type: "string", OriginalName: "id"},
		{Name: "id", Type: "number", OriginalName: "numericId"},
	}

	got := DedupFields(fields)
	if len(got) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(got))
	}
	if got[0].OriginalName != "atId" {
		t.Errorf("expected first id field to survive, got %s", got[0].OriginalName)
	}
	if got[2].Type != "number" {
		t.Errorf("expected id:number to be kept, got %s", got[2].Type)
	}
}

func TestDedupFields_DoesNotMutateInput(t *testing.T) {
	fields := []*Field{
		{Name: "a", Type: "string"},
		{Name: "a", Type: "string"},
		{Name: "b", Type: "string"},
	}
	_ = DedupFields(fields)
	if fields[1].Name != "a" || fields[2].Name != "b" {
		t.Fatal("input slice was modified")
	}
}

func TestDependencySet_Order(t *testing.T) {
	s := NewDependencySet()
	s.Add("Money")
	s.Add("EntityRef")
	s.Add("Money")
	s.Add("Note")

	if s.Len() != 3 {
		t.Fatalf("expected 3 names, got %d", s.Len())
	}
	want := []string{"Money", "EntityRef", "Note"}
	for i, name := range s.List() {
		if name != want[i] {
			t.Errorf("position %d: got %s, want %s", i, name, want[i])
		}
	}
	if !s.Has("Note") || s.Has("string") {
		t.Error("Has returned wrong membership")
	}
}

func TestImportString(t *testing.T) {
	imp := Import{Name: "AbstractEntity", Path: "../../utils/base/AbstractEntity"}
	want := "import { AbstractEntity } from '../../utils/base/AbstractEntity';"
	if imp.String() != want {
		t.Fatalf("got %q, want %q", imp.String(), want)
	}
}

func TestExtractionConverted(t *testing.T) {
	if (Extraction{Outcome: OutcomeConverted}).Converted() {
		t.Error("extraction without declaration must not count as converted")
	}
	if !(Extraction{Outcome: OutcomeConverted, Declaration: &Declaration{Name: "A"}}).Converted() {
		t.Error("expected converted extraction")
	}
	if (Extraction{Outcome: OutcomeNoDeclaration, Declaration: &Declaration{}}).Converted() {
		t.Error("no declaration outcome must not count as converted")
	}
}
