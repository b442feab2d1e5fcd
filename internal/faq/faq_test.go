package faq

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"support-intake-go/internal/types"
)

func TestMatch(t *testing.T) {
	entries := []types.FAQEntry{
		{Question: "How do I reset my password?", Answer: "reset"},
		{Question: "What are your business hours?", Answer: "hours"},
		{Question: "What are your holiday business hours?", Answer: "holiday"},
	}
	tests := []struct {
		query  string
		want   string
		wantOK bool
	}{
		{"What are your business hours?", "hours", true},
		{"what are your BUSINESS hours?", "hours", true},
		{"reset my password", "reset", true},
		{"business hours", "hours", true}, // first entry in order wins
		{"holiday", "holiday", true},
		{"  business hours  ", "", false},
		{"business hours? ", "", false},
		{"business hours?", "hours", true},
		{"What are your business hours? I need them now", "", false},
		{"refund", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := Match(tt.query, entries)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Match(%q) = %q, %v; want %q, %v", tt.query, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestList_JSONKeepsOrder(t *testing.T) {
	raw := `{"zeta":"1","alpha":"2","mid":"3"}`
	var l List
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(l) != 3 || l[0].Question != "zeta" || l[1].Question != "alpha" || l[2].Question != "mid" {
		t.Fatalf("order lost: %+v", l)
	}
	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("Marshal = %s, want %s", out, raw)
	}
}

func TestList_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var l List
	if err := json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(l) != 2 || l[0].Question != "a" || l[0].Answer != "3" {
		t.Errorf("got %+v", l)
	}
}

func TestList_RejectsNonObject(t *testing.T) {
	var l List
	if err := json.Unmarshal([]byte(`["a"]`), &l); err == nil {
		t.Fatal("expected error for JSON array")
	}
	if err := json.Unmarshal([]byte(`{"a":1}`), &l); err == nil {
		t.Fatal("expected error for non-string answer")
	}
}

func TestStore_SeedsDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(l) != len(DefaultEntries) {
		t.Fatalf("len = %d, want %d", len(l), len(DefaultEntries))
	}
	for i := range l {
		if l[i] != DefaultEntries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, l[i], DefaultEntries[i])
		}
	}

	answer, ok, err := s.Lookup("What are your business hours?")
	if err != nil || !ok {
		t.Fatalf("Lookup = %q, %v, %v", answer, ok, err)
	}
	if answer != "Our customer service is available Monday to Friday, 9 AM to 6 PM." {
		t.Errorf("answer = %q", answer)
	}
}

func TestStore_OpenKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"Q":"A"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(l) != 1 || l[0].Question != "Q" {
		t.Errorf("List = %+v, want existing file contents", l)
	}
}

func TestStore_AddOverwritesInPlaceAndAppends(t *testing.T) {
	s, err := Open(t.TempDir(), List{{Question: "a", Answer: "1"}, {Question: "b", Answer: "2"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Add("a", "updated"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("c", "3"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	l, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := List{{Question: "a", Answer: "updated"}, {Question: "b", Answer: "2"}, {Question: "c", Answer: "3"}}
	if len(l) != len(want) {
		t.Fatalf("List = %+v, want %+v", l, want)
	}
	for i := range want {
		if l[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, l[i], want[i])
		}
	}
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(); err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if err := s.Add("q", "a"); err == nil {
		t.Fatal("expected Add to surface load error")
	}
}
