package worker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChunk(t *testing.T) {
	ids := make([]int, 51)
	for i := range ids {
		ids[i] = i
	}

	batches := Chunk(ids, 50)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0]) != 50 || len(batches[1]) != 1 {
		t.Errorf("unexpected batch sizes %d and %d", len(batches[0]), len(batches[1]))
	}

	var flat []int
	for _, b := range batches {
		flat = append(flat, b...)
	}
	for i, v := range flat {
		if v != i {
			t.Fatalf("order broken at %d: got %d", i, v)
		}
	}
}

func TestChunk_Edges(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		size  int
		want  int
	}{
		{"empty", nil, 50, 0},
		{"exact", []string{"a", "b"}, 2, 1},
		{"zero size", []string{"a", "b", "c"}, 0, 3},
		{"smaller than size", []string{"a"}, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Chunk(tt.items, tt.size)); got != tt.want {
				t.Errorf("expected %d batches, got %d", tt.want, got)
			}
		})
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadLinesFromFile(t *testing.T) {
	path := writeTemp(t, `Category:Science fiction novels by writer
# comment
Category:Science fiction novels by year
   
Category:Science fiction novels by writer
  Category:Cyberpunk novels   `)

	lines, err := ReadLinesFromFile(path)
	if err != nil {
		t.Fatalf("ReadLinesFromFile failed: %v", err)
	}

	expected := []string{
		"Category:Science fiction novels by writer",
		"Category:Science fiction novels by year",
		"Category:Cyberpunk novels",
	}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestReadLinesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadLinesFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestReadLinesFromFile_Empty(t *testing.T) {
	lines, err := ReadLinesFromFile(writeTemp(t, ""))
	if err != nil {
		t.Fatalf("ReadLinesFromFile failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %d", len(lines))
	}
}
