package storage

import (
	"context"
	"testing"

	"telegram-job-scout/internal/domain/ports/adapter"
)

func TestDirStore_WriteReadList(t *testing.T) {
	ctx := context.Background()
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	p, err := store.Write(ctx, adapter.FileReport, "analysis.md", []byte("# report"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if p == "" {
		t.Fatal("expected a non-empty stored path")
	}

	b, err := store.Read(ctx, adapter.FileReport, "analysis.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "# report" {
		t.Errorf("got %q", b)
	}

	names, err := store.List(ctx, adapter.FileReport)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "analysis.md" {
		t.Errorf("list mismatch: %v", names)
	}
}

func TestDirStore_RejectsPathEscape(t *testing.T) {
	ctx := context.Background()
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, name := range []string{"", "../evil.md", "a/b.md", ".hidden"} {
		if _, err := store.Write(ctx, adapter.FileResume, name, []byte("x")); err == nil {
			t.Errorf("name %q: expected an error", name)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"Acme Corp", "Backend Engineer"}, "Acme_Corp_Backend_Engineer"},
		{[]string{"a/b", "c"}, "ab_c"},
		{[]string{"  ", "x"}, "___x"},
		{[]string{"키워드", "dev"}, "dev"},
	}
	for _, tt := range tests {
		if got := SafeFileName(tt.parts...); got != tt.want {
			t.Errorf("SafeFileName(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}
