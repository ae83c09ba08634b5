package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	const content = "Burst pipe flooded the stockroom."
	if err := s.Save(ctx, "c1/d1", strings.NewReader(content)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rc, err := s.Open(ctx, "c1/d1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != content {
		t.Errorf("read %q, want %q", got, content)
	}
}

func TestSave_Overwrite(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "c1/d1", strings.NewReader("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "c1/d1", strings.NewReader("second")); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	rc, _ := s.Open(ctx, "c1/d1")
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Errorf("read %q, want %q", got, "second")
	}
}

func TestOpen_Missing(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Open(context.Background(), "c1/absent"); err == nil {
		t.Error("expected error for missing blob")
	}
}

func TestKeyTraversalRejected(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../escape", "c1/../../escape", "/etc/passwd", "."} {
		if err := s.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q): expected rejection", key)
		}
		if _, err := s.Open(ctx, key); err == nil {
			t.Errorf("Open(%q): expected rejection", key)
		}
	}
}
