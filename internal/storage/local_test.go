package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	if err := local.Save(ctx, "profile_images/a.png", strings.NewReader("content")); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "profile_images", "a.png"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("unexpected content %q", data)
	}

	exists, err := local.Exists(ctx, "profile_images/a.png")
	if err != nil || !exists {
		t.Fatalf("expected file to exist, got %v %v", exists, err)
	}

	if err := local.Delete(ctx, "profile_images/a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, err = local.Exists(ctx, "profile_images/a.png")
	if err != nil || exists {
		t.Fatalf("expected file gone, got %v %v", exists, err)
	}
}

func TestLocalDeleteAbsentFile(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if err := local.Delete(context.Background(), "never/existed.png"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestLocalURL(t *testing.T) {
	fallback, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if got := fallback.URL("profile_images/a.png"); got != "/files/profile_images/a.png" {
		t.Fatalf("unexpected fallback URL %q", got)
	}

	public, err := NewLocal(t.TempDir(), "https://cdn.example.com/uploads/")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if got := public.URL("a.png"); got != "https://cdn.example.com/uploads/a.png" {
		t.Fatalf("unexpected public URL %q", got)
	}
}
