package pages

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(name), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	t.Run("contiguous pages in order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p2 := touch(t, dir, "page_2.png")
		p1 := touch(t, dir, "page_1.png")
		p3 := touch(t, dir, "page_3.png")

		got, err := Discover(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Page{
			{Index: 1, Path: p1, Name: "page_1.png"},
			{Index: 2, Path: p2, Name: "page_2.png"},
			{Index: 3, Path: p3, Name: "page_3.png"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("pages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops at first gap", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		touch(t, dir, "page_1.png")
		touch(t, dir, "page_3.png")

		got, err := Discover(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 page, got %d", len(got))
		}
	})

	t.Run("mixed extensions prefer png", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		touch(t, dir, "page_1.jpg")
		png := touch(t, dir, "page_1.png")
		webp := touch(t, dir, "page_2.webp")

		got, err := Discover(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0].Path != png || got[1].Path != webp {
			t.Errorf("unexpected pages: %+v", got)
		}
	})

	t.Run("ignores other files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		touch(t, dir, "page_1.png")
		touch(t, dir, "page_1_pre.jpg")
		touch(t, dir, "page_2.txt")

		got, err := Discover(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 page, got %d", len(got))
		}
	})

	t.Run("no pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		touch(t, dir, "page_2.png")

		_, err := Discover(dir)
		if !errors.Is(err, ErrNoPages) {
			t.Fatalf("expected ErrNoPages, got %v", err)
		}
		if want := "No page_*.png images found in " + dir; err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "missing")
		_, err := Discover(dir)
		if !errors.Is(err, ErrDirNotFound) {
			t.Fatalf("expected ErrDirNotFound, got %v", err)
		}
		if want := "Directory not found: " + dir; err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		t.Parallel()

		path := touch(t, t.TempDir(), "page_1.png")
		if _, err := Discover(path); !errors.Is(err, ErrDirNotFound) {
			t.Errorf("expected ErrDirNotFound, got %v", err)
		}
	})
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	if got := OutputName(12); got != "page_12_pre.jpg" {
		t.Errorf("expected page_12_pre.jpg, got %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := touch(t, dir, "a.png")
	b := touch(t, dir, "b.png")

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fa) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(fa))
	}

	again, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	if fa != again {
		t.Error("fingerprint is not stable")
	}

	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa == fb {
		t.Error("different contents share a fingerprint")
	}

	if _, err := Fingerprint(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
