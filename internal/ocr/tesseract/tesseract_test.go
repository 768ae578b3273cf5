package tesseract

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/otiai10/gosseract/v2"

	"github.com/pagecraft/docprep/internal/imagery"
)

// countingEngine returns an engine whose client factory counts the clients
// it creates.
func countingEngine(created *int) *Engine {
	e := New(WithLanguages("eng"))
	e.clientFactory = func() *gosseract.Client {
		*created++
		return gosseract.NewClient()
	}
	return e
}

func writeBlankPage(t *testing.T, dir string, n int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := range 32 {
		for x := range 64 {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(dir, "page_"+strconv.Itoa(n)+".png")
	if err := imagery.Save(img, path, 90); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEngine_ReusesClient(t *testing.T) {
	t.Parallel()

	created := 0
	e := countingEngine(&created)
	defer e.Close()

	if e.Version() == "" {
		t.Skip("tesseract library not available")
	}

	dir := t.TempDir()
	for n := 1; n <= 3; n++ {
		if _, err := e.Recognize(context.Background(), writeBlankPage(t, dir, n)); err != nil {
			t.Logf("page %d: %v", n, err)
		}
	}

	if created != 1 {
		t.Errorf("expected one client for three pages, got %d", created)
	}
}

func TestEngine_Close(t *testing.T) {
	t.Parallel()

	created := 0
	e := countingEngine(&created)

	if err := e.Close(); err != nil {
		t.Errorf("close before use: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no client before use, got %d", created)
	}

	_ = e.Version()
	if err := e.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	_ = e.Version()
	defer e.Close()
	if created != 2 {
		t.Errorf("expected a new client after Close, got %d clients", created)
	}
}

func TestEngine_Recognize_CancelledContext(t *testing.T) {
	t.Parallel()

	created := 0
	e := countingEngine(&created)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Recognize(ctx, "page_1.png"); err == nil {
		t.Error("expected error for cancelled context")
	}
	if created != 0 {
		t.Errorf("expected no client for a cancelled call, got %d", created)
	}
}
