package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/ByLCY/folio/config"
)

const e2eManifest = `
book "Archive" {
  meta { title: "Archive Test"; author: "Folio" }
  page a5 margin 0.6in
  header { left: "${title}"; right: "ARCHIVE" }
  cover { title: "ARCHIVE"; logo: "img/logo.png" }
  toc
  part "I" "START" { desc: "Begin." }
  chapter "ONE" { src: "ch/one.md" }
  worksheet "LOG" { field "Date"; area "Notes" 2 }
  font sans-bold "fonts/missing.ttf"
}
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func logoPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.RGBA{20, 184, 166, 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode logo: %v", err)
	}
	return buf.Bytes()
}

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.folio"), []byte(e2eManifest))
	writeFile(t, filepath.Join(dir, "ch", "one.md"), []byte("# ONE\n\nFirst words.\n\n=== nugget\nKeep it.\n===\n"))
	writeFile(t, filepath.Join(dir, "img", "logo.png"), logoPNG(t))

	out := filepath.Join(dir, "output", "book.pdf")
	cfg := config.Config{
		Manifest: filepath.Join(dir, "book.folio"),
		Root:     dir,
		Out:      out,
		Preview:  filepath.Join(dir, "output", "preview.png"),
		Debug:    filepath.Join(dir, "output", "debug.json"),
	}
	if err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	defer f.Close()
	st, _ := f.Stat()
	reader, err := pdflib.NewReader(f, st.Size())
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if reader.NumPage() < 4 {
		t.Fatalf("expected at least 4 pages, got %d", reader.NumPage())
	}
	if title := reader.Trailer().Key("Info").Key("Title").Text(); title != "Archive Test" {
		t.Fatalf("unexpected pdf title %q", title)
	}

	pf, err := os.Open(cfg.Preview)
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	defer pf.Close()
	if _, err := png.Decode(pf); err != nil {
		t.Fatalf("preview is not a png: %v", err)
	}

	raw, err := os.ReadFile(cfg.Debug)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	var dump struct {
		Pages []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(raw, &dump); err != nil {
		t.Fatalf("debug json: %v", err)
	}
	if len(dump.Pages) != reader.NumPage() {
		t.Fatalf("debug pages %d != pdf pages %d", len(dump.Pages), reader.NumPage())
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "output"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestRunMissingManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{Manifest: filepath.Join(dir, "nope.folio"), Root: dir, Out: filepath.Join(dir, "out.pdf")}
	if err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
	if _, err := os.Stat(cfg.Out); !os.IsNotExist(err) {
		t.Fatalf("no output should be written on failure")
	}
}

func TestWriteAtomicCleansUp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(target, "keep"), []byte("x"))
	if err := writeAtomic(target, []byte("data")); err == nil {
		t.Fatalf("renaming onto a non-empty directory should fail")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary file should be removed, found %d entries", len(entries))
	}

	path := filepath.Join(dir, "nested", "file.bin")
	if err := writeAtomic(path, []byte("data")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "data" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestRunLeavesNoOutputWhenLaterWriteFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "book.folio"), []byte(e2eManifest))
	writeFile(t, filepath.Join(dir, "ch", "one.md"), []byte("First words.\n"))
	writeFile(t, filepath.Join(dir, "img", "logo.png"), logoPNG(t))
	// 调试输出路径被非空目录占用，改名必然失败
	writeFile(t, filepath.Join(dir, "output", "debug.json", "keep"), []byte("x"))

	cfg := config.Config{
		Manifest: filepath.Join(dir, "book.folio"),
		Root:     dir,
		Out:      filepath.Join(dir, "output", "book.pdf"),
		Preview:  filepath.Join(dir, "output", "preview.png"),
		Debug:    filepath.Join(dir, "output", "debug.json"),
	}
	if err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatalf("expected error when the debug output cannot be written")
	}
	for _, path := range []string{cfg.Out, cfg.Preview} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("%s should have been removed after the failure", filepath.Base(path))
		}
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "output"))
	if len(entries) != 1 || entries[0].Name() != "debug.json" {
		t.Fatalf("only the pre-existing directory should remain, found %d entries", len(entries))
	}
}

func TestWriteAllRemovesEarlierOutputs(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	writeFile(t, filepath.Join(blocked, "keep"), []byte("x"))
	first := filepath.Join(dir, "first.bin")
	err := writeAll([]output{
		{path: first, data: []byte("one"), what: "first"},
		{path: blocked, data: []byte("two"), what: "second"},
	})
	if err == nil {
		t.Fatalf("expected error for the blocked path")
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Fatalf("first output should be removed")
	}
}
