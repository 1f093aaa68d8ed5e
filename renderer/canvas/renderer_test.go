package canvasrenderer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"sync"
	"testing"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/ByLCY/folio/layout"
)

type warnCounter struct {
	mu    sync.Mutex
	warns int
}

func (w *warnCounter) Enabled(context.Context, slog.Level) bool { return true }
func (w *warnCounter) WithAttrs([]slog.Attr) slog.Handler       { return w }
func (w *warnCounter) WithGroup(string) slog.Handler            { return w }
func (w *warnCounter) Handle(_ context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		w.mu.Lock()
		w.warns++
		w.mu.Unlock()
	}
	return nil
}

func face(family string, size float64) layout.Face {
	return layout.Face{Family: family, Size: size, Color: layout.Hex("#E5E5E5")}
}

func TestTextWidthUsesFontMetrics(t *testing.T) {
	r := NewRenderer()
	narrow := r.TextWidth("iiii", face(layout.FamilySans, 12))
	wide := r.TextWidth("MMMM", face(layout.FamilySans, 12))
	if narrow <= 0 || wide <= narrow {
		t.Fatalf("expected proportional widths, got iiii=%g MMMM=%g", narrow, wide)
	}
	mi := r.TextWidth("iiii", face(layout.FamilyMono, 12))
	mm := r.TextWidth("MMMM", face(layout.FamilyMono, 12))
	if math.Abs(mi-mm) > 1e-6 {
		t.Fatalf("mono glyphs should share one advance, got %g vs %g", mi, mm)
	}
	double := r.TextWidth("MMMM", face(layout.FamilySans, 24))
	if math.Abs(double-2*wide) > 0.01 {
		t.Fatalf("width should scale with size: %g vs %g", double, 2*wide)
	}
	if r.TextWidth("", face(layout.FamilySans, 12)) != 0 {
		t.Fatalf("empty string should have zero width")
	}
}

func TestBrokenFontOverrideFallsBack(t *testing.T) {
	wc := &warnCounter{}
	r := NewRendererWithOptions(Options{
		Fonts:  map[string][]byte{"sans-bold": []byte("not a font"), "serif": []byte("x")},
		Logger: slog.New(wc),
	})
	bold := layout.Face{Family: layout.FamilySans, Size: 12, Bold: true}
	got := r.TextWidth("Archive", bold)
	want := NewRenderer().TextWidth("Archive", bold)
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected built-in width %g, got %g", want, got)
	}
	if wc.warns != 2 {
		t.Fatalf("expected 2 warnings (bad key, bad font), got %d", wc.warns)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Set(1, 1, color.RGBA{R: 20, G: 184, B: 166, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sampleResult(t *testing.T) *layout.Result {
	teal := layout.Hex("#14B8A6")
	text := face(layout.FamilySans, 11)
	ref := &layout.ImageRef{Key: "logo.png", PixelWidth: 8, PixelHeight: 4}
	page := func(n int) layout.Page {
		return layout.Page{
			Number: n, Template: "body", Width: 612, Height: 792,
			Decoration: []layout.Op{
				{Kind: layout.OpRect, W: 612, H: 792, Color: layout.Hex("#1A1A1A")},
				{Kind: layout.OpLine, X: 54, Y: 740, X2: 558, Y2: 740, Width: 0.5, Color: teal},
			},
			Content: []layout.Op{
				{Kind: layout.OpRoundRect, X: 54, Y: 600, W: 504, H: 80, Radius: 4, Color: layout.Hex("#242424")},
				{Kind: layout.OpText, X: 70, Y: 650, Text: "Data, not judgment.", Face: &text, Color: text.Color},
				{Kind: layout.OpImage, X: 70, Y: 500, W: 80, H: 40, Image: ref},
			},
		}
	}
	return &layout.Result{
		Pages:  []layout.Page{page(1), page(2)},
		Images: map[string][]byte{"logo.png": pngBytes(t)},
		Meta:   layout.DocumentMeta{Title: "Complete Archive", Author: "folio", Keywords: []string{"a", "b"}},
	}
}

func TestRenderProducesReadablePDF(t *testing.T) {
	data, err := NewRenderer().Render(sampleResult(t))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if n := reader.NumPage(); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
	if title := reader.Trailer().Key("Info").Key("Title").Text(); title != "Complete Archive" {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil result should fail")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("empty result should fail")
	}
	res := sampleResult(t)
	res.Images["logo.png"] = []byte("broken")
	if _, err := r.Render(res); err == nil {
		t.Fatalf("undecodable image should fail")
	}
	res = sampleResult(t)
	res.Pages[0].Content = append(res.Pages[0].Content, layout.Op{Kind: "circle"})
	if _, err := r.Render(res); err == nil {
		t.Fatalf("unknown op should fail")
	}
}
