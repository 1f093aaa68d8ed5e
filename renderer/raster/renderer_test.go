package rasterrenderer

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/ByLCY/folio/layout"
)

func page(n int) layout.Page {
	text := layout.Face{Family: layout.FamilySans, Size: 24, Color: layout.Hex("#FFFFFF")}
	return layout.Page{
		Number: n, Template: "body", Width: 612, Height: 792,
		Decoration: []layout.Op{
			{Kind: layout.OpRect, W: 612, H: 792, Color: layout.Hex("#1A1A1A")},
		},
		Content: []layout.Op{
			{Kind: layout.OpRoundRect, X: 100, Y: 100, W: 200, H: 100, Radius: 4, Color: layout.Hex("#14B8A6")},
			{Kind: layout.OpLine, X: 54, Y: 700, X2: 558, Y2: 700, Width: 2, Color: layout.Hex("#0F7B6E")},
			{Kind: layout.OpText, X: 54, Y: 720, Text: "ARCHIVE", Face: &text, Color: text.Color},
		},
	}
}

func TestRenderContactSheet(t *testing.T) {
	r := NewRenderer(Options{})
	data, err := r.Render(&layout.Result{Pages: []layout.Page{page(1), page(2)}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 2*306+3*12 || b.Dy() != 396+2*12 {
		t.Fatalf("unexpected sheet size %dx%d", b.Dx(), b.Dy())
	}
	// 页面背景
	if r8, g8, b8 := rgb(img, 12+10, 12+10); r8 != 0x1A || g8 != 0x1A || b8 != 0x1A {
		t.Fatalf("expected page background, got %d,%d,%d", r8, g8, b8)
	}
	// 圆角矩形中心：pt (200, 150) → px (100, 396-75)
	if r8, g8, b8 := rgb(img, 12+100, 12+396-75); r8 != 0x14 || g8 != 0xB8 || b8 != 0xA6 {
		t.Fatalf("expected accent box, got %d,%d,%d", r8, g8, b8)
	}
}

func TestMaxPagesLimitsSheet(t *testing.T) {
	r := NewRenderer(Options{MaxPages: 1, Columns: 3})
	data, err := r.Render(&layout.Result{Pages: []layout.Page{page(1), page(2), page(3)}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 306+2*12 {
		t.Fatalf("expected a single column, got width %d", cfg.Width)
	}
}

func TestTextWidth(t *testing.T) {
	r := NewRenderer(Options{})
	sans := layout.Face{Family: layout.FamilySans, Size: 12}
	mono := layout.Face{Family: layout.FamilyMono, Size: 12}
	if r.TextWidth("iiii", sans) >= r.TextWidth("MMMM", sans) {
		t.Fatalf("sans glyphs should be proportional")
	}
	if math.Abs(r.TextWidth("iiii", mono)-r.TextWidth("MMMM", mono)) > 1e-6 {
		t.Fatalf("mono glyphs should share one advance")
	}
	if r.TextWidth("", sans) != 0 {
		t.Fatalf("empty text should be zero width")
	}
}

func TestRenderRejectsUnknownOp(t *testing.T) {
	p := page(1)
	p.Content = append(p.Content, layout.Op{Kind: "circle"})
	if _, err := NewRenderer(Options{}).Render(&layout.Result{Pages: []layout.Page{p}}); err == nil {
		t.Fatalf("expected error for unknown op")
	}
	if _, err := NewRenderer(Options{}).Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

func rgb(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
