// Package rasterrenderer 把显示列表绘制为 PNG 预览：前若干页按网格缩小拼成一张联系表。
package rasterrenderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// Options 控制联系表的尺寸。
type Options struct {
	// Scale 为每 pt 对应的像素数，默认 0.5。
	Scale float64
	// Columns 为每行页数，默认 4。
	Columns int
	// MaxPages 为最多绘制的页数，默认 8；小于 0 表示全部。
	MaxPages int
	// Gap 为页与页之间的像素间距，默认 12。
	Gap int
	// Fonts 以字形键覆盖内置字体。
	Fonts  map[string][]byte
	Logger *slog.Logger
}

// Renderer 使用 gg 绘制位图；字体由 freetype 解析，可并发复用。
type Renderer struct {
	opts      Options
	overrides map[string][]byte
	log       *slog.Logger

	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	font string
	size float64
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// NewRenderer 创建预览渲染器，零值选项使用默认值。
func NewRenderer(opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = 0.5
	}
	if opts.Columns <= 0 {
		opts.Columns = 4
	}
	if opts.MaxPages == 0 {
		opts.MaxPages = 8
	}
	if opts.Gap <= 0 {
		opts.Gap = 12
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	r := &Renderer{
		opts:      opts,
		overrides: map[string][]byte{},
		log:       log,
		fonts:     map[string]*truetype.Font{},
		faces:     map[faceKey]font.Face{},
	}
	for key, data := range opts.Fonts {
		family, bold, italic, err := fonts.ParseKey(key)
		if err != nil {
			log.Warn("忽略无效的字体覆盖", "key", key, "err", err)
			continue
		}
		r.overrides[fonts.Key(family, bold, italic)] = data
	}
	return r
}

// Render 输出联系表 PNG。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	pages := result.Pages
	if r.opts.MaxPages > 0 && len(pages) > r.opts.MaxPages {
		pages = pages[:r.opts.MaxPages]
	}
	cols := r.opts.Columns
	if len(pages) < cols {
		cols = len(pages)
	}
	rows := (len(pages) + cols - 1) / cols

	cellW, cellH := 0, 0
	for _, p := range pages {
		w, h := r.px(p.Width), r.px(p.Height)
		cellW, cellH = max(cellW, int(math.Ceil(w))), max(cellH, int(math.Ceil(h)))
	}
	gap := r.opts.Gap
	sheet := gg.NewContext(cols*cellW+(cols+1)*gap, rows*cellH+(rows+1)*gap)
	sheet.SetRGB255(64, 64, 64)
	sheet.Clear()

	images := decodeImages(result.Images, r.log)
	for i, p := range pages {
		img, err := r.RenderPage(p, images)
		if err != nil {
			return nil, err
		}
		x := gap + (i%cols)*(cellW+gap)
		y := gap + (i/cols)*(cellH+gap)
		sheet.DrawImage(img, x, y)
	}

	var buf bytes.Buffer
	if err := sheet.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPage 绘制单页：先装饰层，再内容层。images 为已解码的图片。
func (r *Renderer) RenderPage(p layout.Page, images map[string]image.Image) (image.Image, error) {
	w := int(math.Ceil(r.px(p.Width)))
	h := int(math.Ceil(r.px(p.Height)))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("第 %d 页尺寸无效", p.Number)
	}
	dc := gg.NewContext(w, h)
	dc.SetRGB255(255, 255, 255)
	dc.Clear()
	for _, ops := range [][]layout.Op{p.Decoration, p.Content} {
		for _, op := range ops {
			if err := r.draw(dc, p.Height, op, images); err != nil {
				return nil, fmt.Errorf("第 %d 页: %w", p.Number, err)
			}
		}
	}
	return dc.Image(), nil
}

// px 把 pt 换算为像素。
func (r *Renderer) px(v float64) float64 { return v * r.opts.Scale }

// draw 把左下角原点的操作翻转到 gg 的左上角原点。
func (r *Renderer) draw(dc *gg.Context, pageH float64, op layout.Op, images map[string]image.Image) error {
	flip := func(y float64) float64 { return r.px(pageH - y) }
	dc.SetRGB255(op.Color.R, op.Color.G, op.Color.B)
	switch op.Kind {
	case layout.OpRect:
		dc.DrawRectangle(r.px(op.X), flip(op.Y+op.H), r.px(op.W), r.px(op.H))
		dc.Fill()
	case layout.OpRoundRect:
		dc.DrawRoundedRectangle(r.px(op.X), flip(op.Y+op.H), r.px(op.W), r.px(op.H), r.px(op.Radius))
		dc.Fill()
	case layout.OpLine:
		dc.SetLineWidth(math.Max(r.px(op.Width), 0.5))
		dc.DrawLine(r.px(op.X), flip(op.Y), r.px(op.X2), flip(op.Y2))
		dc.Stroke()
	case layout.OpText:
		if op.Face == nil {
			return fmt.Errorf("文本 %q 缺少字体", op.Text)
		}
		face, err := r.face(op.Face.Family, op.Face.Bold, op.Face.Italic, r.px(op.Face.Size))
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.DrawString(op.Text, r.px(op.X), flip(op.Y))
	case layout.OpImage:
		if op.Image == nil {
			return nil
		}
		src, ok := images[op.Image.Key]
		if !ok {
			return nil
		}
		w, h := int(math.Round(r.px(op.W))), int(math.Round(r.px(op.H)))
		if w <= 0 || h <= 0 {
			return nil
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		dc.DrawImage(dst, int(math.Round(r.px(op.X))), int(math.Round(flip(op.Y+op.H))))
	default:
		return fmt.Errorf("未知的绘制操作 %q", op.Kind)
	}
	return nil
}

// TextWidth 实现 layout.Typesetter，按 1pt = 1px 测量后返回 pt。
func (r *Renderer) TextWidth(s string, f layout.Face) float64 {
	if s == "" {
		return 0
	}
	face, err := r.face(f.Family, f.Bold, f.Italic, f.Size)
	if err != nil {
		return float64(utf8.RuneCountInString(s)) * f.Size * 0.5
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(font.MeasureString(face, s)) / 64
}

func (r *Renderer) face(family string, bold, italic bool, size float64) (font.Face, error) {
	if size <= 0 {
		size = 1
	}
	key := fonts.Key(family, bold, italic)
	r.mu.Lock()
	defer r.mu.Unlock()
	fk := faceKey{font: key, size: size}
	if f, ok := r.faces[fk]; ok {
		return f, nil
	}
	ft, err := r.font(key, family, bold, italic)
	if err != nil {
		return nil, err
	}
	f := truetype.NewFace(ft, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	r.faces[fk] = f
	return f, nil
}

// font 调用方须持有 r.mu。
func (r *Renderer) font(key, family string, bold, italic bool) (*truetype.Font, error) {
	if ft, ok := r.fonts[key]; ok {
		return ft, nil
	}
	if data, ok := r.overrides[key]; ok {
		ft, err := truetype.Parse(data)
		if err == nil {
			r.fonts[key] = ft
			return ft, nil
		}
		r.log.Warn("覆盖字体解析失败，使用内置字体", "key", key, "err", err)
	}
	ft, err := truetype.Parse(fonts.Load(family, bold, italic))
	if err != nil {
		return nil, fmt.Errorf("解析内置字体 %s 失败: %w", key, err)
	}
	r.fonts[key] = ft
	return ft, nil
}

// decodeImages 解码失败的图片记录告警后忽略，预览不因此中断。
func decodeImages(blobs map[string][]byte, log *slog.Logger) map[string]image.Image {
	out := make(map[string]image.Image, len(blobs))
	for key, data := range blobs {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			log.Warn("预览中跳过无法解码的图片", "key", key, "err", err)
			continue
		}
		out[key] = img
	}
	return out
}
