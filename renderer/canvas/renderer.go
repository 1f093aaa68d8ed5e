package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// 显示列表以 pt 为单位，canvas 以 mm 为单位，两者在绘制边界换算。
type Renderer struct {
	overrides map[string][]byte
	log       *slog.Logger

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// Fonts 以字形键（见 fonts.Key）覆盖内置字体，值为 TTF/OTF 数据。
	Fonts  map[string][]byte
	Logger *slog.Logger
}

// NewRenderer creates a renderer using only the built-in fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected fonts.
func NewRendererWithOptions(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	r := &Renderer{
		overrides: map[string][]byte{},
		log:       log,
		families:  map[string]*canvas.FontFamily{},
	}
	for key, data := range opts.Fonts {
		if len(data) == 0 {
			continue
		}
		family, bold, italic, err := fonts.ParseKey(key)
		if err != nil {
			log.Warn("忽略无效的字体覆盖", "key", key, "err", err)
			continue
		}
		r.overrides[fonts.Key(family, bold, italic)] = data
	}
	return r
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	images, err := decodeImages(result.Images)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianI) // 与显示列表一致：左下角为原点，y 轴向上

		if err := r.drawOps(ctx, page.Decoration, images); err != nil {
			return nil, fmt.Errorf("第 %d 页装饰层: %w", page.Number, err)
		}
		if err := r.drawOps(ctx, page.Content, images); err != nil {
			return nil, fmt.Errorf("第 %d 页内容层: %w", page.Number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// TextWidth 实现 layout.Typesetter：返回文本在给定字体下的宽度（pt）。
func (r *Renderer) TextWidth(s string, f layout.Face) float64 {
	if s == "" {
		return 0
	}
	face, err := r.fontFace(f)
	if err != nil {
		return float64(utf8.RuneCountInString(s)) * f.Size * 0.5
	}
	return face.TextWidth(s) * layout.MmToPt
}

func (r *Renderer) drawOps(ctx *canvas.Context, ops []layout.Op, images map[string]image.Image) error {
	for _, op := range ops {
		switch op.Kind {
		case layout.OpRect:
			fillPath(ctx, op.X, op.Y, canvas.Rectangle(toMm(op.W), toMm(op.H)), op.Color)
		case layout.OpRoundRect:
			fillPath(ctx, op.X, op.Y, canvas.RoundedRectangle(toMm(op.W), toMm(op.H), toMm(op.Radius)), op.Color)
		case layout.OpLine:
			drawLine(ctx, op)
		case layout.OpText:
			if err := r.drawText(ctx, op); err != nil {
				return err
			}
		case layout.OpImage:
			drawImage(ctx, op, images)
		default:
			return fmt.Errorf("未知的绘制操作 %q", op.Kind)
		}
	}
	return nil
}

func fillPath(ctx *canvas.Context, x, y float64, p *canvas.Path, c layout.Color) {
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(colorFromLayout(c))
	ctx.DrawPath(toMm(x), toMm(y), p)
}

// drawLine 绘制直线（线宽为 pt）
func drawLine(ctx *canvas.Context, op layout.Op) {
	w := op.Width
	if w <= 0 {
		w = 0.5
	}
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(colorFromLayout(op.Color))
	ctx.SetStrokeWidth(toMm(w))
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(toMm(op.X2-op.X), toMm(op.Y2-op.Y))
	ctx.DrawPath(toMm(op.X), toMm(op.Y), p)
}

func (r *Renderer) drawText(ctx *canvas.Context, op layout.Op) error {
	if op.Face == nil {
		return fmt.Errorf("文本 %q 缺少字体", op.Text)
	}
	f := *op.Face
	f.Color = op.Color
	face, err := r.fontFace(f)
	if err != nil {
		return err
	}
	ctx.DrawText(toMm(op.X), toMm(op.Y), canvas.NewTextLine(face, op.Text, canvas.Left))
	return nil
}

func drawImage(ctx *canvas.Context, op layout.Op, images map[string]image.Image) {
	if op.Image == nil || op.W <= 0 {
		return
	}
	img, ok := images[op.Image.Key]
	if !ok {
		return
	}
	dpmm := float64(img.Bounds().Dx()) / toMm(op.W)
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(toMm(op.X), toMm(op.Y), img, canvas.DPMM(dpmm))
}

func decodeImages(blobs map[string][]byte) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(blobs))
	for key, data := range blobs {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("解码图片 %s 失败: %w", key, err)
		}
		out[key] = img
	}
	return out, nil
}

func (r *Renderer) fontFace(f layout.Face) (*canvas.FontFace, error) {
	family, err := r.fontFamily(f.Family, f.Bold, f.Italic)
	if err != nil {
		return nil, err
	}
	size := f.Size
	if size <= 0 {
		size = 10
	}
	return family.Face(size, colorFromLayout(f.Color), canvas.FontRegular, canvas.FontNormal), nil
}

// fontFamily 每个字形键对应一个只含常规字重的字体族，粗斜体由不同的字体文件提供。
// 覆盖字体无法加载时记录告警并回退到内置字体。
func (r *Renderer) fontFamily(name string, bold, italic bool) (*canvas.FontFamily, error) {
	key := fonts.Key(name, bold, italic)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[key]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily(key)
	loaded := false
	if data, ok := r.overrides[key]; ok {
		if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
			r.log.Warn("覆盖字体加载失败，使用内置字体", "key", key, "err", err)
			family = canvas.NewFontFamily(key)
		} else {
			loaded = true
		}
	}
	if !loaded {
		if err := family.LoadFont(fonts.Load(name, bold, italic), 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("加载内置字体 %s 失败: %w", key, err)
		}
	}
	r.families[key] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
