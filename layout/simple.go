package layout

// Rule 是水平分隔线；Ornament 为 true 时绘制居中的装饰分隔（两段短线夹一个菱形块）。
type Rule struct {
	Color     Color
	Accent    Color
	Thickness float64
	Ornament  bool

	cache measureCache
}

var _ Flowable = (*Rule)(nil)

func (r *Rule) kind() string { return "rule" }

// Measure 普通分隔线为 thickness + 6，装饰分隔固定 20。
func (r *Rule) Measure(width float64) float64 {
	if r.Ornament {
		return r.cache.put(width, 20)
	}
	return r.cache.put(width, r.Thickness+6)
}

func (r *Rule) Split(width, height float64) Split {
	if r.Measure(width) <= height {
		return Split{Outcome: Whole}
	}
	return Split{Outcome: Defer}
}

func (r *Rule) truncate(float64, float64) (Flowable, Flowable) { return r, nil }

func (r *Rule) Render(c Canvas, x, y float64) {
	width := r.cache.width
	if !r.Ornament {
		c.Line(x, y+3, x+width, y+3, r.Thickness, r.Color)
		return
	}
	mid := x + width/2
	c.Line(mid-120, y+10, mid-15, y+10, 0.5, r.Color)
	c.FillRoundedRect(mid-4, y+6, 8, 8, 1, r.Accent)
	c.Line(mid+15, y+10, mid+120, y+10, 0.5, r.Color)
}

// Spacer 是固定高度的空白；溢出时吃掉 frame 剩余高度且不续到下一页。
type Spacer struct {
	Height float64
}

var _ Flowable = (*Spacer)(nil)

func (s *Spacer) kind() string                  { return "spacer" }
func (s *Spacer) Measure(float64) float64        { return s.Height }
func (s *Spacer) Render(Canvas, float64, float64) {}

func (s *Spacer) Split(width, height float64) Split {
	if s.Height <= height {
		return Split{Outcome: Whole}
	}
	if height < 0 {
		height = 0
	}
	return Split{Outcome: Parts, First: &Spacer{Height: height}}
}

func (s *Spacer) truncate(_, height float64) (Flowable, Flowable) {
	if height < s.Height {
		return &Spacer{Height: height}, nil
	}
	return s, nil
}

// Image 按宽度等比缩放绘制位图。
type Image struct {
	Ref ImageRef
	// Width 为期望宽度，0 表示占满可用宽度；超过可用宽度时缩小。
	Width float64
	Align Align

	cache measureCache
}

var _ Flowable = (*Image)(nil)

func (im *Image) kind() string { return "image" }

func (im *Image) drawWidth(width float64) float64 {
	w := im.Width
	if w <= 0 || w > width {
		w = width
	}
	return w
}

func (im *Image) Measure(width float64) float64 {
	if h, ok := im.cache.get(width); ok {
		return h
	}
	if im.Ref.PixelWidth <= 0 || im.Ref.PixelHeight <= 0 {
		return im.cache.put(width, 0)
	}
	w := im.drawWidth(width)
	return im.cache.put(width, w*float64(im.Ref.PixelHeight)/float64(im.Ref.PixelWidth))
}

func (im *Image) Split(width, height float64) Split {
	if im.Measure(width) <= height {
		return Split{Outcome: Whole}
	}
	return Split{Outcome: Defer}
}

// truncate 缩小图片直到高度放得下。
func (im *Image) truncate(width, height float64) (Flowable, Flowable) {
	if im.Ref.PixelHeight <= 0 || height <= 0 {
		return im, nil
	}
	w := height * float64(im.Ref.PixelWidth) / float64(im.Ref.PixelHeight)
	if w > im.drawWidth(width) {
		w = im.drawWidth(width)
	}
	return &Image{Ref: im.Ref, Width: w, Align: im.Align}, nil
}

func (im *Image) Render(c Canvas, x, y float64) {
	width := im.cache.width
	h := im.Measure(width)
	if h == 0 {
		return
	}
	w := im.drawWidth(width)
	switch im.Align {
	case AlignCenter:
		x += (width - w) / 2
	case AlignRight:
		x += width - w
	}
	c.Image(x, y, w, h, im.Ref)
}

// WriteArea 是练习页上带标签的书写横线。
type WriteArea struct {
	Lines      int
	Label      string
	LabelFace  Face
	LineColor  Color
	LineHeight float64

	cache measureCache
}

var _ Flowable = (*WriteArea)(nil)

func (w *WriteArea) kind() string { return "writeArea" }

func (w *WriteArea) lineHeight() float64 {
	if w.LineHeight <= 0 {
		return 24
	}
	return w.LineHeight
}

func (w *WriteArea) labelHeight() float64 {
	if w.Label == "" {
		return 0
	}
	return 16
}

func (w *WriteArea) Measure(width float64) float64 {
	return w.cache.put(width, w.labelHeight()+float64(w.Lines)*w.lineHeight()+8)
}

func (w *WriteArea) Split(width, height float64) Split {
	if w.Measure(width) <= height {
		return Split{Outcome: Whole}
	}
	return Split{Outcome: Defer}
}

// truncate 减少横线数量直到放得下，至少保留一条。
func (w *WriteArea) truncate(_, height float64) (Flowable, Flowable) {
	n := int((height - w.labelHeight() - 8) / w.lineHeight())
	if n < 1 {
		n = 1
	}
	if n >= w.Lines {
		return w, nil
	}
	out := *w
	out.Lines = n
	out.cache = measureCache{}
	return &out, nil
}

func (w *WriteArea) Render(c Canvas, x, y float64) {
	width := w.cache.width
	top := y + w.Measure(width)
	if w.Label != "" {
		top -= 14
		c.Text(x, top, w.Label, w.LabelFace)
		top -= 6
	}
	for i := 0; i < w.Lines; i++ {
		top -= w.lineHeight()
		c.Line(x+8, top, x+width-8, top, 0.5, w.LineColor)
	}
}

// PageBreak 强制结束当前页；IfNotEmpty 为 true 时当前页为空则忽略。
type PageBreak struct {
	IfNotEmpty bool
}

var _ Flowable = (*PageBreak)(nil)

func (*PageBreak) kind() string                                    { return "pageBreak" }
func (*PageBreak) Measure(float64) float64                         { return 0 }
func (*PageBreak) Split(float64, float64) Split                    { return Split{Outcome: Whole} }
func (*PageBreak) Render(Canvas, float64, float64)                 {}
func (b *PageBreak) truncate(float64, float64) (Flowable, Flowable) { return b, nil }

// NextTemplate 请求下一页使用指定模板；不影响当前页。
type NextTemplate struct {
	Name string
}

var _ Flowable = (*NextTemplate)(nil)

func (*NextTemplate) kind() string                                    { return "nextTemplate" }
func (*NextTemplate) Measure(float64) float64                         { return 0 }
func (*NextTemplate) Split(float64, float64) Split                    { return Split{Outcome: Whole} }
func (*NextTemplate) Render(Canvas, float64, float64)                 {}
func (n *NextTemplate) truncate(float64, float64) (Flowable, Flowable) { return n, nil }
