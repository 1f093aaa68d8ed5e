package layout

// Recorder 实现 Canvas，将绘制调用记录为显示列表。
type Recorder struct {
	result   *Result
	page     *Page
	decorate bool
}

var _ Canvas = (*Recorder)(nil)

// NewRecorder 创建空的显示列表。
func NewRecorder(meta DocumentMeta) *Recorder {
	return &Recorder{result: &Result{Meta: meta, Images: map[string][]byte{}}}
}

// BeginPage 追加一页，后续绘制落在该页的内容层。
func (r *Recorder) BeginPage(number int, template string, width, height float64) {
	r.result.Pages = append(r.result.Pages, Page{
		Number:   number,
		Template: template,
		Width:    width,
		Height:   height,
	})
	r.page = &r.result.Pages[len(r.result.Pages)-1]
	r.decorate = false
}

// SetDecorating 切换到装饰层（true）或内容层（false）。
func (r *Recorder) SetDecorating(on bool) { r.decorate = on }

// Place 记录一次落位。
func (r *Recorder) Place(p Placement) {
	if r.page == nil {
		return
	}
	r.page.Placements = append(r.page.Placements, p)
}

// DropPage 移除最后一页（用于丢弃文末的空白页）。
func (r *Recorder) DropPage() {
	n := len(r.result.Pages)
	if n == 0 {
		return
	}
	r.result.Pages = r.result.Pages[:n-1]
	r.page = nil
	if n > 1 {
		r.page = &r.result.Pages[n-2]
	}
}

// Result 返回记录结果。
func (r *Recorder) Result() *Result { return r.result }

func (r *Recorder) PageSize() (float64, float64) {
	if r.page == nil {
		return 0, 0
	}
	return r.page.Width, r.page.Height
}

func (r *Recorder) PageNumber() int {
	if r.page == nil {
		return 0
	}
	return r.page.Number
}

func (r *Recorder) FillRect(x, y, w, h float64, c Color) {
	r.add(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Color: c})
}

func (r *Recorder) FillRoundedRect(x, y, w, h, radius float64, c Color) {
	r.add(Op{Kind: OpRoundRect, X: x, Y: y, W: w, H: h, Radius: radius, Color: c})
}

func (r *Recorder) Line(x1, y1, x2, y2, width float64, c Color) {
	r.add(Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Width: width, Color: c})
}

func (r *Recorder) Text(x, y float64, s string, f Face) {
	if s == "" {
		return
	}
	face := f
	r.add(Op{Kind: OpText, X: x, Y: y, Text: s, Face: &face, Color: f.Color})
}

func (r *Recorder) Image(x, y, w, h float64, img ImageRef) {
	if img.Key == "" {
		return
	}
	if _, ok := r.result.Images[img.Key]; !ok {
		r.result.Images[img.Key] = img.Data
	}
	ref := img
	ref.Data = nil
	r.add(Op{Kind: OpImage, X: x, Y: y, W: w, H: h, Image: &ref})
}

func (r *Recorder) add(op Op) {
	if r.page == nil {
		return
	}
	if r.decorate {
		r.page.Decoration = append(r.page.Decoration, op)
		return
	}
	r.page.Content = append(r.page.Content, op)
}
