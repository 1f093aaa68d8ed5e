package layout

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoTemplates 表示文档没有任何页面模板。
var ErrNoTemplates = errors.New("文档缺少页面模板")

// Rect 以左下角为原点描述矩形区域（pt）。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageTemplate 是具名的页面装饰与 frame 几何。
// Decorate 在页面完成时调用，绘制到装饰层（位于内容之下）。
type PageTemplate struct {
	Name     string
	Frame    Rect
	Decorate func(c Canvas)
}

// TemplateSwitch 指定从第 Page 页（从 1 开始）起使用 Template。
type TemplateSwitch struct {
	Page     int
	Template string
}

// Document 是一次分页的全部输入，只消费一次。
type Document struct {
	Width     float64
	Height    float64
	Flowables []Flowable
	Templates []PageTemplate
	// Initial 为首页模板，为空时使用 Templates[0]。
	Initial  string
	Switches []TemplateSwitch
	Meta     DocumentMeta
}

// Frame 是页面上的可填充区域，cursor 自顶向下推进。
type Frame struct {
	Rect
	used   float64
	placed int
}

// Remaining 返回剩余高度。
func (f *Frame) Remaining() float64 { return f.Height - f.used }

// Empty 判断是否尚未放置任何内容。
func (f *Frame) Empty() bool { return f.placed == 0 && f.used == 0 }

type pending struct {
	f       Flowable
	index   int
	part    bool
	retried bool
}

type engine struct {
	doc       *Document
	log       *slog.Logger
	rec       *Recorder
	templates map[string]*PageTemplate
	switches  map[int]string
	requests  []string

	page     int
	template *PageTemplate
	frame    Frame
}

// Paginate 将 flowable 序列逐页填入 frame，返回显示列表。
//
// 每个 flowable：能放下则放置；否则调用 Split。Parts 时放置前半部分、结束本页，
// 剩余部分在新页重新排队；Defer 时结束本页后在新 frame 上重试一次，
// 若在空 frame 上仍然 Defer，则截断放置并记录告警。
func Paginate(doc *Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if len(doc.Templates) == 0 {
		return nil, ErrNoTemplates
	}
	e := &engine{
		doc:       doc,
		log:       opts.logger(),
		rec:       NewRecorder(doc.Meta),
		templates: make(map[string]*PageTemplate, len(doc.Templates)),
		switches:  make(map[int]string, len(doc.Switches)),
	}
	for i := range doc.Templates {
		t := &doc.Templates[i]
		if t.Frame.Width <= 0 || t.Frame.Height <= 0 {
			return nil, fmt.Errorf("页面模板 %s 的 frame 尺寸无效", t.Name)
		}
		e.templates[t.Name] = t
	}
	for _, s := range doc.Switches {
		if _, ok := e.templates[s.Template]; !ok {
			return nil, fmt.Errorf("模板切换引用了未知模板 %s（第 %d 页）", s.Template, s.Page)
		}
		e.switches[s.Page] = s.Template
	}
	initial := doc.Initial
	if initial == "" {
		initial = doc.Templates[0].Name
	}
	if name, ok := e.switches[1]; ok {
		initial = name
	}
	if _, ok := e.templates[initial]; !ok {
		return nil, fmt.Errorf("未知的首页模板 %s", initial)
	}
	e.template = e.templates[initial]

	queue := make([]pending, 0, len(doc.Flowables))
	for i, f := range doc.Flowables {
		if f != nil {
			queue = append(queue, pending{f: f, index: i})
		}
	}

	e.startPage()
	var carry *pending
	for i := 0; i < len(queue) || carry != nil; {
		var it pending
		if carry != nil {
			it, carry = *carry, nil
		} else {
			it = queue[i]
			i++
		}
		if rest, ok := e.step(it); ok {
			carry = &rest
		}
	}
	e.finish()
	return e.rec.Result(), nil
}

// step 放置一个排队项；返回需要重新排到队首的项。
func (e *engine) step(it pending) (pending, bool) {
	switch f := it.f.(type) {
	case *PageBreak:
		if f.IfNotEmpty && e.frame.Empty() {
			return pending{}, false
		}
		e.newPage()
		return pending{}, false
	case *NextTemplate:
		if _, ok := e.templates[f.Name]; !ok {
			e.log.Warn("忽略未知的页面模板请求", "template", f.Name, "page", e.page)
			return pending{}, false
		}
		e.requests = append(e.requests, f.Name)
		return pending{}, false
	}

	width := e.frame.Width
	h := it.f.Measure(width)
	avail := e.frame.Remaining()
	if h <= avail {
		e.place(it, it.f, h, false)
		return pending{}, false
	}

	sp := it.f.Split(width, avail)
	switch sp.Outcome {
	case Parts:
		if sp.First != nil {
			e.place(it, sp.First, sp.First.Measure(width), false)
		}
		e.newPage()
		if sp.Rest == nil {
			return pending{}, false
		}
		return pending{f: sp.Rest, index: it.index, part: true}, true
	case Defer:
		if e.frame.Empty() {
			head, rest := it.f.truncate(width, avail)
			e.log.Warn("内容高于整个 frame，已截断放置",
				"kind", it.f.kind(), "index", it.index, "page", e.page,
				"height", h, "frame", avail, "retried", it.retried)
			e.place(it, head, head.Measure(width), true)
			if rest == nil {
				return pending{}, false
			}
			e.newPage()
			return pending{f: rest, index: it.index, part: true}, true
		}
		e.newPage()
		it.retried = true
		return it, true
	default:
		e.place(it, it.f, h, false)
		return pending{}, false
	}
}

func (e *engine) place(it pending, f Flowable, h float64, truncated bool) {
	fr := &e.frame
	y := fr.Y + fr.Height - fr.used - h
	f.Render(e.rec, fr.X, y)
	fr.used += h
	fr.placed++
	e.rec.Place(Placement{
		Index:     it.index,
		Kind:      f.kind(),
		Y:         y,
		Height:    h,
		Part:      it.part || f != it.f,
		Truncated: truncated,
	})
}

func (e *engine) startPage() {
	e.page++
	e.rec.BeginPage(e.page, e.template.Name, e.doc.Width, e.doc.Height)
	e.frame = Frame{Rect: e.template.Frame}
}

// finalize 在当前页完成时调用模板装饰。
func (e *engine) finalize() {
	if e.template.Decorate == nil {
		return
	}
	e.rec.SetDecorating(true)
	e.template.Decorate(e.rec)
	e.rec.SetDecorating(false)
}

// nextTemplate 选择下一页模板：显式切换表优先，其次是排队的请求，否则沿用当前模板。
func (e *engine) nextTemplate(page int) *PageTemplate {
	if name, ok := e.switches[page]; ok {
		return e.templates[name]
	}
	if len(e.requests) > 0 {
		name := e.requests[0]
		e.requests = e.requests[1:]
		return e.templates[name]
	}
	return e.template
}

func (e *engine) newPage() {
	e.finalize()
	e.template = e.nextTemplate(e.page + 1)
	e.startPage()
}

// finish 完成最后一页；由分页符留下的尾部空白页直接丢弃。
func (e *engine) finish() {
	if e.frame.Empty() && e.page > 1 {
		e.rec.DropPage()
		e.page--
		return
	}
	e.finalize()
}
