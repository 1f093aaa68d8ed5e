package layout

// MinSplitHeight 是拆分容器所需的最小可用高度，低于它时整体推迟到下一个 frame。
const MinSplitHeight = 200.0

// boxAccentInset 是左侧强调线为正文让出的宽度。
const boxAccentInset = 8.0

// BoxStyle 描述容器的背景与边框。
type BoxStyle struct {
	Background Color
	// Fill 为 false 时不绘制背景（例如引用块只保留强调线）。
	Fill        bool
	Border      Color
	BorderWidth float64
	Padding     float64
	Radius      float64
}

// Box 是带背景与左侧强调线的容器，只在子元素边界处拆分。
type Box struct {
	Style    BoxStyle
	Children []Flowable

	cache measureCache
}

var _ Flowable = (*Box)(nil)

// NewBox 创建容器，忽略 nil 子元素。
func NewBox(style BoxStyle, children ...Flowable) *Box {
	kept := make([]Flowable, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Box{Style: style, Children: kept}
}

func (b *Box) kind() string { return "box" }

func (b *Box) inner(width float64) float64 {
	w := width - 2*b.Style.Padding - boxAccentInset
	if w < 50 {
		w = 50
	}
	return w
}

// Measure 返回子元素高度之和加上下内边距；没有子元素时高度为 0。
func (b *Box) Measure(width float64) float64 {
	if h, ok := b.cache.get(width); ok {
		return h
	}
	if len(b.Children) == 0 {
		return b.cache.put(width, 0)
	}
	inner := b.inner(width)
	h := 2 * b.Style.Padding
	for _, c := range b.Children {
		h += c.Measure(inner)
	}
	return b.cache.put(width, h)
}

// Split 贪心累加子元素高度，在最后一个完整放下的子元素之后断开。
// 两部分沿用同一样式，因此跨页后仍是视觉一致的续框。
func (b *Box) Split(width, height float64) Split {
	if b.Measure(width) <= height {
		return Split{Outcome: Whole}
	}
	if height < MinSplitHeight {
		return Split{Outcome: Defer}
	}
	k := b.fitChildren(width, height)
	if k == 0 {
		return Split{Outcome: Defer}
	}
	return Split{
		Outcome: Parts,
		First:   b.withChildren(b.Children[:k]),
		Rest:    b.withChildren(b.Children[k:]),
	}
}

func (b *Box) fitChildren(width, height float64) int {
	inner := b.inner(width)
	target := height - 2*b.Style.Padding
	used := 0.0
	for i, c := range b.Children {
		h := c.Measure(inner)
		if used+h > target {
			return i
		}
		used += h
	}
	return len(b.Children)
}

func (b *Box) withChildren(children []Flowable) *Box {
	return &Box{Style: b.Style, Children: append([]Flowable(nil), children...)}
}

// truncate 保留放得下的子元素，其余子元素留给续排的盒子；
// 连第一个子元素都放不下时截断它，它的剩余部分排在续排盒子的最前面。
func (b *Box) truncate(width, height float64) (Flowable, Flowable) {
	if len(b.Children) == 0 {
		return b, nil
	}
	if k := b.fitChildren(width, height); k > 0 {
		if k == len(b.Children) {
			return b.withChildren(b.Children), nil
		}
		return b.withChildren(b.Children[:k]), b.withChildren(b.Children[k:])
	}
	head, rest := b.Children[0].truncate(b.inner(width), height-2*b.Style.Padding)
	var remaining []Flowable
	if rest != nil {
		remaining = append(remaining, rest)
	}
	remaining = append(remaining, b.Children[1:]...)
	if len(remaining) == 0 {
		return b.withChildren([]Flowable{head}), nil
	}
	return b.withChildren([]Flowable{head}), b.withChildren(remaining)
}

// Render 先画背景与强调线，再自上而下绘制子元素。
func (b *Box) Render(c Canvas, x, y float64) {
	width := b.cache.width
	h := b.Measure(width)
	if h == 0 {
		return
	}
	s := b.Style
	if s.Fill {
		c.FillRoundedRect(x, y, width, h, s.Radius, s.Background)
	}
	if s.BorderWidth > 0 {
		c.Line(x+2, y+4, x+2, y+h-4, s.BorderWidth, s.Border)
	}
	inner := b.inner(width)
	cursor := y + h - s.Padding
	for _, child := range b.Children {
		ch := child.Measure(inner)
		cursor -= ch
		child.Render(c, x+s.Padding+boxAccentInset, cursor)
	}
}
