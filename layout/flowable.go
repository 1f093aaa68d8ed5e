package layout

// Flowable 是分页引擎放置的最小单位。
// 变体集合是封闭的：Paragraph、Box、Table、Rule、Spacer、Image、WriteArea，
// 以及控制项 PageBreak、NextTemplate。
type Flowable interface {
	// Measure 返回在给定宽度下的高度；同一宽度重复调用结果一致。
	Measure(width float64) float64
	// Split 在可用高度不足时决定如何拆分。
	Split(width, height float64) Split
	// Render 以 (x, y) 为自身左下角绘制；y 轴向上。
	// 调用前须以放置时的宽度调用过 Measure。
	Render(c Canvas, x, y float64)

	// truncate 在空 frame 上仍放不下时调用：head 截断到 height 以内，
	// rest 为可续排到下一页的剩余内容（不可再分的变体返回 nil）。
	truncate(width, height float64) (head, rest Flowable)
	kind() string
}

// Outcome 是 Split 的三种结果。
type Outcome int

const (
	// Whole 表示整体放得下，按原样放置。
	Whole Outcome = iota
	// Parts 表示拆成 First 与 Rest；Rest 为空时没有剩余内容需要续排。
	Parts
	// Defer 表示在此处无法开始，整体移到下一个 frame。
	Defer
)

func (o Outcome) String() string {
	switch o {
	case Whole:
		return "whole"
	case Parts:
		return "parts"
	case Defer:
		return "defer"
	default:
		return "unknown"
	}
}

// Split 描述一次拆分的结果。
type Split struct {
	Outcome Outcome
	First   Flowable
	Rest    Flowable
}

// Kind 返回 flowable 的类型名（paragraph、box、table 等）。
func Kind(f Flowable) string {
	if f == nil {
		return ""
	}
	return f.kind()
}

// measureCache 按宽度缓存测量结果，宽度变化即失效。
type measureCache struct {
	width  float64
	height float64
	ok     bool
}

func (m *measureCache) get(width float64) (float64, bool) {
	if m.ok && m.width == width {
		return m.height, true
	}
	return 0, false
}

func (m *measureCache) put(width, height float64) float64 {
	m.width, m.height, m.ok = width, height, true
	return height
}
