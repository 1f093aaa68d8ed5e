package layout

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubTypesetter 是测试用的等宽排版器：每个字符占半个字号。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(s string, f Face) float64 {
	return float64(utf8.RuneCountInString(s)) * f.Size * 0.5
}

var testFace = Face{Family: FamilySans, Size: 10}

// para 创建 10pt、行距 20 的段落；宽度 100 时每行 20 个字符。
func para(text string) *Paragraph {
	return NewParagraph(stubTypesetter{}, ParagraphStyle{Face: testFace, Leading: 20}, Run{Text: text, Face: testFace})
}

// words 返回 n 个 "word" 组成的文本；宽度 100 时每行放 4 个。
func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func runText(f Flowable) string {
	p, ok := f.(*Paragraph)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func eq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

func TestParagraphMeasureIdempotent(t *testing.T) {
	p := para(words(40))
	h1 := p.Measure(100)
	h2 := p.Measure(100)
	if h1 != h2 {
		t.Fatalf("重复测量结果不一致: %g != %g", h1, h2)
	}
	if h1 != 200 {
		t.Fatalf("期望 10 行共 200，实际 %g", h1)
	}
	if h := p.Measure(200); h != 100 {
		t.Fatalf("宽度 200 时期望 5 行共 100，实际 %g", h)
	}
	if h := p.Measure(100); h != h1 {
		t.Fatalf("宽度变回 100 后测量结果变化: %g != %g", h, h1)
	}
}

func TestParagraphNeverZeroHeight(t *testing.T) {
	p := para("x")
	if h := p.Measure(100); h <= 0 {
		t.Fatalf("非空段落高度为 %g", h)
	}
}

func TestParagraphBreaksOverlongWord(t *testing.T) {
	p := para(strings.Repeat("x", 50))
	if n := p.LineCount(100); n != 3 {
		t.Fatalf("50 个字符在宽度 100 下期望 3 行，实际 %d", n)
	}
}

func TestParagraphSplitConservation(t *testing.T) {
	text := words(40)
	for avail := 20.0; avail < 200; avail += 7 {
		p := para(text)
		p.Style.SpaceBefore = 4
		p.Style.SpaceAfter = 6
		total := p.Measure(100)
		sp := p.Split(100, avail)
		if sp.Outcome != Parts {
			if avail < p.Style.SpaceBefore+p.Style.Leading && sp.Outcome == Defer {
				continue
			}
			t.Fatalf("avail=%g 期望 Parts，实际 %s", avail, sp.Outcome)
		}
		first := sp.First.Measure(100)
		if first > avail {
			t.Fatalf("avail=%g 前半部分高度 %g 超出", avail, first)
		}
		rest := sp.Rest.Measure(100)
		if first+rest > total+1e-9 {
			t.Fatalf("avail=%g 拆分后高度之和 %g 大于原高度 %g", avail, first+rest, total)
		}
		got := append(strings.Fields(runText(sp.First)), strings.Fields(runText(sp.Rest))...)
		if !reflect.DeepEqual(got, strings.Fields(text)) {
			t.Fatalf("avail=%g 拆分后内容顺序或数量变化", avail)
		}
	}
}

func TestParagraphDefersBelowOneLine(t *testing.T) {
	p := para(words(40))
	if sp := p.Split(100, 15); sp.Outcome != Defer {
		t.Fatalf("一行都放不下时期望 Defer，实际 %s", sp.Outcome)
	}
}

// testBox 返回 n 个两行段落组成的容器；宽度 132 时内部宽度为 100，每个子元素高 40。
func testBox(n int, pad float64) *Box {
	children := make([]Flowable, n)
	for i := range children {
		children[i] = para(words(8))
	}
	return NewBox(BoxStyle{Background: Hex("#242424"), Fill: true, Border: Hex("#14B8A6"), BorderWidth: 3, Padding: pad, Radius: 4}, children...)
}

func TestBoxMeasure(t *testing.T) {
	b := testBox(10, 12)
	if h := b.Measure(132); h != 424 {
		t.Fatalf("期望 10*40+24=424，实际 %g", h)
	}
	if h := NewBox(BoxStyle{Padding: 12}, nil, nil).Measure(132); h != 0 {
		t.Fatalf("没有子元素的容器高度应为 0，实际 %g", h)
	}
}

func TestBoxSplitConservation(t *testing.T) {
	for avail := 200.0; avail < 424; avail += 13 {
		b := testBox(10, 12)
		total := b.Measure(132)
		sp := b.Split(132, avail)
		if sp.Outcome != Parts {
			t.Fatalf("avail=%g 期望 Parts，实际 %s", avail, sp.Outcome)
		}
		first, rest := sp.First.(*Box), sp.Rest.(*Box)
		if len(first.Children) == 0 || len(rest.Children) == 0 {
			t.Fatalf("avail=%g 拆分出了空容器", avail)
		}
		if h := first.Measure(132); h > avail {
			t.Fatalf("avail=%g 前半部分高度 %g 超出", avail, h)
		}
		if sum := first.Measure(132) + rest.Measure(132); sum > total+2*b.Style.Padding {
			t.Fatalf("avail=%g 高度之和 %g 超出容差", avail, sum)
		}
		if first.Style != b.Style || rest.Style != b.Style {
			t.Fatalf("avail=%g 拆分后样式不一致", avail)
		}
		all := append(append([]Flowable{}, first.Children...), rest.Children...)
		if len(all) != len(b.Children) {
			t.Fatalf("avail=%g 子元素数量 %d != %d", avail, len(all), len(b.Children))
		}
		for i := range all {
			if all[i] != b.Children[i] {
				t.Fatalf("avail=%g 第 %d 个子元素顺序错误", avail, i)
			}
		}
	}
}

func TestBoxDefers(t *testing.T) {
	b := testBox(10, 12)
	if sp := b.Split(132, MinSplitHeight-1); sp.Outcome != Defer {
		t.Fatalf("低于最小拆分高度时期望 Defer，实际 %s", sp.Outcome)
	}
	tall := NewBox(BoxStyle{Padding: 12}, para(words(80)), para(words(4)))
	if sp := tall.Split(132, 300); sp.Outcome != Defer {
		t.Fatalf("首个子元素放不下时期望 Defer，实际 %s", sp.Outcome)
	}
}

// testTable 构造 cols 列的表格；宽度 500 时单元格宽 84，每行放 3 个 "word"。
func testTable(cols int, cellWords ...int) *Table {
	style := TableStyle{HeaderBackground: Hex("#222222"), Background: Hex("#1E1E1E"), Grid: Hex("#333333"), GridWidth: 0.5, PadX: 8, PadY: 6}
	t := &Table{Style: style}
	for c := 0; c < cols; c++ {
		t.Header = append(t.Header, para("h"))
	}
	for _, n := range cellWords {
		row := make([]Flowable, cols)
		for c := range row {
			row[c] = para("a")
		}
		row[cols-1] = para(words(n))
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestTableRowHeights(t *testing.T) {
	tb := testTable(5, 1, 15, 1)
	// 表头 32 + 行一 32 + 行二 5 行 112 + 行三 32
	if h := tb.Measure(500); h != 208 {
		t.Fatalf("期望表格高度 208，实际 %g", h)
	}
}

func TestTableSplitsOnRowBoundaries(t *testing.T) {
	for avail := 64.0; avail < 208; avail += 5 {
		tb := testTable(5, 1, 15, 1)
		sp := tb.Split(500, avail)
		if sp.Outcome != Parts {
			t.Fatalf("avail=%g 期望 Parts，实际 %s", avail, sp.Outcome)
		}
		first, rest := sp.First.(*Table), sp.Rest.(*Table)
		if h := first.Measure(500); h > avail {
			t.Fatalf("avail=%g 前半部分高度 %g 超出", avail, h)
		}
		if len(first.Rows)+len(rest.Rows) != len(tb.Rows) {
			t.Fatalf("avail=%g 行数不守恒", avail)
		}
		for i, row := range append(append([][]Flowable{}, first.Rows...), rest.Rows...) {
			if len(row) != 5 {
				t.Fatalf("avail=%g 第 %d 行的单元格被拆开", avail, i)
			}
			for c := range row {
				if row[c] != tb.Rows[i][c] {
					t.Fatalf("avail=%g 第 %d 行第 %d 列不匹配", avail, i, c)
				}
			}
		}
	}
}

func TestTableDefersWhenOnlyHeaderFits(t *testing.T) {
	tb := testTable(5, 1, 15, 1)
	if sp := tb.Split(500, 40); sp.Outcome != Defer {
		t.Fatalf("只放得下表头时期望 Defer，实际 %s", sp.Outcome)
	}
}

func TestSpacerOverflowConsumesFrame(t *testing.T) {
	s := &Spacer{Height: 50}
	sp := s.Split(100, 30)
	if sp.Outcome != Parts || sp.Rest != nil {
		t.Fatalf("溢出的空白应只返回前半部分，实际 %+v", sp)
	}
	if h := sp.First.Measure(100); h != 30 {
		t.Fatalf("期望吃掉剩余的 30，实际 %g", h)
	}
}

func TestImageKeepsAspectRatio(t *testing.T) {
	im := &Image{Ref: ImageRef{Key: "logo", PixelWidth: 200, PixelHeight: 100}}
	if h := im.Measure(300); h != 150 {
		t.Fatalf("期望 150，实际 %g", h)
	}
	head, rest := im.truncate(300, 60)
	small := head.(*Image)
	if rest != nil {
		t.Fatalf("图片不可拆分，不应有剩余部分")
	}
	if h := small.Measure(300); !eq(h, 60) {
		t.Fatalf("截断后期望高度 60，实际 %g", h)
	}
}

func TestWriteAreaTruncate(t *testing.T) {
	w := &WriteArea{Lines: 20, Label: "What fired?"}
	if h := w.Measure(400); h != 16+20*24+8 {
		t.Fatalf("书写区高度错误: %g", h)
	}
	cut, _ := w.truncate(400, 150)
	if h := cut.Measure(400); h > 150 {
		t.Fatalf("截断后高度 %g 超出 150", h)
	}
}
