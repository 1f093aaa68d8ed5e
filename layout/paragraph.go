package layout

import (
	"unicode"
	"unicode/utf8"
)

// Run 是一段使用同一字体的文本。
type Run struct {
	Text string `json:"text"`
	Face Face   `json:"face"`
}

// ParagraphStyle 描述段落的行距、间距、缩进与对齐。
type ParagraphStyle struct {
	// Face 决定基线位置，通常与正文字体一致。
	Face        Face
	Leading     float64
	SpaceBefore float64
	SpaceAfter  float64
	LeftIndent  float64
	RightIndent float64
	Align       Align
}

// Paragraph 将多段 Run 贪心折行，按行拆分。
type Paragraph struct {
	Runs  []Run
	Style ParagraphStyle
	// Label 绘制在首行、距左边 LabelIndent 处（项目符号或编号）。
	Label       []Run
	LabelIndent float64

	ts    Typesetter
	cache measureCache
	lines []textLine
}

var _ Flowable = (*Paragraph)(nil)

// NewParagraph 创建段落；ts 用于测量文本宽度。
func NewParagraph(ts Typesetter, style ParagraphStyle, runs ...Run) *Paragraph {
	return &Paragraph{Runs: runs, Style: style, ts: ts}
}

// position 指向 Runs 中的一个字节位置。
type position struct {
	run, off int
}

type segment struct {
	run, start, end int
	width           float64
}

type textLine struct {
	segs  []segment
	width float64
	start position
}

type token struct {
	run, start, end int
	space           bool
	width           float64
}

func (p *Paragraph) kind() string { return "paragraph" }

// Measure 返回 space-before + 行数 × 行距 + space-after。
func (p *Paragraph) Measure(width float64) float64 {
	if h, ok := p.cache.get(width); ok {
		return h
	}
	lines := p.layout(width)
	h := p.Style.SpaceBefore + float64(len(lines))*p.Style.Leading + p.Style.SpaceAfter
	return p.cache.put(width, h)
}

// LineCount 返回给定宽度下的行数。
func (p *Paragraph) LineCount(width float64) int {
	p.Measure(width)
	return len(p.lines)
}

// Split 在行边界拆分；一行都放不下时返回 Defer。
func (p *Paragraph) Split(width, height float64) Split {
	if p.Measure(width) <= height {
		return Split{Outcome: Whole}
	}
	lines := p.lines
	k := p.fitLines(height)
	if k < 1 {
		return Split{Outcome: Defer}
	}
	if k >= len(lines) {
		// 所有行都放得下，只是段后间距放不下
		return Split{Outcome: Parts, First: p.head(len(lines))}
	}
	return Split{Outcome: Parts, First: p.head(k), Rest: p.tail(k)}
}

func (p *Paragraph) fitLines(height float64) int {
	if p.Style.Leading <= 0 {
		return len(p.lines)
	}
	k := int((height - p.Style.SpaceBefore + 1e-9) / p.Style.Leading)
	if k > len(p.lines) {
		k = len(p.lines)
	}
	return k
}

// truncate 至少保留一行；其余行作为续排内容返回。
func (p *Paragraph) truncate(width, height float64) (Flowable, Flowable) {
	p.Measure(width)
	k := max(p.fitLines(height), 1)
	if k >= len(p.lines) {
		return p.head(len(p.lines)), nil
	}
	return p.head(k), p.tail(k)
}

// head 返回前 k 行组成的段落，不带段后间距。
func (p *Paragraph) head(k int) *Paragraph {
	out := p.clone()
	out.Style.SpaceAfter = 0
	if k < len(p.lines) {
		out.Runs, _ = cutRuns(p.Runs, p.lines[k].start)
	}
	return out
}

// tail 返回从第 k 行开始的段落，不带段前间距与标签。
func (p *Paragraph) tail(k int) *Paragraph {
	out := p.clone()
	out.Style.SpaceBefore = 0
	out.Label = nil
	_, out.Runs = cutRuns(p.Runs, p.lines[k].start)
	return out
}

func (p *Paragraph) clone() *Paragraph {
	return &Paragraph{
		Runs:        p.Runs,
		Style:       p.Style,
		Label:       p.Label,
		LabelIndent: p.LabelIndent,
		ts:          p.ts,
	}
}

func cutRuns(runs []Run, at position) (before, after []Run) {
	for i, r := range runs {
		switch {
		case i < at.run:
			before = append(before, r)
		case i == at.run:
			if at.off > 0 {
				before = append(before, Run{Text: r.Text[:at.off], Face: r.Face})
			}
			if at.off < len(r.Text) {
				after = append(after, Run{Text: r.Text[at.off:], Face: r.Face})
			}
		default:
			after = append(after, r)
		}
	}
	return before, after
}

// Render 逐行绘制；基线位于每行行框中部略下。
func (p *Paragraph) Render(c Canvas, x, y float64) {
	width := p.cache.width
	h := p.Measure(width)
	lines := p.lines
	top := y + h - p.Style.SpaceBefore
	avail := p.available(width)
	for i, ln := range lines {
		baseline := top - float64(i)*p.Style.Leading - p.baselineOffset()
		lx := x + p.Style.LeftIndent
		switch p.Style.Align {
		case AlignCenter:
			lx += (avail - ln.width) / 2
		case AlignRight:
			lx += avail - ln.width
		}
		if i == 0 && len(p.Label) > 0 {
			p.renderLabel(c, x+p.LabelIndent, baseline)
		}
		for _, s := range ln.segs {
			r := p.Runs[s.run]
			c.Text(lx, baseline, r.Text[s.start:s.end], r.Face)
			lx += s.width
		}
	}
}

func (p *Paragraph) renderLabel(c Canvas, x, baseline float64) {
	for _, r := range p.Label {
		c.Text(x, baseline, r.Text, r.Face)
		x += p.width(r.Text, r.Face)
	}
}

func (p *Paragraph) baselineOffset() float64 {
	return p.Style.Leading/2 + p.Style.Face.Size*0.3
}

func (p *Paragraph) available(width float64) float64 {
	avail := width - p.Style.LeftIndent - p.Style.RightIndent
	if avail <= 0 {
		avail = width
	}
	return avail
}

func (p *Paragraph) width(s string, f Face) float64 {
	if p.ts == nil {
		// 无排版器时按半个字号估算字宽
		return float64(utf8.RuneCountInString(s)) * f.Size * 0.5
	}
	return p.ts.TextWidth(s, f)
}

// layout 贪心折行：优先在空白处断开，超长单词按字符拆分。
func (p *Paragraph) layout(width float64) []textLine {
	if p.lines != nil && p.cache.ok && p.cache.width == width {
		return p.lines
	}
	limit := p.available(width)
	tokens := p.tokenize()

	var (
		lines   []textLine
		cur     textLine
		started bool
		pending []token
	)
	commit := func(t token) {
		if !started {
			cur.start = position{run: t.run, off: t.start}
			started = true
		}
		n := len(cur.segs)
		if n > 0 && cur.segs[n-1].run == t.run && cur.segs[n-1].end == t.start {
			cur.segs[n-1].end = t.end
			cur.segs[n-1].width += t.width
		} else {
			cur.segs = append(cur.segs, segment{run: t.run, start: t.start, end: t.end, width: t.width})
		}
		cur.width += t.width
	}
	flush := func() {
		lines = append(lines, cur)
		cur = textLine{}
		started = false
		pending = pending[:0]
	}

	for _, t := range tokens {
		if t.space {
			if !started {
				if len(lines) == 0 {
					// 首行的行首空白（如代码缩进）保留
					commit(t)
				}
				continue
			}
			pending = append(pending, t)
			continue
		}
		spaceW := 0.0
		for _, s := range pending {
			spaceW += s.width
		}
		if started && cur.width+spaceW+t.width > limit {
			flush()
		}
		if started {
			for _, s := range pending {
				commit(s)
			}
		}
		pending = pending[:0]
		if t.width <= limit {
			commit(t)
			continue
		}
		for _, chunk := range p.breakToken(t, limit) {
			if started && cur.width+chunk.width > limit {
				flush()
			}
			commit(chunk)
		}
	}
	if started || len(lines) == 0 {
		lines = append(lines, cur)
	}
	p.lines = lines
	return lines
}

// breakToken 将超长单词拆成宽度不超过 limit 的若干块（每块至少一个字符）。
func (p *Paragraph) breakToken(t token, limit float64) []token {
	text := p.Runs[t.run].Text
	face := p.Runs[t.run].Face
	var out []token
	start := t.start
	for start < t.end {
		end := start
		w := 0.0
		for end < t.end {
			_, size := utf8.DecodeRuneInString(text[end:t.end])
			nw := p.width(text[start:end+size], face)
			if nw > limit && end > start {
				break
			}
			end += size
			w = nw
		}
		out = append(out, token{run: t.run, start: start, end: end, width: w})
		start = end
	}
	return out
}

func (p *Paragraph) tokenize() []token {
	var tokens []token
	for ri, r := range p.Runs {
		text := r.Text
		i := 0
		for i < len(text) {
			ch, size := utf8.DecodeRuneInString(text[i:])
			space := unicode.IsSpace(ch)
			j := i + size
			for j < len(text) {
				next, n := utf8.DecodeRuneInString(text[j:])
				if unicode.IsSpace(next) != space {
					break
				}
				j += n
			}
			tokens = append(tokens, token{run: ri, start: i, end: j, space: space, width: p.width(text[i:j], r.Face)})
			i = j
		}
	}
	return tokens
}
