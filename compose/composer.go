// Package compose 把解析得到的 Block 序列转换为可分页的 flowable，并按清单组装整本书。
package compose

import (
	"log/slog"
	"strings"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
	"github.com/ByLCY/folio/style"
)

// 容器的几何参数（pt）。
const (
	boxPadding     = 12
	cardPadding    = 14
	boxRadius      = 4
	boxBorderWidth = 3
	// calloutIndent 是提示框内列表项的左缩进。
	calloutIndent = 16
)

// Composer 依据样式表把 Block 转换为 flowable；一次构建持有一个实例。
type Composer struct {
	reg *style.Registry
	ts  layout.Typesetter
	log *slog.Logger
}

// NewComposer 创建转换器；ts 用于段落测量，log 为 nil 时使用 slog.Default()。
func NewComposer(reg *style.Registry, ts layout.Typesetter, log *slog.Logger) *Composer {
	if reg == nil {
		reg = style.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Composer{reg: reg, ts: ts, log: log}
}

// Registry 返回所用样式表。
func (c *Composer) Registry() *style.Registry { return c.reg }

// Blocks 按顺序转换整段内容。连续的同组代码行合并为一个代码框。
func (c *Composer) Blocks(blocks []markup.Block) []layout.Flowable {
	return c.blocks(blocks, nil)
}

// blocks 转换一组 Block；body 非空时用于提示框内的正文类块。
func (c *Composer) blocks(blocks []markup.Block, body *style.Style) []layout.Flowable {
	var out []layout.Flowable
	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if b.Kind == markup.KindCodeLine {
			j := i
			for j < len(blocks) && blocks[j].Kind == markup.KindCodeLine && blocks[j].Group == b.Group {
				j++
			}
			out = append(out, c.code(blocks[i:j])...)
			i = j - 1
			continue
		}
		out = append(out, c.block(b, body)...)
	}
	return out
}

func (c *Composer) block(b markup.Block, body *style.Style) []layout.Flowable {
	p := c.reg.Palette()
	switch b.Kind {
	case markup.KindHeading2:
		return []layout.Flowable{
			&layout.Spacer{Height: 4},
			c.Paragraph(c.reg.Resolve(b.Kind, b.Subtype), b.Spans),
			&layout.Rule{Color: p.AccentDim, Thickness: 1},
			&layout.Spacer{Height: 4},
		}
	case markup.KindHeading1, markup.KindHeading3, markup.KindHeading4, markup.KindTimestamp:
		return []layout.Flowable{c.Paragraph(c.reg.Resolve(b.Kind, b.Subtype), b.Spans)}
	case markup.KindParagraph:
		s := c.reg.Resolve(b.Kind, b.Subtype)
		if body != nil {
			s = *body
		}
		return []layout.Flowable{c.Paragraph(s, b.Spans)}
	case markup.KindBullet:
		s := c.reg.Resolve(b.Kind, b.Subtype)
		if body != nil {
			s = body.WithIndent(calloutIndent)
		}
		return []layout.Flowable{c.item(s, "•", b.Spans)}
	case markup.KindNumbered:
		s := c.reg.Resolve(b.Kind, b.Subtype)
		if body != nil {
			s = body.WithIndent(calloutIndent + 4)
		}
		return []layout.Flowable{c.item(s, b.Number+".", b.Spans)}
	case markup.KindBlockquote:
		return []layout.Flowable{layout.NewBox(layout.BoxStyle{
			Border:      p.Accent,
			BorderWidth: 2,
			Padding:     6,
		}, c.Paragraph(c.reg.Resolve(b.Kind, b.Subtype), b.Spans))}
	case markup.KindDivider:
		return []layout.Flowable{
			&layout.Spacer{Height: 6},
			&layout.Rule{Color: p.AccentDim, Accent: p.Accent, Thickness: 0.5, Ornament: true},
			&layout.Spacer{Height: 6},
		}
	case markup.KindTable:
		return c.table(b)
	case markup.KindCallout:
		return c.callout(b)
	case markup.KindCodeLine:
		return c.code([]markup.Block{b})
	default:
		c.log.Warn("忽略未知的块类型", "kind", b.Kind.String(), "line", b.Line)
		return nil
	}
}

// Paragraph 用样式 s 排版一组行内片段。
func (c *Composer) Paragraph(s style.Style, spans []markup.Span) *layout.Paragraph {
	return layout.NewParagraph(c.ts, s.Paragraph(), c.Runs(s, spans)...)
}

// Text 用样式 s 排版纯文本。
func (c *Composer) Text(s style.Style, text string) *layout.Paragraph {
	return layout.NewParagraph(c.ts, s.Paragraph(), layout.Run{Text: text, Face: s.Face()})
}

// Runs 把行内片段映射为字体：粗体与斜体叠加在基础字体上，行内代码使用等宽字体与强调色。
func (c *Composer) Runs(s style.Style, spans []markup.Span) []layout.Run {
	runs := make([]layout.Run, 0, len(spans))
	for _, sp := range spans {
		if sp.Text == "" {
			continue
		}
		f := s.Face()
		if sp.Bold {
			f.Bold = true
		}
		if sp.Italic {
			f.Italic = true
		}
		if sp.Code {
			f.Family = layout.FamilyMono
			f.Color = c.reg.Palette().Accent
		}
		runs = append(runs, layout.Run{Text: sp.Text, Face: f})
	}
	return runs
}

// item 排版带项目符号或编号的列表项，标签落在缩进区内。
func (c *Composer) item(s style.Style, label string, spans []markup.Span) *layout.Paragraph {
	p := c.Paragraph(s, spans)
	lf := s.Face()
	lf.Color = c.reg.Palette().Accent
	if label != "•" {
		lf.Bold = true
	}
	p.Label = []layout.Run{{Text: label, Face: lf}}
	p.LabelIndent = s.LeftIndent - 14
	if p.LabelIndent < 0 {
		p.LabelIndent = 0
	}
	return p
}

// code 把一组代码行放进代码框；空行保留一行高度。
func (c *Composer) code(lines []markup.Block) []layout.Flowable {
	p := c.reg.Palette()
	s := c.reg.Resolve(markup.KindCodeLine, markup.SubtypeNone)
	children := make([]layout.Flowable, 0, len(lines))
	for _, ln := range lines {
		if strings.TrimSpace(ln.Text) == "" {
			children = append(children, &layout.Spacer{Height: s.Leading})
			continue
		}
		children = append(children, c.Text(s, ln.Text))
	}
	return []layout.Flowable{
		&layout.Spacer{Height: 4},
		layout.NewBox(layout.BoxStyle{
			Background:  p.Code,
			Fill:        true,
			Border:      p.AccentDim,
			BorderWidth: boxBorderWidth,
			Padding:     boxPadding,
			Radius:      boxRadius,
		}, children...),
		&layout.Spacer{Height: 6},
	}
}

// table 用表头样式与单元格样式组装表格，短行以空单元格补齐。
func (c *Composer) table(b markup.Block) []layout.Flowable {
	p := c.reg.Palette()
	head := c.reg.Named(style.TableHeader)
	cell := c.reg.Resolve(markup.KindTable, markup.SubtypeNone)
	// 解析器已把数据行对齐到表头宽度
	cols := len(b.Header)
	if cols == 0 || len(b.Rows) == 0 {
		c.log.Warn("忽略空表格", "line", b.Line)
		return nil
	}
	row := func(cells [][]markup.Span, s style.Style) []layout.Flowable {
		out := make([]layout.Flowable, cols)
		for i := range out {
			var spans []markup.Span
			if i < len(cells) {
				spans = cells[i]
			}
			out[i] = c.Paragraph(s, spans)
		}
		return out
	}
	t := &layout.Table{
		Style: layout.TableStyle{
			HeaderBackground: p.Code,
			Background:       p.TableBody,
			Grid:             p.Border,
			GridWidth:        0.5,
			PadX:             8,
			PadY:             6,
		},
	}
	if len(b.Header) > 0 {
		t.Header = row(b.Header, head)
	}
	for _, r := range b.Rows {
		t.Rows = append(t.Rows, row(r, cell))
	}
	return []layout.Flowable{&layout.Spacer{Height: 6}, t, &layout.Spacer{Height: 8}}
}

// callout 按子类型主题组装提示框：标题、4pt 间距、正文子块。
func (c *Composer) callout(b markup.Block) []layout.Flowable {
	theme := c.reg.Box(b.Subtype)
	body := c.reg.Resolve(markup.KindCallout, b.Subtype)
	var inner []layout.Flowable
	title := b.Title
	if title == "" {
		title = theme.DefaultTitle
	}
	if title != "" {
		inner = append(inner, c.Text(theme.Title, title), &layout.Spacer{Height: 4})
	}
	inner = append(inner, c.blocks(b.Children, &body)...)
	if len(inner) == 0 {
		return nil
	}
	return []layout.Flowable{
		&layout.Spacer{Height: 6},
		layout.NewBox(layout.BoxStyle{
			Background:  theme.Background,
			Fill:        true,
			Border:      theme.Border,
			BorderWidth: boxBorderWidth,
			Padding:     boxPadding,
			Radius:      boxRadius,
		}, inner...),
		&layout.Spacer{Height: 10},
	}
}
