package markup

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// newInlineParser 构建只识别段落、强调与行内代码的 goldmark 解析器。
// 其余 Markdown 语法（链接、HTML、自动链接等）一律按字面文本处理。
func newInlineParser() parser.Parser {
	return parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 200),
		),
	)
}

// spans 将一行（或已合并的多行）文本解析为行内样式片段。
// 优先级：***粗斜体*** > **粗体** > *斜体* > `代码`。
func (p *Parser) spans(s string) []Span {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	src := []byte(s)
	doc := p.inline.Parse(text.NewReader(src))
	var out []Span
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if len(out) > 0 {
			out = appendSpan(out, Span{Text: " "})
		}
		out = collectSpans(n, src, Span{}, out)
	}
	if len(out) == 0 {
		// goldmark 不会吞掉非空文本；兜底保留原文
		return []Span{{Text: s}}
	}
	return out
}

func collectSpans(n ast.Node, src []byte, st Span, out []Span) []Span {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			value := v.Segment.Value(src)
			if !st.Code {
				value = util.UnescapePunctuations(value)
			}
			out = appendSpan(out, withText(st, string(value)))
			if v.SoftLineBreak() || v.HardLineBreak() {
				out = appendSpan(out, withText(st, " "))
			}
		case *ast.String:
			out = appendSpan(out, withText(st, string(v.Value)))
		case *ast.Emphasis:
			next := st
			if v.Level >= 2 {
				next.Bold = true
			} else {
				next.Italic = true
			}
			out = collectSpans(v, src, next, out)
		case *ast.CodeSpan:
			next := st
			next.Code = true
			out = collectSpans(v, src, next, out)
		default:
			out = collectSpans(c, src, st, out)
		}
	}
	return out
}

func withText(st Span, s string) Span {
	st.Text = s
	return st
}

// appendSpan 合并相邻且样式相同的片段。
func appendSpan(out []Span, s Span) []Span {
	if s.Text == "" {
		return out
	}
	if n := len(out); n > 0 {
		last := &out[n-1]
		if last.Bold == s.Bold && last.Italic == s.Italic && last.Code == s.Code {
			last.Text += s.Text
			return out
		}
	}
	return append(out, s)
}
