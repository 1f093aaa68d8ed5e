package markup

import (
	"log/slog"
	"strings"

	"github.com/yuin/goldmark/parser"
)

// Parser 将标记文本逐行扫描为 Block 序列。
// 解析永不失败：无法识别或残缺的结构记录一条告警后跳过或尽力输出。
type Parser struct {
	log    *slog.Logger
	inline parser.Parser

	// SkipHeading 返回 true 时丢弃该标题（例如章节页已经展示过的编号标题）。
	SkipHeading func(level int, text string) bool
}

// NewParser 创建解析器；log 为空时使用 slog.Default()。
func NewParser(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{log: log, inline: newInlineParser()}
}

// Parse 使用默认 logger 解析文本。
func Parse(text string) []Block {
	return NewParser(nil).Parse(text)
}

// Parse 解析整段文本，返回按源顺序排列的 Block。
func (p *Parser) Parse(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	s := &scanner{p: p, lines: strings.Split(text, "\n")}
	s.run()
	return s.out
}

type state int

const (
	stateNormal state = iota
	stateParagraph
	stateItem
	stateQuote
	stateCode
	stateBox
	stateTable
)

// scanner 持有一次解析的全部可变状态。
type scanner struct {
	p     *Parser
	lines []string
	i     int
	state state
	out   []Block

	// 当前结构的累积内容
	buf     []string
	start   int
	opening string
	item    Block
	groups  int
}

func (s *scanner) run() {
	for s.i < len(s.lines) {
		line := s.lines[s.i]
		switch s.state {
		case stateNormal:
			s.normal(line)
		case stateParagraph:
			s.continuation(line, s.flushParagraph)
		case stateItem:
			s.continuation(line, s.flushItem)
		case stateQuote:
			s.quote(line)
		case stateCode:
			s.code(line)
		case stateBox:
			s.box(line)
		case stateTable:
			s.table(line)
		}
	}
	s.finish()
}

// finish 在文件结束时收尾未闭合的结构。
func (s *scanner) finish() {
	switch s.state {
	case stateParagraph:
		s.flushParagraph()
	case stateItem:
		s.flushItem()
	case stateQuote:
		s.flushQuote()
	case stateCode:
		s.p.log.Warn("代码围栏未闭合，已读取到文件末尾", "line", s.start+1)
		s.flushCode()
	case stateBox:
		s.p.log.Warn("提示框未闭合，已读取到文件末尾", "line", s.start+1)
		s.flushBox()
	case stateTable:
		s.flushTable()
	}
	s.state = stateNormal
}

func (s *scanner) begin(st state, first string) {
	s.state = st
	s.start = s.i
	s.buf = s.buf[:0]
	if first != "" {
		s.buf = append(s.buf, first)
	}
	s.i++
}

func (s *scanner) emit(b Block) {
	s.out = append(s.out, b)
}

func (s *scanner) next() string {
	if s.i+1 < len(s.lines) {
		return s.lines[s.i+1]
	}
	return ""
}

func (s *scanner) normal(line string) {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		s.i++
	case strings.HasPrefix(t, "```"):
		s.groups++
		s.begin(stateCode, "")
	case isBoxDelimiter(t):
		s.opening = t
		s.begin(stateBox, "")
	case headingLevel(t) > 0:
		level := headingLevel(t)
		body := strings.TrimSpace(strings.TrimLeft(t, "#"))
		if s.p.SkipHeading == nil || !s.p.SkipHeading(level, body) {
			s.emit(Block{Kind: headingKind(level), Text: body, Spans: s.p.spans(body), Line: s.i + 1})
		}
		s.i++
	case isDivider(t):
		s.emit(Block{Kind: KindDivider, Line: s.i + 1})
		s.i++
	case isTimestamp(t):
		body := strings.TrimSpace(strings.ReplaceAll(t, "**", ""))
		s.emit(Block{Kind: KindTimestamp, Text: body, Spans: s.p.spans(body), Line: s.i + 1})
		s.i++
	case isTableStart(t, s.next()):
		s.begin(stateTable, t)
	case bulletText(t) != "":
		s.item = Block{Kind: KindBullet, Line: s.i + 1}
		s.begin(stateItem, bulletText(t))
	case numberedOK(t):
		num, body := numbered(t)
		s.item = Block{Kind: KindNumbered, Number: num, Line: s.i + 1}
		s.begin(stateItem, body)
	case strings.HasPrefix(t, ">"):
		s.begin(stateQuote, quoteText(t))
	default:
		s.begin(stateParagraph, t)
	}
}

// continuation 处理段落和列表项的续行：遇到空行或新结构的开头即结束。
func (s *scanner) continuation(line string, flush func()) {
	t := strings.TrimSpace(line)
	if t == "" {
		flush()
		s.state = stateNormal
		s.i++
		return
	}
	if startsConstruct(t, s.next()) {
		flush()
		s.state = stateNormal
		return
	}
	s.buf = append(s.buf, t)
	s.i++
}

func (s *scanner) quote(line string) {
	t := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(t, ">"):
		s.buf = append(s.buf, quoteText(t))
		s.i++
	case t == "" || startsConstruct(t, s.next()):
		s.flushQuote()
		s.state = stateNormal
	default:
		s.buf = append(s.buf, t)
		s.i++
	}
}

func (s *scanner) code(line string) {
	if strings.HasPrefix(strings.TrimSpace(line), "```") {
		s.flushCode()
		s.state = stateNormal
		s.i++
		return
	}
	s.buf = append(s.buf, strings.TrimRight(line, " \t"))
	s.i++
}

func (s *scanner) box(line string) {
	t := strings.TrimSpace(line)
	if isBoxDelimiter(t) {
		s.flushBox()
		s.state = stateNormal
		s.i++
		return
	}
	s.buf = append(s.buf, t)
	s.i++
}

func (s *scanner) table(line string) {
	t := strings.TrimSpace(line)
	if !strings.Contains(t, "|") {
		s.flushTable()
		s.state = stateNormal
		return
	}
	s.buf = append(s.buf, t)
	s.i++
}

func (s *scanner) flushParagraph() {
	text := strings.Join(s.buf, " ")
	s.emit(Block{Kind: KindParagraph, Text: text, Spans: s.p.spans(text), Line: s.start + 1})
}

func (s *scanner) flushItem() {
	b := s.item
	b.Text = strings.Join(s.buf, " ")
	b.Spans = s.p.spans(b.Text)
	s.emit(b)
}

func (s *scanner) flushQuote() {
	text := strings.Join(s.buf, " ")
	if strings.TrimSpace(text) == "" {
		return
	}
	s.emit(Block{Kind: KindBlockquote, Text: text, Spans: s.p.spans(text), Line: s.start + 1})
}

func (s *scanner) flushCode() {
	for idx, ln := range s.buf {
		s.emit(Block{Kind: KindCodeLine, Text: ln, Spans: []Span{{Text: ln, Code: true}}, Group: s.groups, Line: s.start + idx + 2})
	}
}

func (s *scanner) flushBox() {
	body := append([]string(nil), s.buf...)
	st, title, start, how := classifyBox(s.opening, body)
	if how == classDefault {
		s.p.log.Info("提示框没有可识别的类型，使用默认类型", "line", s.start+1, "subtype", st.String())
	}
	children := s.boxChildren(body[start:], s.start+start+2)
	if title == "" && len(children) == 0 {
		s.p.log.Warn("提示框内容为空，已跳过", "line", s.start+1)
		return
	}
	s.emit(Block{
		Kind:     KindCallout,
		Text:     strings.TrimSpace(strings.Join(body, "\n")),
		Subtype:  st,
		Title:    title,
		Children: children,
		Line:     s.start + 1,
	})
}

// boxChildren 将提示框正文逐行转换为子块：列表项或单行段落。
func (s *scanner) boxChildren(lines []string, firstLine int) []Block {
	var out []Block
	for idx, ln := range lines {
		t := strings.TrimSpace(ln)
		if t == "" {
			continue
		}
		line := firstLine + idx
		switch {
		case bulletText(t) != "":
			body := bulletText(t)
			out = append(out, Block{Kind: KindBullet, Text: body, Spans: s.p.spans(body), Line: line})
		case numberedOK(t):
			num, body := numbered(t)
			out = append(out, Block{Kind: KindNumbered, Number: num, Text: body, Spans: s.p.spans(body), Line: line})
		default:
			out = append(out, Block{Kind: KindParagraph, Text: t, Spans: s.p.spans(t), Line: line})
		}
	}
	return out
}

func (s *scanner) flushTable() {
	if len(s.buf) < 3 {
		s.p.log.Warn("表格缺少数据行，已跳过", "line", s.start+1)
		return
	}
	header := splitCells(s.buf[0])
	if len(header) == 0 {
		s.p.log.Warn("表格缺少表头，已跳过", "line", s.start+1)
		return
	}
	b := Block{Kind: KindTable, Text: strings.Join(s.buf, "\n"), Line: s.start + 1}
	for _, h := range header {
		b.Header = append(b.Header, s.p.spans(h))
	}
	for idx, raw := range s.buf[2:] {
		cells := splitCells(raw)
		if isBlankRow(cells) {
			continue
		}
		if len(cells) > len(header) {
			s.p.log.Warn("表格行的单元格多于表头，多余部分已丢弃", "line", s.start+idx+3, "cells", len(cells), "columns", len(header))
			cells = cells[:len(header)]
		}
		row := make([][]Span, len(header))
		for c := range cells {
			row[c] = s.p.spans(cells[c])
		}
		b.Rows = append(b.Rows, row)
	}
	if len(b.Rows) == 0 {
		s.p.log.Warn("表格缺少数据行，已跳过", "line", s.start+1)
		return
	}
	s.emit(b)
}

// --- 行级判定 ---

func headingLevel(t string) int {
	n := 0
	for n < len(t) && t[n] == '#' {
		n++
	}
	if n == 0 || (n < len(t) && t[n] != ' ' && t[n] != '\t') {
		return 0
	}
	if strings.TrimSpace(t[n:]) == "" {
		return 0
	}
	if n > 4 {
		n = 4
	}
	return n
}

func isDivider(t string) bool {
	return t == "---" || t == "***" || t == "___"
}

// isTimestamp 识别 "[T+00:00]" 形式的时间戳行（允许外层 ** 包裹）。
func isTimestamp(t string) bool {
	t = strings.TrimLeft(t, "*")
	if !strings.HasPrefix(t, "[T") || len(t) < 4 {
		return false
	}
	if t[2] != '+' && t[2] != '-' {
		return false
	}
	end := strings.IndexByte(t, ']')
	if end < 0 {
		return false
	}
	mm, ss, ok := strings.Cut(t[3:end], ":")
	return ok && isDigits(mm) && isDigits(ss)
}

func isTableStart(t, next string) bool {
	return strings.Contains(t, "|") && isTableSeparator(strings.TrimSpace(next))
}

func isTableSeparator(t string) bool {
	if !strings.Contains(t, "-") {
		return false
	}
	for _, r := range t {
		if !strings.ContainsRune("|-: \t", r) {
			return false
		}
	}
	return true
}

func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func bulletText(t string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(t, prefix) {
			if body := strings.TrimSpace(t[len(prefix):]); body != "" {
				return body
			}
		}
	}
	return ""
}

func numberedOK(t string) bool {
	_, body := numbered(t)
	return body != ""
}

// numbered 拆分 "12. 文本" 或 "12) 文本"。
func numbered(t string) (string, string) {
	n := 0
	for n < len(t) && t[n] >= '0' && t[n] <= '9' {
		n++
	}
	if n == 0 || n+1 >= len(t) || (t[n] != '.' && t[n] != ')') || (t[n+1] != ' ' && t[n+1] != '\t') {
		return "", ""
	}
	return t[:n], strings.TrimSpace(t[n+1:])
}

func quoteText(t string) string {
	return strings.TrimSpace(strings.TrimPrefix(t, ">"))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// startsConstruct 判断一行是否开启新的结构，用于结束段落和列表项的续行。
func startsConstruct(t, next string) bool {
	return strings.HasPrefix(t, "```") ||
		isBoxDelimiter(t) ||
		headingLevel(t) > 0 ||
		isDivider(t) ||
		isTimestamp(t) ||
		isTableStart(t, next) ||
		bulletText(t) != "" ||
		numberedOK(t) ||
		strings.HasPrefix(t, ">")
}
