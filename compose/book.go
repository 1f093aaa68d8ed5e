package compose

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/manifest"
	"github.com/ByLCY/folio/markup"
	"github.com/ByLCY/folio/style"
)

// Source 提供内容文件与图片；assets.Store 实现了它。
type Source interface {
	Text(rel string) (string, bool)
	Image(rel string) (layout.ImageRef, bool)
}

// 章节内容中形如 "# 1.2 标题" 的编号标题已由章节页展示，排版时跳过。
var numberedHeading = regexp.MustCompile(`^\d+\.\d+`)

// flowablesPerPage 用于粗略估算章节页数，决定整页引言的插入节奏。
const flowablesPerPage = 40

type builder struct {
	c      *Composer
	src    Source
	log    *slog.Logger
	book   *manifest.Book
	parser *markup.Parser

	flow    []layout.Flowable
	initial string
	current string
	started bool
	// breakPending 表示上一个单元要求之后的内容另起一页。
	breakPending bool
	chapter      string
	estimate     int
	quote        int
}

// Book 按清单顺序组装整本书：封面、目录、分部页、章节页、章节、卡片、练习页、整页引言与结束页。
// 缺失的内容文件只记录告警并跳过对应章节。
func (c *Composer) Book(book *manifest.Book, src Source) (*layout.Document, error) {
	if book == nil {
		return nil, fmt.Errorf("清单为空")
	}
	if src == nil {
		return nil, fmt.Errorf("资源来源为空")
	}
	b := &builder{c: c, src: src, log: c.log, book: book}
	b.parser = markup.NewParser(c.log)
	b.parser.SkipHeading = b.skipHeading

	if book.Cover != nil {
		b.cover(book.Cover)
	}
	if book.TOC != "" {
		b.toc()
	}
	for _, it := range book.Items {
		switch it.Kind {
		case manifest.ItemPart:
			b.maybeQuote()
			b.part(it)
		case manifest.ItemTitlePage:
			b.titlePage(it)
		case manifest.ItemChapter:
			b.chapterItem(it)
		case manifest.ItemCard:
			b.card(it)
		case manifest.ItemWorksheet:
			b.worksheet(it)
		case manifest.ItemQuote:
			b.quotePage(it.Title)
		}
	}
	if book.Final != nil {
		b.maybeQuote()
		b.final(book.Final)
	}
	if !b.started {
		b.begin(TemplateBody, false)
	}

	return &layout.Document{
		Width:     book.Page.Width,
		Height:    book.Page.Height,
		Flowables: b.flow,
		Templates: c.Templates(book),
		Initial:   b.initial,
		Meta:      book.Meta,
	}, nil
}

func (b *builder) add(f ...layout.Flowable) { b.flow = append(b.flow, f...) }

func (b *builder) spacer(h float64) { b.add(&layout.Spacer{Height: h}) }

func (b *builder) named(name string) style.Style { return b.c.reg.Named(name) }

func (b *builder) text(name, s string) {
	if s == "" {
		return
	}
	b.add(b.c.Text(b.named(name), s))
}

// begin 让接下来的内容使用模板 tpl。fresh 为 true 时总是另起一页；
// 否则只有上一个单元要求分页或模板不同时才分页。首个单元决定首页模板。
func (b *builder) begin(tpl string, fresh bool) {
	switch {
	case !b.started:
		b.initial, b.current, b.started = tpl, tpl, true
	case fresh || b.breakPending || b.current != tpl:
		b.add(&layout.NextTemplate{Name: tpl}, &layout.PageBreak{})
		b.current = tpl
	}
	b.breakPending = false
}

// end 结束一个单元；brk 为 true 时之后的内容另起一页。
func (b *builder) end(brk bool) { b.breakPending = brk }

func (b *builder) skipHeading(level int, text string) bool {
	if level != 1 {
		return false
	}
	t := strings.TrimSpace(text)
	return numberedHeading.MatchString(t) || (b.chapter != "" && strings.EqualFold(t, b.chapter))
}

func (b *builder) rule(thickness float64) {
	b.add(&layout.Rule{Color: b.c.reg.Palette().Accent, Thickness: thickness})
}

func (b *builder) divider() {
	p := b.c.reg.Palette()
	b.add(&layout.Rule{Color: p.AccentDim, Accent: p.Accent, Thickness: 0.5, Ornament: true})
}

// diamond 是封面与结束页上的菱形标记。
func (b *builder) diamond(size, leading, after float64) {
	s := b.named(style.Body)
	s.Size, s.Leading, s.SpaceBefore, s.SpaceAfter = size, leading, 0, after
	s.Color = b.c.reg.Palette().Accent
	s.Bold, s.Italic = false, false
	s.Align = layout.AlignCenter
	b.add(b.c.Text(s, "◆"))
}

// brand 是居中加粗的强调色短句；其中的粗体片段用粉色突出。
func (b *builder) brand(text string) {
	if text == "" {
		return
	}
	p := b.c.reg.Palette()
	s := b.named(style.Body)
	s.Size, s.Leading, s.SpaceBefore, s.SpaceAfter = 11, 15, 0, 8
	s.Color, s.Bold, s.Align = p.Accent, true, layout.AlignCenter
	var spans []markup.Span
	if blocks := markup.NewParser(b.log).Parse(text); len(blocks) > 0 {
		spans = blocks[0].Spans
	}
	var runs []layout.Run
	for _, sp := range spans {
		run := b.c.Runs(s, []markup.Span{sp})
		if len(run) == 0 {
			continue
		}
		if sp.Bold && !sp.Code {
			run[0].Face.Color = p.Pink
		}
		runs = append(runs, run[0])
	}
	if len(runs) == 0 {
		runs = []layout.Run{{Text: text, Face: s.Face()}}
	}
	b.add(layout.NewParagraph(b.c.ts, s.Paragraph(), runs...))
}

func (b *builder) cover(cv *manifest.Cover) {
	b.begin(TemplateCover, true)
	b.spacer(1.4 * layout.Inch)
	logo := false
	if cv.Logo != "" {
		if ref, ok := b.src.Image(cv.Logo); ok {
			b.add(&layout.Image{Ref: ref, Width: 1.2 * layout.Inch, Align: layout.AlignCenter})
			b.spacer(14)
			logo = true
		}
	}
	if !logo {
		b.diamond(42, 46, 14)
	}
	b.text(style.CoverSeries, cv.Series)
	b.spacer(10)
	b.text(style.CoverMain, cv.Title)
	b.text(style.CoverSub, cv.Subtitle)
	b.spacer(6)
	b.divider()
	b.spacer(16)
	b.text(style.CoverTagline, cv.Tagline)
	b.spacer(12)
	b.brand(cv.Badge)
	b.spacer(1.2 * layout.Inch)
	b.text(style.CoverFooter, cv.Footer)
	b.end(true)
	b.estimate++
}

// tocPart 是目录中的一个分部及其条目。
type tocPart struct {
	title   string
	entries []string
}

// tocPlan 列出每个分部下的章节页标题；分部没有章节页时列出其章节。
func (b *builder) tocPlan() []tocPart {
	var parts []tocPart
	var titles, chapters []string
	flush := func() {
		if len(parts) == 0 && len(titles) == 0 && len(chapters) == 0 {
			return
		}
		if len(parts) == 0 {
			parts = append(parts, tocPart{})
		}
		last := &parts[len(parts)-1]
		if len(titles) > 0 {
			last.entries = titles
		} else {
			last.entries = chapters
		}
		titles, chapters = nil, nil
	}
	for _, it := range b.book.Items {
		switch it.Kind {
		case manifest.ItemPart:
			flush()
			parts = append(parts, tocPart{title: fmt.Sprintf("PART %s: %s", it.Label, it.Title)})
		case manifest.ItemTitlePage:
			titles = append(titles, it.Title)
		case manifest.ItemChapter:
			chapters = append(chapters, it.Title)
		}
	}
	flush()
	return parts
}

func (b *builder) toc() {
	b.begin(TemplateBody, false)
	b.spacer(0.2 * layout.Inch)
	b.text(style.TOCHeading, b.book.TOC)
	b.rule(1.5)
	b.spacer(12)
	entry := b.named(style.TOCEntry)
	dim := entry.Face()
	dim.Color = b.c.reg.Palette().TextDim
	for _, part := range b.tocPlan() {
		b.text(style.TOCPart, part.title)
		for _, e := range part.entries {
			b.add(layout.NewParagraph(b.c.ts, entry.Paragraph(),
				layout.Run{Text: "──  ", Face: dim},
				layout.Run{Text: e, Face: entry.Face()},
			))
		}
	}
	b.end(true)
	b.estimate += 3
}

func (b *builder) part(it manifest.Item) {
	b.begin(TemplatePart, true)
	b.spacer(2.3 * layout.Inch)
	b.text(style.PartLabel, "PART "+it.Label)
	b.text(style.PartName, it.Title)
	b.spacer(6)
	b.divider()
	b.spacer(14)
	b.text(style.PartDesc, it.Desc)
	b.end(true)
	b.estimate++
}

func (b *builder) titlePage(it manifest.Item) {
	b.begin(TemplatePart, true)
	b.spacer(2.8 * layout.Inch)
	b.text(style.ChapPageTitle, it.Title)
	b.spacer(8)
	b.rule(2)
	if it.Subtitle != "" {
		b.spacer(14)
		b.text(style.ChapPageSubtitle, it.Subtitle)
	}
	b.end(true)
	b.estimate++
}

func (b *builder) quotePage(text string) {
	if text == "" {
		return
	}
	b.begin(TemplateQuote, true)
	b.spacer(2.8 * layout.Inch)
	b.text(style.PullQuote, "“"+text+"”")
	b.end(true)
	b.estimate++
}

// maybeQuote 在估算页数到达节奏点附近时插入下一条整页引言，候选用完后不再插入。
func (b *builder) maybeQuote() {
	every := b.book.Quotes.Every
	if every <= 0 || b.quote >= len(b.book.Quotes.Lines) {
		return
	}
	if b.estimate > 0 && b.estimate%every < 3 {
		text := b.book.Quotes.Lines[b.quote]
		b.quote++
		b.quotePage(text)
	}
}

// content 读取并转换章节内容；文件缺失时返回 nil。
func (b *builder) content(it manifest.Item) []layout.Flowable {
	text, ok := b.src.Text(it.Src)
	if !ok {
		b.log.Warn("跳过缺少内容的条目", "kind", it.Kind.String(), "title", it.Title, "src", it.Src)
		return nil
	}
	if strings.TrimSpace(text) == "" {
		b.log.Warn("跳过空内容的条目", "kind", it.Kind.String(), "title", it.Title, "src", it.Src)
		return nil
	}
	b.chapter = it.Title
	defer func() { b.chapter = "" }()
	return b.c.Blocks(b.parser.Parse(text))
}

func (b *builder) chapterItem(it manifest.Item) {
	flow := b.content(it)
	if flow == nil {
		return
	}
	b.begin(TemplateBody, false)
	b.spacer(0.12 * layout.Inch)
	b.add(b.c.Text(b.c.reg.Resolve(markup.KindHeading1, markup.SubtypeNone), it.Title))
	b.text(style.ChapterSubtitle, it.Subtitle)
	b.rule(2)
	b.spacer(8)
	b.add(flow...)
	b.estimate += max(1, len(flow)/flowablesPerPage)
	b.end(it.Break)
}

// card 把内容放进带标题与分隔线的速查卡片。
func (b *builder) card(it manifest.Item) {
	flow := b.content(it)
	if flow == nil {
		return
	}
	p := b.c.reg.Palette()
	b.begin(TemplateBody, false)
	b.spacer(0.1 * layout.Inch)
	inner := []layout.Flowable{
		b.c.Text(b.named(style.CardTitle), it.Title),
		&layout.Spacer{Height: 4},
		&layout.Rule{Color: p.Accent, Thickness: 1.5},
		&layout.Spacer{Height: 6},
	}
	inner = append(inner, flow...)
	b.add(layout.NewBox(layout.BoxStyle{
		Background:  layout.Hex("#1A2420"),
		Fill:        true,
		Border:      p.Accent,
		BorderWidth: boxBorderWidth,
		Padding:     cardPadding,
		Radius:      boxRadius,
	}, inner...))
	b.spacer(10)
	b.end(false)
}

func (b *builder) worksheet(it manifest.Item) {
	b.begin(TemplateBody, false)
	b.text(style.WSTitle, it.Title)
	b.rule(1.5)
	b.spacer(6)
	b.text(style.WSInstruction, it.Instruction)
	label := b.named(style.WSLabel)
	for _, f := range it.Fields {
		if f.Lines > 0 {
			lf := label.Face()
			b.add(&layout.WriteArea{
				Lines:     f.Lines,
				Label:     f.Label,
				LabelFace: lf,
				LineColor: b.c.reg.Palette().Border,
			})
			continue
		}
		b.text(style.WSLabel, f.Label)
		b.text(style.WSLine, f.Line)
	}
	b.end(true)
	b.estimate++
}

func (b *builder) final(f *manifest.Final) {
	b.begin(TemplatePart, true)
	b.spacer(2.5 * layout.Inch)
	b.diamond(36, 40, 0)
	for _, ln := range f.Lines {
		b.text(style.FinalText, ln)
		b.spacer(8)
	}
	b.text(style.FinalBold, f.Bold)
	b.spacer(1.5 * layout.Inch)
	b.divider()
	b.spacer(20)
	b.brand(f.Brand)
	b.text(style.CoverFooter, f.Footer)
	b.end(false)
}
