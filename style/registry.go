package style

import (
	"sort"

	"github.com/ByLCY/folio/markup"
)

// 结构性样式名：封面、目录、分部页、章节页、引言页、卡片、练习页与表格。
const (
	Body            = "body"
	ChapterSubtitle = "chapter_subtitle"
	CalloutTitle    = "callout_title"
	Script          = "script"

	CoverSeries  = "cover_series"
	CoverMain    = "cover_main"
	CoverSub     = "cover_sub"
	CoverTagline = "cover_tagline"
	CoverFooter  = "cover_footer"

	TOCHeading = "toc_heading"
	TOCPart    = "toc_part"
	TOCChapter = "toc_chapter"
	TOCEntry   = "toc_entry"

	PartLabel = "part_label"
	PartName  = "part_name"
	PartDesc  = "part_desc"

	ChapPageTitle    = "chap_page_title"
	ChapPageSubtitle = "chap_page_subtitle"

	PullQuote = "pull_quote"

	CardTitle = "card_title"
	CardBody  = "card_body"
	CardLabel = "card_label"

	WSTitle       = "ws_title"
	WSLabel       = "ws_label"
	WSLine        = "ws_line"
	WSInstruction = "ws_instruction"

	TableHeader = "table_header"
	TableCell   = "table_cell"

	FinalText = "final_text"
	FinalBold = "final_bold"

	HeaderText = "header_text"
	FooterText = "footer_text"
)

type key struct {
	kind    markup.Kind
	subtype markup.Subtype
}

// Registry 把 (块类型, 子类型) 映射到样式，并保存提示框主题与具名样式。
// 零值不可用，请使用 Default 或 New。
type Registry struct {
	palette Palette
	body    Style
	kinds   map[key]Style
	boxes   map[markup.Subtype]BoxTheme
	named   map[string]Style
}

// New 创建只含正文样式的空表。
func New(p Palette, body Style) *Registry {
	if body.Name == "" {
		body.Name = Body
	}
	r := &Registry{
		palette: p,
		body:    body,
		kinds:   map[key]Style{},
		boxes:   map[markup.Subtype]BoxTheme{},
		named:   map[string]Style{},
	}
	r.named[Body] = body
	r.kinds[key{kind: markup.KindParagraph}] = body
	return r
}

// Define 注册块类型的样式；subtype 为 SubtypeNone 时作为该类型的缺省样式。
func (r *Registry) Define(kind markup.Kind, subtype markup.Subtype, s Style) {
	r.kinds[key{kind, subtype}] = s
}

// DefineBox 注册提示框主题。
func (r *Registry) DefineBox(subtype markup.Subtype, t BoxTheme) {
	r.boxes[subtype] = t
}

// DefineNamed 注册具名样式。
func (r *Registry) DefineNamed(s Style) {
	r.named[s.Name] = s
}

// Resolve 依次查找 (kind, subtype)、(kind, 无子类型)，都没有时回退到正文样式。
func (r *Registry) Resolve(kind markup.Kind, subtype markup.Subtype) Style {
	if s, ok := r.kinds[key{kind, subtype}]; ok {
		return s
	}
	if s, ok := r.kinds[key{kind: kind}]; ok {
		return s
	}
	return r.body
}

// Box 返回子类型对应的提示框主题，未登记的子类型使用 info 主题。
func (r *Registry) Box(subtype markup.Subtype) BoxTheme {
	if t, ok := r.boxes[subtype]; ok {
		return t
	}
	if t, ok := r.boxes[markup.SubtypeInfo]; ok {
		return t
	}
	return BoxTheme{Background: r.palette.Callout, Border: r.palette.AccentDim, Title: r.body, Body: r.body}
}

// Named 返回具名样式，未知名称回退到正文样式。
func (r *Registry) Named(name string) Style {
	if s, ok := r.named[name]; ok {
		return s
	}
	return r.body
}

// Lookup 与 Named 相同，但报告名称是否存在。
func (r *Registry) Lookup(name string) (Style, bool) {
	s, ok := r.named[name]
	return s, ok
}

// Names 返回全部具名样式名（已排序）。
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.named))
	for n := range r.named {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Palette 返回色板。
func (r *Registry) Palette() Palette { return r.palette }
