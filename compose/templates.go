package compose

import (
	"strconv"
	"unicode/utf8"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/manifest"
	"github.com/ByLCY/folio/style"
)

// 页面模板名称。
const (
	TemplateCover = "cover"
	TemplateBody  = "body"
	TemplatePart  = "part"
	TemplateQuote = "quote"
)

// Theme 是页面装饰用色，可被清单的 theme 指令覆盖。
type Theme struct {
	Background layout.Color
	Accent     layout.Color
	AccentDim  layout.Color
	Border     layout.Color
	TextDim    layout.Color
}

// NewTheme 从色板取默认值，再应用覆盖项。
func NewTheme(p style.Palette, overrides map[string]layout.Color) Theme {
	t := Theme{
		Background: p.Background,
		Accent:     p.Accent,
		AccentDim:  p.AccentDim,
		Border:     p.Border,
		TextDim:    p.TextDim,
	}
	for k, c := range overrides {
		switch k {
		case "background":
			t.Background = c
		case "accent":
			t.Accent = c
		case "accent-dim":
			t.AccentDim = c
		case "border":
			t.Border = c
		case "text-dim":
			t.TextDim = c
		}
	}
	return t
}

// Templates 生成四种页面模板，共用清单中的正文区域。
//
// 页眉页脚文本支持 ${page} 与 ${title}；页脚右侧默认是页码。
func (c *Composer) Templates(book *manifest.Book) []layout.PageTemplate {
	theme := NewTheme(c.reg.Palette(), book.Theme)
	pg := book.Page
	frame := pg.Frame()
	header := c.reg.Named(style.HeaderText).Face()
	footer := c.reg.Named(style.FooterText).Face()
	footerRight := book.Footer.Right
	if footerRight == "" {
		footerRight = "${page}"
	}
	hdrL, hdrR := binding.Compile(book.Header.Left), binding.Compile(book.Header.Right)
	ftrL, ftrR := binding.Compile(book.Footer.Left), binding.Compile(footerRight)

	background := func(cv layout.Canvas) {
		w, h := cv.PageSize()
		cv.FillRect(0, 0, w, h, theme.Background)
	}
	vars := func(cv layout.Canvas) binding.Vars {
		return binding.Vars{"page": strconv.Itoa(cv.PageNumber()), "title": book.Title}
	}

	cover := func(cv layout.Canvas) {
		background(cv)
		w, h := cv.PageSize()
		cv.Line(w*0.15, h-50, w*0.85, h-50, 2, theme.Accent)
		cv.Line(w*0.15, 50, w*0.85, 50, 2, theme.Accent)
	}
	body := func(cv layout.Canvas) {
		background(cv)
		w, h := cv.PageSize()
		left, right := pg.Margin.Left, w-pg.Margin.Right
		v := vars(cv)

		yHdr := h - pg.Margin.Top + 18
		cv.Line(left, yHdr-4, right, yHdr-4, 0.5, theme.Border)
		hf := header
		hf.Color = theme.TextDim
		cv.Text(left, yHdr+2, hdrL.Execute(v), hf)
		hf.Color = theme.AccentDim
		c.rightText(cv, right, yHdr+2, hdrR.Execute(v), hf)

		yFtr := pg.Margin.Bottom - 20
		cv.Line(left, yFtr+8, right, yFtr+8, 0.5, theme.Border)
		ff := footer
		ff.Color = theme.TextDim
		cv.Text(left, yFtr-4, ftrL.Execute(v), ff)
		c.rightText(cv, right, yFtr-4, ftrR.Execute(v), ff)
	}
	quote := func(cv layout.Canvas) {
		background(cv)
		_, h := cv.PageSize()
		x := pg.Margin.Left + 20
		cv.Line(x, h*0.3, x, h*0.7, 4, theme.Accent)
	}

	return []layout.PageTemplate{
		{Name: TemplateCover, Frame: frame, Decorate: cover},
		{Name: TemplateBody, Frame: frame, Decorate: body},
		{Name: TemplatePart, Frame: frame, Decorate: background},
		{Name: TemplateQuote, Frame: frame, Decorate: quote},
	}
}

// rightText 让文本右端对齐到 x。
func (c *Composer) rightText(cv layout.Canvas, x, y float64, s string, f layout.Face) {
	if s == "" {
		return
	}
	cv.Text(x-c.textWidth(s, f), y, s, f)
}

func (c *Composer) textWidth(s string, f layout.Face) float64 {
	if c.ts == nil {
		return float64(utf8.RuneCountInString(s)) * f.Size * 0.5
	}
	return c.ts.TextWidth(s, f)
}
