package style

import (
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/markup"
)

// DefaultPalette 是深色主题的色板。
func DefaultPalette() Palette {
	return Palette{
		Background:    layout.Hex("#1A1A1A"),
		Callout:       layout.Hex("#242424"),
		Code:          layout.Hex("#222222"),
		TableBody:     layout.Hex("#1E1E1E"),
		Accent:        layout.Hex("#14B8A6"),
		AccentDim:     layout.Hex("#0F7B6E"),
		Gold:          layout.Hex("#F59E0B"),
		Pink:          layout.Hex("#EC4899"),
		White:         layout.Hex("#FFFFFF"),
		Text:          layout.Hex("#E5E5E5"),
		TextSecondary: layout.Hex("#9CA3AF"),
		TextDim:       layout.Hex("#6B7280"),
		Border:        layout.Hex("#333333"),
		Red:           layout.Hex("#EF4444"),
		Success:       layout.Hex("#22C55E"),
	}
}

// Default 每次调用都构建一份新的样式表，调用方可以放心修改。
func Default() *Registry {
	p := DefaultPalette()
	sans := func(name string, size, leading float64, c layout.Color) Style {
		return Style{Name: name, Font: layout.FamilySans, Size: size, Leading: leading, Color: c, Align: layout.AlignLeft}
	}
	bold := func(s Style) Style {
		s.Bold = true
		return s
	}
	italic := func(s Style) Style {
		s.Italic = true
		return s
	}
	mono := func(s Style) Style {
		s.Font = layout.FamilyMono
		return s
	}
	center := func(s Style) Style {
		s.Align = layout.AlignCenter
		return s
	}
	space := func(s Style, before, after float64) Style {
		s.SpaceBefore, s.SpaceAfter = before, after
		return s
	}

	body := space(sans(Body, 11, 17.6, p.Text), 0, 6)
	r := New(p, body)

	r.Define(markup.KindHeading1, markup.SubtypeNone, space(bold(sans("chapter_title", 26, 32, p.White)), 0, 4))
	r.Define(markup.KindHeading2, markup.SubtypeNone, space(bold(sans("section_header", 16, 21, p.White)), 14, 6))
	r.Define(markup.KindHeading3, markup.SubtypeNone, space(bold(sans("subsection_header", 13, 17, p.Accent)), 12, 4))
	r.Define(markup.KindHeading4, markup.SubtypeNone, space(bold(sans("sub3_header", 11, 15, p.Text)), 10, 3))

	bullet := space(sans("bullet", 11, 17.6, p.Text), 0, 3)
	bullet.LeftIndent = 18
	r.Define(markup.KindBullet, markup.SubtypeNone, bullet)
	numbered := space(sans("numbered", 11, 17.6, p.Text), 0, 3)
	numbered.LeftIndent = 22
	r.Define(markup.KindNumbered, markup.SubtypeNone, numbered)

	quote := space(italic(sans("blockquote", 11, 17.6, p.TextSecondary)), 0, 4)
	r.Define(markup.KindBlockquote, markup.SubtypeNone, quote)

	code := space(mono(sans("code", 9, 13, layout.Hex("#A5F3FC"))), 0, 0)
	r.Define(markup.KindCodeLine, markup.SubtypeNone, code)
	r.Define(markup.KindTimestamp, markup.SubtypeNone, space(mono(sans("timestamp", 10, 14, p.Accent)), 6, 2))
	r.Define(markup.KindTable, markup.SubtypeNone, sans(TableCell, 9.5, 13, p.Text))

	calloutTitle := space(bold(sans(CalloutTitle, 10, 14, p.Accent)), 0, 4)
	calloutBody := space(sans("callout_body", 10, 15, p.Text), 0, 4)
	goldTitle := calloutTitle.WithColor(p.Gold)
	goldTitle.Name = "gold_title"
	goldBody := space(italic(sans("gold_body", 10.5, 16, layout.Hex("#FCD34D"))), 0, 4)
	warningBody := space(sans("warning_body", 10, 15, layout.Hex("#FCA5A5")), 0, 4)

	r.Define(markup.KindCallout, markup.SubtypeNone, calloutBody)
	r.Define(markup.KindCallout, markup.SubtypeNugget, goldBody)
	r.Define(markup.KindCallout, markup.SubtypeWarning, warningBody)

	themes := []struct {
		st         markup.Subtype
		border, bg layout.Color
		title      Style
		body       Style
		label      string
	}{
		{markup.SubtypeNugget, p.Gold, layout.Hex("#242010"), goldTitle, goldBody, "♦ GOLD NUGGET"},
		{markup.SubtypeTakeaway, p.Accent, layout.Hex("#1A2420"), calloutTitle, calloutBody, "☑ KEY TAKEAWAYS"},
		{markup.SubtypeSuccess, p.Success, layout.Hex("#1A2A1A"), calloutTitle.WithColor(p.Success), calloutBody, "⚡ QUICK WIN"},
		{markup.SubtypeWarning, p.Red, layout.Hex("#2A1A1A"), calloutTitle.WithColor(p.Red), warningBody, "⚠ IMPORTANT"},
		{markup.SubtypeObservation, p.AccentDim, layout.Hex("#1E2428"), calloutTitle, calloutBody, "THE ARCHIVIST OBSERVES"},
		{markup.SubtypeLog, p.AccentDim, p.Code, calloutTitle, calloutBody, ""},
		{markup.SubtypeReference, p.Accent, layout.Hex("#1A2420"), calloutTitle, calloutBody, ""},
		{markup.SubtypeInfo, p.AccentDim, p.Callout, calloutTitle, calloutBody, ""},
	}
	for _, t := range themes {
		r.DefineBox(t.st, BoxTheme{Background: t.bg, Border: t.border, Title: t.title, Body: t.body, DefaultTitle: t.label})
	}

	named := []Style{
		space(sans(ChapterSubtitle, 12, 17, p.TextSecondary), 0, 16),
		calloutTitle,
		center(space(italic(sans(Script, 10.5, 16, layout.Hex("#A5F3FC"))), 0, 4)),

		center(space(bold(sans(CoverSeries, 14, 18, p.Accent)), 0, 6)),
		center(bold(sans(CoverMain, 42, 48, p.White))),
		center(space(bold(sans(CoverSub, 28, 34, p.Accent)), 0, 16)),
		center(space(italic(sans(CoverTagline, 12, 17, p.TextSecondary)), 0, 12)),
		center(sans(CoverFooter, 10, 14, p.TextDim)),

		space(bold(sans(TOCHeading, 24, 30, p.White)), 0, 24),
		space(bold(sans(TOCPart, 12, 18, p.Accent)), 14, 2),
		space(bold(sans(TOCChapter, 10, 16, p.White)).WithIndent(12), 0, 1),
		sans(TOCEntry, 10, 15, p.Text).WithIndent(24),

		center(space(bold(sans(PartLabel, 13, 17, p.AccentDim)), 0, 8)),
		center(space(bold(sans(PartName, 30, 36, p.White)), 0, 10)),
		center(sans(PartDesc, 11, 16, p.TextSecondary)),

		center(space(bold(sans(ChapPageTitle, 32, 38, p.White)), 0, 12)),
		center(italic(sans(ChapPageSubtitle, 13, 18, p.TextSecondary))),

		func() Style {
			s := italic(sans(PullQuote, 18, 28, p.Text))
			s.LeftIndent, s.RightIndent = 36, 36
			return s
		}(),

		center(space(bold(sans(CardTitle, 14, 18, p.White)), 0, 8)),
		sans(CardBody, 10, 15, p.Text),
		space(bold(sans(CardLabel, 10, 14, p.Accent)), 6, 2),

		center(space(bold(sans(WSTitle, 16, 22, p.White)), 16, 12)),
		space(bold(sans(WSLabel, 10, 14, p.Accent)), 8, 2),
		mono(sans(WSLine, 10, 20, p.TextDim)).WithIndent(8),
		space(sans(WSInstruction, 9.5, 14, p.TextSecondary), 0, 8),

		bold(sans(TableHeader, 9.5, 13, p.Accent)),
		sans(TableCell, 9.5, 13, p.Text),

		center(italic(sans(FinalText, 14, 22, p.Text))),
		center(bold(sans(FinalBold, 14, 22, p.White))),

		sans(HeaderText, 7, 9, p.TextDim),
		sans(FooterText, 7, 9, p.TextDim),
	}
	for _, s := range named {
		r.DefineNamed(s)
	}
	return r
}
