package manifest

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ByLCY/folio/layout"
)

const sampleManifest = `
// 完整档案
book "Complete Archive" {
  meta {
    title: "The Archivist Method: Complete Archive"
    author: "The Archivist Method"
    keywords: [
      "patterns"
      "archive"
    ]
  }

  page letter margin 0.7in 0.75in
  header { left: "THE ARCHIVIST METHOD"; right: "COMPLETE ARCHIVE" }
  footer { left: "thearchivistmethod.com"; right: "${page}" }

  cover {
    series: "THE ARCHIVIST METHOD"
    title: "COMPLETE"
    subtitle: "ARCHIVE"
    logo: "img/logo.png"
  }
  toc

  part "I" "ORIENTATION" { desc: "Emergency protocols. What this is." }
  titlepage "EMERGENCY PROTOCOLS" "For readers in crisis right now."
  chapter "YOU JUST RAN YOUR PATTERN" {
    src: "module-0/0.1.md"
    subtitle: "What to do right now."
  }
  chapter "CRISIS TRIAGE" { src: "module-0/0.4.md"; break: false }
  card "QUICK REFERENCE: THE DISAPPEARING PATTERN" { src: "p1/1.11.md" }

  worksheet "PATTERN EXECUTION LOG" {
    instruction: "Data, not judgment."
    field "Date / Time"
    field "Intensity" "_____ / 10"
    area "What I Learned" 3
  }

  quotes {
    every: 20
    "The pattern is not you."
    "Data, not judgment."
  }
  quote "You run you."

  theme { accent: #14B8A6 }
  font sans-bold "fonts/Inter-Bold.ttf"
  final {
    text: ["You found the thread." "You pulled it."]
    bold: "You run you."
  }
}
`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestParseManifest(t *testing.T) {
	b, err := ParseString("archive.book", sampleManifest, discard())
	if err != nil {
		t.Fatalf("解析清单失败: %v", err)
	}
	if b.Title != "Complete Archive" || b.Meta.Title != "The Archivist Method: Complete Archive" {
		t.Fatalf("标题错误: %q / %q", b.Title, b.Meta.Title)
	}
	if len(b.Meta.Keywords) != 2 || b.Meta.Creator != "folio" {
		t.Fatalf("元数据错误: %+v", b.Meta)
	}
	if b.Page.Width != 612 || b.Page.Height != 792 {
		t.Fatalf("纸张尺寸错误: %+v", b.Page)
	}
	if !near(b.Page.Margin.Top, 50.4) || !near(b.Page.Margin.Left, 54) {
		t.Fatalf("边距错误: %+v", b.Page.Margin)
	}
	if b.Header.Right != "COMPLETE ARCHIVE" || b.Footer.Right != "${page}" {
		t.Fatalf("页眉页脚错误: %+v %+v", b.Header, b.Footer)
	}
	if b.Cover == nil || b.Cover.Logo != "img/logo.png" || b.Cover.Subtitle != "ARCHIVE" {
		t.Fatalf("封面错误: %+v", b.Cover)
	}
	if b.TOC != "TABLE OF CONTENTS" {
		t.Fatalf("目录标题错误: %q", b.TOC)
	}

	kinds := []ItemKind{ItemPart, ItemTitlePage, ItemChapter, ItemChapter, ItemCard, ItemWorksheet, ItemQuote}
	if len(b.Items) != len(kinds) {
		t.Fatalf("期望 %d 个结构单元，实际 %d", len(kinds), len(b.Items))
	}
	for i, k := range kinds {
		if b.Items[i].Kind != k {
			t.Fatalf("第 %d 个单元期望 %s，实际 %s", i, k, b.Items[i].Kind)
		}
	}
	part := b.Items[0]
	if part.Label != "I" || part.Title != "ORIENTATION" || part.Desc == "" {
		t.Fatalf("分部错误: %+v", part)
	}
	if tp := b.Items[1]; tp.Subtitle != "For readers in crisis right now." {
		t.Fatalf("章节页副标题错误: %+v", tp)
	}
	ch := b.Items[2]
	if ch.Src != "module-0/0.1.md" || ch.Subtitle != "What to do right now." || !ch.Break {
		t.Fatalf("章节错误: %+v", ch)
	}
	if b.Items[3].Break {
		t.Fatalf("break: false 未生效")
	}
	ws := b.Items[5]
	if ws.Instruction != "Data, not judgment." || len(ws.Fields) != 3 {
		t.Fatalf("练习页错误: %+v", ws)
	}
	if ws.Fields[1].Line != "_____ / 10" || ws.Fields[2].Lines != 3 || ws.Fields[0].Lines != 0 {
		t.Fatalf("练习页字段错误: %+v", ws.Fields)
	}
	if b.Quotes.Every != 20 || len(b.Quotes.Lines) != 2 {
		t.Fatalf("引言池错误: %+v", b.Quotes)
	}
	if b.Theme["accent"] != layout.Hex("#14B8A6") {
		t.Fatalf("主题颜色错误: %+v", b.Theme)
	}
	if b.Fonts["sans-bold"] != "fonts/Inter-Bold.ttf" {
		t.Fatalf("字体覆盖错误: %+v", b.Fonts)
	}
	if b.Final == nil || len(b.Final.Lines) != 2 || b.Final.Bold != "You run you." {
		t.Fatalf("结束页错误: %+v", b.Final)
	}
}

func TestDefaults(t *testing.T) {
	b, err := ParseString("min.book", `book "Minimal" {}`, discard())
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if b.Page != defaultPage || b.Quotes.Every != DefaultQuoteEvery || b.TOC != "" {
		t.Fatalf("默认值错误: %+v", b)
	}
	f := b.Page.Frame()
	if !near(f.Width, 612-108) || !near(f.Height, 792-100.8) {
		t.Fatalf("正文区域错误: %+v", f)
	}
}

func TestSyntaxErrorIsReturned(t *testing.T) {
	_, err := ParseString("bad.book", `book "Broken" { chapter "x" { src: "a.md" }`, discard())
	if err == nil || !IsSyntaxError(err) {
		t.Fatalf("期望语法错误，实际 %v", err)
	}
	if !strings.Contains(err.Error(), "bad.book") {
		t.Fatalf("语法错误应包含文件名: %v", err)
	}
}

func TestUnknownCommandIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	b, err := ParseString("x.book", "book \"X\" {\n  sparkle \"everywhere\"\n  toc \"CONTENTS\"\n}", log)
	if err != nil {
		t.Fatalf("未知指令不应导致失败: %v", err)
	}
	if b.TOC != "CONTENTS" {
		t.Fatalf("未知指令之后的内容应继续解析")
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "sparkle") {
		t.Fatalf("未知指令应记录告警: %s", buf.String())
	}
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"纸张":    `book "X" { page tabloid }`,
		"边距":    `book "X" { page letter margin 5in }`,
		"章节缺源":  `book "X" { chapter "A" { subtitle: "s" } }`,
		"字形":    `book "X" { font serif "a.ttf" }`,
		"布尔":    `book "X" { chapter "A" { src: "a.md"; break: maybe } }`,
		"书写区行数": `book "X" { worksheet "W" { area "A" zero } }`,
	}
	for name, src := range cases {
		_, err := ParseString("x.book", src, discard())
		if err == nil {
			t.Errorf("%s: 期望返回错误", name)
			continue
		}
		if IsSyntaxError(err) {
			t.Errorf("%s: 取值错误不应被报告为语法错误: %v", name, err)
		}
	}
}

func TestPageVariants(t *testing.T) {
	cases := []struct {
		src  string
		w, h float64
		m    Margin
	}{
		{`book "X" { page a4 margin 20mm }`, 595.28, 841.89, Margin{20 * layout.MmToPt, 20 * layout.MmToPt, 20 * layout.MmToPt, 20 * layout.MmToPt}},
		{`book "X" { page letter landscape margin 36pt }`, 792, 612, Margin{36, 36, 36, 36}},
		{`book "X" { page 400pt 600pt margin 10 20 30 40 }`, 400, 600, Margin{10, 20, 30, 40}},
		{`book "X" { page legal margin 10 20 30 }`, 612, 1008, Margin{10, 20, 30, 20}},
	}
	for _, c := range cases {
		b, err := ParseString("x.book", c.src, discard())
		if err != nil {
			t.Fatalf("%s: %v", c.src, err)
		}
		p := b.Page
		if !near(p.Width, c.w) || !near(p.Height, c.h) {
			t.Errorf("%s: 尺寸 %gx%g", c.src, p.Width, p.Height)
		}
		if !near(p.Margin.Top, c.m.Top) || !near(p.Margin.Right, c.m.Right) || !near(p.Margin.Bottom, c.m.Bottom) || !near(p.Margin.Left, c.m.Left) {
			t.Errorf("%s: 边距 %+v，期望 %+v", c.src, p.Margin, c.m)
		}
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
