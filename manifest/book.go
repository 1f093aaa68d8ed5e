// Package manifest 解析描述一本书的清单：元数据、页面几何、目录结构与内容文件顺序。
package manifest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
)

// ItemKind 区分书中按顺序排列的结构单元。
type ItemKind int

const (
	ItemPart ItemKind = iota
	ItemTitlePage
	ItemChapter
	ItemCard
	ItemWorksheet
	ItemQuote
)

var itemNames = []string{"part", "titlepage", "chapter", "card", "worksheet", "quote"}

func (k ItemKind) String() string {
	if int(k) < len(itemNames) {
		return itemNames[k]
	}
	return "unknown"
}

// Margin 是页边距（pt）。
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Page 描述纸张尺寸与边距（pt）。
type Page struct {
	Width  float64
	Height float64
	Margin Margin
}

// Frame 返回正文区域。
func (p Page) Frame() layout.Rect {
	return layout.Rect{
		X:      p.Margin.Left,
		Y:      p.Margin.Bottom,
		Width:  p.Width - p.Margin.Left - p.Margin.Right,
		Height: p.Height - p.Margin.Top - p.Margin.Bottom,
	}
}

// Running 是页眉或页脚的左右文本，可以包含 ${page}、${title} 占位符。
type Running struct {
	Left  string
	Right string
}

// Cover 是封面文字；Logo 为相对输入根目录的图片路径。
type Cover struct {
	Series   string
	Title    string
	Subtitle string
	Tagline  string
	Badge    string
	Footer   string
	Logo     string
}

// Field 是练习页上的一项：Lines > 0 时为书写区，否则为标签加填空行。
type Field struct {
	Label string
	Line  string
	Lines int
}

// Item 是书中的一个结构单元。
type Item struct {
	Kind     ItemKind
	Label    string
	Title    string
	Subtitle string
	Desc     string
	Src      string
	// Break 为章节结束后是否分页，默认 true。
	Break       bool
	Instruction string
	Fields      []Field
	Line        int
}

// Quotes 是整页引言的候选池；Every 为大约每多少页插入一次。
type Quotes struct {
	Lines []string
	Every int
}

// Final 是结束页。
type Final struct {
	Lines  []string
	Bold   string
	Brand  string
	Footer string
}

// Book 是清单解析后的完整描述。
type Book struct {
	Title  string
	Meta   layout.DocumentMeta
	Page   Page
	Header Running
	Footer Running
	Cover  *Cover
	// TOC 非空时生成目录页，值为目录标题。
	TOC    string
	Items  []Item
	Quotes Quotes
	Final  *Final
	// Fonts 以字形键（如 sans-bold）覆盖内置字体，值为相对输入根目录的路径。
	Fonts map[string]string
	// Theme 覆盖页面装饰用色：background、accent、accent-dim、border、text-dim。
	Theme map[string]layout.Color
}

// 默认页面：Letter，上下 0.7in，左右 0.75in。
var defaultPage = Page{
	Width:  612,
	Height: 792,
	Margin: Margin{Top: 0.7 * layout.Inch, Right: 0.75 * layout.Inch, Bottom: 0.7 * layout.Inch, Left: 0.75 * layout.Inch},
}

var pagePresets = map[string][2]float64{
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
	"A4":     {595.28, 841.89},
	"A5":     {419.53, 595.28},
}

var themeKeys = map[string]bool{"background": true, "accent": true, "accent-dim": true, "border": true, "text-dim": true}

// DefaultQuoteEvery 是整页引言的默认间隔（估算页数）。
const DefaultQuoteEvery = 35

// SyntaxError 表示清单无法按语法解析。
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "清单语法错误: " + e.Err.Error() }
func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse 读取并解释清单。语法错误与非法取值都会返回错误；未知指令记录告警后跳过。
func Parse(filename string, r io.Reader, log *slog.Logger) (*Book, error) {
	ast, err := ParseAST(filename, r)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return Decode(ast, log)
}

// ParseString 与 Parse 相同，输入为字符串。
func ParseString(filename, input string, log *slog.Logger) (*Book, error) {
	return Parse(filename, strings.NewReader(input), log)
}

// IsSyntaxError 判断错误是否来自语法解析。
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

type decoder struct {
	log  *slog.Logger
	book *Book
}

// Decode 将语法树解释为 Book。
func Decode(f *File, log *slog.Logger) (*Book, error) {
	if log == nil {
		log = slog.Default()
	}
	title := string(f.Title)
	d := &decoder{log: log, book: &Book{
		Title:  title,
		Meta:   layout.DocumentMeta{Title: title, Creator: "folio"},
		Page:   defaultPage,
		Quotes: Quotes{Every: DefaultQuoteEvery},
		Fonts:  map[string]string{},
		Theme:  map[string]layout.Color{},
	}}
	if f.Block == nil {
		return d.book, nil
	}
	for _, stmt := range f.Block.Statements {
		if err := d.statement(stmt); err != nil {
			return nil, err
		}
	}
	return d.book, nil
}

func (d *decoder) statement(stmt *Statement) error {
	switch {
	case stmt.Command != nil:
		return d.command(stmt.Command)
	case stmt.Assignment != nil:
		d.log.Warn("忽略清单顶层的赋值", "key", stmt.Assignment.Key, "line", stmt.Assignment.Pos.Line)
	case stmt.Text != nil:
		d.log.Warn("忽略清单顶层的文本", "line", stmt.Text.Pos.Line)
	}
	return nil
}

func (d *decoder) command(cmd *Command) error {
	b := d.book
	switch strings.ToLower(cmd.Name) {
	case "meta":
		d.meta(cmd)
	case "page":
		page, err := parsePage(cmd.Args)
		if err != nil {
			return lineError(cmd, err)
		}
		b.Page = page
	case "header":
		b.Header = running(cmd)
	case "footer":
		b.Footer = running(cmd)
	case "cover":
		b.Cover = d.cover(cmd)
	case "toc":
		b.TOC = "TABLE OF CONTENTS"
		if len(cmd.Args) > 0 {
			b.TOC = cmd.Args[0].Value
		}
	case "part":
		if len(cmd.Args) < 2 {
			return lineError(cmd, fmt.Errorf("part 需要编号与名称"))
		}
		item := Item{Kind: ItemPart, Label: cmd.Args[0].Value, Title: cmd.Args[1].Value, Line: cmd.Pos.Line}
		item.Desc = assignments(cmd)["desc"]
		b.Items = append(b.Items, item)
	case "titlepage":
		if len(cmd.Args) < 1 {
			return lineError(cmd, fmt.Errorf("titlepage 需要标题"))
		}
		item := Item{Kind: ItemTitlePage, Title: cmd.Args[0].Value, Line: cmd.Pos.Line}
		if len(cmd.Args) > 1 {
			item.Subtitle = cmd.Args[1].Value
		}
		b.Items = append(b.Items, item)
	case "chapter", "card":
		item, err := d.chapter(cmd)
		if err != nil {
			return err
		}
		b.Items = append(b.Items, item)
	case "worksheet":
		item, err := d.worksheet(cmd)
		if err != nil {
			return err
		}
		b.Items = append(b.Items, item)
	case "quote":
		if len(cmd.Args) < 1 {
			return lineError(cmd, fmt.Errorf("quote 需要文本"))
		}
		b.Items = append(b.Items, Item{Kind: ItemQuote, Title: cmd.Args[0].Value, Line: cmd.Pos.Line})
	case "quotes":
		return d.quotes(cmd)
	case "final":
		b.Final = d.final(cmd)
	case "font":
		if len(cmd.Args) < 2 {
			return lineError(cmd, fmt.Errorf("font 需要字形与路径"))
		}
		key := cmd.Args[0].Value
		family, bold, italic, err := fonts.ParseKey(key)
		if err != nil {
			return lineError(cmd, err)
		}
		b.Fonts[fonts.Key(family, bold, italic)] = cmd.Args[1].Value
	case "theme":
		return d.theme(cmd)
	default:
		d.log.Warn("忽略未知的清单指令", "command", cmd.Name, "line", cmd.Pos.Line)
	}
	return nil
}

func (d *decoder) meta(cmd *Command) {
	if cmd.Block == nil {
		return
	}
	m := &d.book.Meta
	for _, stmt := range cmd.Block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		switch strings.ToLower(a.Key) {
		case "title":
			m.Title = valueToString(a.Value)
		case "author":
			m.Author = valueToString(a.Value)
		case "subject":
			m.Subject = valueToString(a.Value)
		case "creator":
			m.Creator = valueToString(a.Value)
		case "keywords":
			m.Keywords = valueToStrings(a.Value)
		default:
			d.log.Warn("忽略未知的元数据字段", "key", a.Key, "line", a.Pos.Line)
		}
	}
}

func (d *decoder) cover(cmd *Command) *Cover {
	kv := assignments(cmd)
	return &Cover{
		Series:   kv["series"],
		Title:    kv["title"],
		Subtitle: kv["subtitle"],
		Tagline:  kv["tagline"],
		Badge:    kv["badge"],
		Footer:   kv["footer"],
		Logo:     kv["logo"],
	}
}

func (d *decoder) chapter(cmd *Command) (Item, error) {
	kind := ItemChapter
	if strings.EqualFold(cmd.Name, "card") {
		kind = ItemCard
	}
	if len(cmd.Args) < 1 {
		return Item{}, lineError(cmd, fmt.Errorf("%s 需要标题", kind))
	}
	item := Item{Kind: kind, Title: cmd.Args[0].Value, Break: true, Line: cmd.Pos.Line}
	if cmd.Block != nil {
		for _, stmt := range cmd.Block.Statements {
			a := stmt.Assignment
			if a == nil {
				continue
			}
			switch strings.ToLower(a.Key) {
			case "src":
				item.Src = valueToString(a.Value)
			case "subtitle":
				item.Subtitle = valueToString(a.Value)
			case "break":
				v, err := valueToBool(a.Value)
				if err != nil {
					return Item{}, lineError(cmd, err)
				}
				item.Break = v
			default:
				d.log.Warn("忽略未知的章节字段", "key", a.Key, "line", a.Pos.Line)
			}
		}
	}
	if item.Src == "" {
		return Item{}, lineError(cmd, fmt.Errorf("%s %q 缺少 src", kind, item.Title))
	}
	return item, nil
}

func (d *decoder) worksheet(cmd *Command) (Item, error) {
	if len(cmd.Args) < 1 {
		return Item{}, lineError(cmd, fmt.Errorf("worksheet 需要标题"))
	}
	item := Item{Kind: ItemWorksheet, Title: cmd.Args[0].Value, Line: cmd.Pos.Line}
	if cmd.Block == nil {
		return item, nil
	}
	for _, stmt := range cmd.Block.Statements {
		switch {
		case stmt.Assignment != nil && strings.EqualFold(stmt.Assignment.Key, "instruction"):
			item.Instruction = valueToString(stmt.Assignment.Value)
		case stmt.Command != nil && strings.EqualFold(stmt.Command.Name, "field"):
			c := stmt.Command
			if len(c.Args) < 1 {
				return Item{}, lineError(c, fmt.Errorf("field 需要标签"))
			}
			f := Field{Label: c.Args[0].Value, Line: strings.Repeat("_", 47)}
			if len(c.Args) > 1 {
				f.Line = c.Args[1].Value
			}
			item.Fields = append(item.Fields, f)
		case stmt.Command != nil && strings.EqualFold(stmt.Command.Name, "area"):
			c := stmt.Command
			if len(c.Args) < 1 {
				return Item{}, lineError(c, fmt.Errorf("area 需要标签"))
			}
			f := Field{Label: c.Args[0].Value, Lines: 4}
			if len(c.Args) > 1 {
				n, err := strconv.Atoi(c.Args[1].Value)
				if err != nil || n < 1 {
					return Item{}, lineError(c, fmt.Errorf("area 行数无效: %q", c.Args[1].Value))
				}
				f.Lines = n
			}
			item.Fields = append(item.Fields, f)
		default:
			d.log.Warn("忽略练习页中无法识别的语句", "worksheet", item.Title, "line", item.Line)
		}
	}
	return item, nil
}

func (d *decoder) quotes(cmd *Command) error {
	q := &d.book.Quotes
	if cmd.Block == nil {
		return nil
	}
	for _, stmt := range cmd.Block.Statements {
		switch {
		case stmt.Text != nil:
			q.Lines = append(q.Lines, string(stmt.Text.Value))
		case stmt.Assignment != nil && strings.EqualFold(stmt.Assignment.Key, "every"):
			n, err := strconv.Atoi(valueToString(stmt.Assignment.Value))
			if err != nil || n < 1 {
				return lineError(cmd, fmt.Errorf("quotes.every 无效: %q", valueToString(stmt.Assignment.Value)))
			}
			q.Every = n
		}
	}
	return nil
}

func (d *decoder) final(cmd *Command) *Final {
	f := &Final{}
	if cmd.Block == nil {
		return f
	}
	for _, stmt := range cmd.Block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		switch strings.ToLower(a.Key) {
		case "text":
			f.Lines = valueToStrings(a.Value)
		case "bold":
			f.Bold = valueToString(a.Value)
		case "brand":
			f.Brand = valueToString(a.Value)
		case "footer":
			f.Footer = valueToString(a.Value)
		}
	}
	return f
}

func (d *decoder) theme(cmd *Command) error {
	if cmd.Block == nil {
		return nil
	}
	for _, stmt := range cmd.Block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		key := strings.ToLower(a.Key)
		if !themeKeys[key] {
			d.log.Warn("忽略未知的主题颜色", "key", a.Key, "line", a.Pos.Line)
			continue
		}
		c, err := layout.ParseHex(valueToString(a.Value))
		if err != nil {
			return lineError(cmd, err)
		}
		d.book.Theme[key] = c
	}
	return nil
}

func running(cmd *Command) Running {
	kv := assignments(cmd)
	return Running{Left: kv["left"], Right: kv["right"]}
}

// parsePage 解析 "letter [landscape] [margin v1 [v2 [v3 [v4]]]]" 或 "612pt 792pt margin ..."。
func parsePage(args []*Lexeme) (Page, error) {
	page := defaultPage
	i := 0
	if i < len(args) && args[i].Type == "Number" {
		if i+1 >= len(args) || args[i+1].Type != "Number" {
			return page, fmt.Errorf("自定义纸张需要宽和高")
		}
		w, err := layout.ParseLength(args[i].Value)
		if err != nil {
			return page, err
		}
		h, err := layout.ParseLength(args[i+1].Value)
		if err != nil {
			return page, err
		}
		page.Width, page.Height = w.ToPT(), h.ToPT()
		i += 2
	} else if i < len(args) {
		size, ok := pagePresets[strings.ToUpper(args[i].Value)]
		if !ok {
			return page, fmt.Errorf("暂不支持的纸张尺寸：%s", args[i].Value)
		}
		page.Width, page.Height = size[0], size[1]
		i++
	}
	for ; i < len(args); i++ {
		switch strings.ToLower(args[i].Value) {
		case "landscape":
			page.Width, page.Height = page.Height, page.Width
		case "portrait":
		case "margin":
			var vals []float64
			for i+1 < len(args) && len(vals) < 4 && args[i+1].Type == "Number" {
				l, err := layout.ParseLength(args[i+1].Value)
				if err != nil {
					return page, err
				}
				vals = append(vals, l.ToPT())
				i++
			}
			m, err := margin(vals)
			if err != nil {
				return page, err
			}
			page.Margin = m
		default:
			return page, fmt.Errorf("无法识别的页面参数：%s", args[i].Value)
		}
	}
	if f := page.Frame(); f.Width <= 0 || f.Height <= 0 {
		return page, fmt.Errorf("页边距超出纸张尺寸")
	}
	return page, nil
}

// margin 使用 CSS 语义：1 个值四边相同；2 个值为上下、左右；3 个值为上、左右、下；4 个值为上右下左。
func margin(vals []float64) (Margin, error) {
	switch len(vals) {
	case 1:
		v := vals[0]
		return Margin{Top: v, Right: v, Bottom: v, Left: v}, nil
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	case 4:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Margin{}, fmt.Errorf("margin 需要 1 到 4 个长度")
	}
}

func assignments(cmd *Command) map[string]string {
	out := map[string]string{}
	if cmd.Block == nil {
		return out
	}
	for _, stmt := range cmd.Block.Statements {
		if a := stmt.Assignment; a != nil {
			out[strings.ToLower(a.Key)] = valueToString(a.Value)
		}
	}
	return out
}

func lineError(cmd *Command, err error) error {
	return fmt.Errorf("清单第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
}

func valueToString(val *Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Ident != nil:
		return *val.Ident
	case val.Array != nil:
		return strings.Join(valueToStrings(val), " ")
	default:
		return ""
	}
}

func valueToStrings(val *Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

func valueToBool(val *Value) (bool, error) {
	s := valueToString(val)
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("需要 true 或 false，实际为 %q", s)
	}
	return b, nil
}
