package markup

// 该文件定义解析结果：按源文件顺序排列的 Block 序列。

// Kind 表示 Block 的语义类型。
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindHeading4
	KindBullet
	KindNumbered
	KindBlockquote
	KindDivider
	KindCodeLine
	KindTable
	KindCallout
	KindTimestamp
)

var kindNames = map[Kind]string{
	KindParagraph:  "paragraph",
	KindHeading1:   "heading1",
	KindHeading2:   "heading2",
	KindHeading3:   "heading3",
	KindHeading4:   "heading4",
	KindBullet:     "bullet",
	KindNumbered:   "numbered",
	KindBlockquote: "blockquote",
	KindDivider:    "divider",
	KindCodeLine:   "code",
	KindTable:      "table",
	KindCallout:    "callout",
	KindTimestamp:  "timestamp",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText 让调试 JSON 输出可读的类型名。
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// HeadingLevel 返回 1-4，非标题返回 0。
func (k Kind) HeadingLevel() int {
	switch k {
	case KindHeading1:
		return 1
	case KindHeading2:
		return 2
	case KindHeading3:
		return 3
	case KindHeading4:
		return 4
	default:
		return 0
	}
}

func headingKind(level int) Kind {
	switch {
	case level <= 1:
		return KindHeading1
	case level == 2:
		return KindHeading2
	case level == 3:
		return KindHeading3
	default:
		return KindHeading4
	}
}

// Subtype 区分提示框（callout）的视觉类别。
type Subtype int

const (
	SubtypeNone Subtype = iota
	SubtypeInfo
	SubtypeTakeaway
	SubtypeSuccess
	SubtypeWarning
	SubtypeLog
	SubtypeReference
	SubtypeNugget
	SubtypeObservation
)

var subtypeNames = map[Subtype]string{
	SubtypeNone:        "",
	SubtypeInfo:        "info",
	SubtypeTakeaway:    "takeaway",
	SubtypeSuccess:     "success",
	SubtypeWarning:     "warning",
	SubtypeLog:         "log",
	SubtypeReference:   "reference",
	SubtypeNugget:      "nugget",
	SubtypeObservation: "observation",
}

func (s Subtype) String() string { return subtypeNames[s] }

// MarshalText 让调试 JSON 输出可读的子类型名。
func (s Subtype) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Span 是一段带行内样式的文本。
type Span struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Code   bool   `json:"code,omitempty"`
}

// Block 是解析器输出的最小语义单元，创建后不再修改。
type Block struct {
	Kind Kind `json:"kind"`
	// Text 为去掉行首标记后的原始文本（未解析行内样式）。
	Text  string `json:"text,omitempty"`
	Spans []Span `json:"spans,omitempty"`
	// Number 为有序列表的序号（保持源文本，如 "3"）。
	Number  string  `json:"number,omitempty"`
	Subtype Subtype `json:"subtype,omitempty"`
	// Title 为提示框标题；为空时由样式表提供默认标题。
	Title    string  `json:"title,omitempty"`
	Children []Block `json:"children,omitempty"`
	// 表格：表头与数据行，每个单元格是一组 Span。
	Header [][]Span   `json:"header,omitempty"`
	Rows   [][][]Span `json:"rows,omitempty"`
	// Group 标识代码行所属的代码围栏，同组的代码行会被合并为一个代码框。
	Group int `json:"group,omitempty"`
	// Line 为块在源文本中的起始行号（从 1 开始）。
	Line int `json:"line"`
}

// PlainText 返回 Spans 拼接后的纯文本。
func PlainText(spans []Span) string {
	n := 0
	for _, s := range spans {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
