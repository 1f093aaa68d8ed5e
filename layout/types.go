package layout

// 该文件定义分页结果（显示列表），供渲染后端回放与调试 JSON 共用。

// Result 保存分页后的全部页面。
type Result struct {
	Pages []Page `json:"pages"`
	// Images 按 ImageRef.Key 保存原始图片字节，页面操作只引用 Key。
	Images map[string][]byte `json:"-"`
	Meta   DocumentMeta      `json:"meta"`
}

// Page 记录页面尺寸、所用模板与两层绘制操作。
// Decoration 层（背景、页眉页脚）总是先于 Content 层绘制。
type Page struct {
	Number     int         `json:"number"`
	Template   string      `json:"template"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Decoration []Op        `json:"decoration"`
	Content    []Op        `json:"content"`
	Placements []Placement `json:"placements"`
}

// OpKind 区分绘制操作。
type OpKind string

const (
	OpRect      OpKind = "rect"
	OpRoundRect OpKind = "roundRect"
	OpLine      OpKind = "line"
	OpText      OpKind = "text"
	OpImage     OpKind = "image"
)

// Op 是一条已定位的绘制操作（单位 pt，左下角原点）。
type Op struct {
	Kind   OpKind  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	// Width 为线宽
	Width float64   `json:"width,omitempty"`
	Color Color     `json:"color"`
	Text  string    `json:"text,omitempty"`
	Face  *Face     `json:"face,omitempty"`
	Image *ImageRef `json:"image,omitempty"`
}

// Placement 记录一个 flowable 在页面上的落位，用于确定性校验与调试。
type Placement struct {
	// Index 为 flowable 在 Document.Flowables 中的下标；拆分出的后续部分沿用原下标。
	Index  int     `json:"index"`
	Kind   string  `json:"kind"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	// Part 表示这是拆分后的某一部分。
	Part      bool `json:"part,omitempty"`
	Truncated bool `json:"truncated,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
