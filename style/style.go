// Package style 提供块类型到视觉样式的查找表。
//
// 样式表是显式传递的值：每次构建持有自己的 Registry，不存在全局样式字典。
package style

import "github.com/ByLCY/folio/layout"

// Style 描述一段文本的字体、颜色、间距与缩进，单位均为 pt。
type Style struct {
	Name        string       `json:"name"`
	Font        string       `json:"font"`
	Size        float64      `json:"size"`
	Color       layout.Color `json:"color"`
	Leading     float64      `json:"leading"`
	SpaceBefore float64      `json:"spaceBefore,omitempty"`
	SpaceAfter  float64      `json:"spaceAfter,omitempty"`
	LeftIndent  float64      `json:"leftIndent,omitempty"`
	RightIndent float64      `json:"rightIndent,omitempty"`
	Bold        bool         `json:"bold,omitempty"`
	Italic      bool         `json:"italic,omitempty"`
	Align       layout.Align `json:"align,omitempty"`
}

// Face 返回绘制该样式文本所用的字体。
func (s Style) Face() layout.Face {
	return layout.Face{Family: s.Font, Size: s.Size, Bold: s.Bold, Italic: s.Italic, Color: s.Color}
}

// Paragraph 转换为段落排版参数。
func (s Style) Paragraph() layout.ParagraphStyle {
	return layout.ParagraphStyle{
		Face:        s.Face(),
		Leading:     s.Leading,
		SpaceBefore: s.SpaceBefore,
		SpaceAfter:  s.SpaceAfter,
		LeftIndent:  s.LeftIndent,
		RightIndent: s.RightIndent,
		Align:       s.Align,
	}
}

// WithColor 返回换色后的副本。
func (s Style) WithColor(c layout.Color) Style {
	s.Color = c
	return s
}

// WithIndent 返回左缩进为 left 的副本。
func (s Style) WithIndent(left float64) Style {
	s.LeftIndent = left
	return s
}

// BoxTheme 是提示框的配色与标题样式。
type BoxTheme struct {
	Background layout.Color
	Border     layout.Color
	Title      Style
	Body       Style
	// DefaultTitle 在提示框没有自带标题时使用，可以为空。
	DefaultTitle string
}

// Palette 是主题的基础色板。
type Palette struct {
	Background    layout.Color
	Callout       layout.Color
	Code          layout.Color
	TableBody     layout.Color
	Accent        layout.Color
	AccentDim     layout.Color
	Gold          layout.Color
	Pink          layout.Color
	White         layout.Color
	Text          layout.Color
	TextSecondary layout.Color
	TextDim       layout.Color
	Border        layout.Color
	Red           layout.Color
	Success       layout.Color
}
