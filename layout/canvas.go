package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义后端无关的绘图原语。坐标单位为 pt，原点位于页面左下角，y 轴向上。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 解析 "#RRGGBB" 或 "#RGB"，格式错误时 panic（仅用于常量表）。
func Hex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex 解析十六进制颜色。
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("无效颜色 %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("无效颜色 %q: %w", s, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

// Align 文本水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// 字体族名称：渲染器据此选择具体字形。
const (
	FamilySans = "sans"
	FamilyMono = "mono"
)

// Face 描述一次文字绘制所需的字体属性。
type Face struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
	Color  Color   `json:"color"`
}

// ImageRef 引用一张已加载的位图；Key 在同一文档内唯一。
type ImageRef struct {
	Key         string `json:"key"`
	Data        []byte `json:"-"`
	PixelWidth  int    `json:"pixelWidth"`
	PixelHeight int    `json:"pixelHeight"`
}

// Canvas 是 flowable 绘制时可用的全部原语。
type Canvas interface {
	PageSize() (width, height float64)
	PageNumber() int
	FillRect(x, y, w, h float64, c Color)
	FillRoundedRect(x, y, w, h, radius float64, c Color)
	Line(x1, y1, x2, y2, width float64, c Color)
	// Text 以 (x, y) 为基线起点绘制单行文本。
	Text(x, y float64, s string, f Face)
	Image(x, y, w, h float64, img ImageRef)
}

// Typesetter 提供文本宽度测量，由渲染后端实现以保证测量与绘制一致。
type Typesetter interface {
	TextWidth(s string, f Face) float64
}
